package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"zenithlist/internal/auth"
	"zenithlist/internal/repo"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	Repo *repo.Repo
	Auth *auth.Manager
	Log  zerolog.Logger
}

func New(repository *repo.Repo, authManager *auth.Manager, log zerolog.Logger) *Service {
	return &Service{Repo: repository, Auth: authManager, Log: log}
}

// Register creates the account and seeds its gamification profile, the
// counterpart of the user document the mobile app creates at sign-up.
func (s *Service) Register(ctx context.Context, email, username, password string) (string, error) {
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	userID, err := s.Repo.CreateUser(ctx, email, username, hash)
	if err != nil {
		return "", err
	}
	if err := s.Repo.CreateProfile(ctx, userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := s.Auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", "", ErrInvalidCredentials
	}
	accessToken, err := s.Auth.GenerateToken(user.ID)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.Repo.CreateSession(ctx, user.ID, refreshToken, time.Now().Add(s.Auth.SessionTT)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh exchanges a live session token for a fresh access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, expiresAt, err := s.Repo.GetSession(ctx, refreshToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if time.Now().After(expiresAt) {
		return "", ErrInvalidCredentials
	}
	return s.Auth.GenerateToken(userID)
}
