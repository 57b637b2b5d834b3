package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"zenithlist/internal/ai"
	"zenithlist/internal/auth"
	"zenithlist/internal/config"
	"zenithlist/internal/db"
	api "zenithlist/internal/http"
	"zenithlist/internal/repo"
	"zenithlist/internal/scheduler"
	"zenithlist/internal/service"
)

const jobTimeout = 2 * time.Minute

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect db")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	repository := repo.New(pool)
	repository.CompleteAttempts = cfg.CompleteAttempts
	svc := service.New(repository, authManager, log)
	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIAPIURL)

	handler := &api.API{
		Repo:    repository,
		Service: svc,
		Auth:    authManager,
		AI:      aiClient,
		Log:     log,
		Origins: splitOrigins(cfg.CORSOrigin),
	}

	sched := scheduler.New(time.Local)
	if _, err := sched.ScheduleDaily(cfg.DigestTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := svc.DailyDigest(jobCtx, time.Now()); err != nil {
			log.Error().Err(err).Msg("daily digest failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid digest time")
	}
	if _, err := sched.ScheduleInterval(time.Hour, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := svc.DueSoonSweep(jobCtx, time.Now()); err != nil {
			log.Error().Err(err).Msg("due-soon sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule due-soon sweep")
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
