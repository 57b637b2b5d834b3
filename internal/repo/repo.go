package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zenithlist/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrTransactionConflict = errors.New("transaction conflict")
)

type Repo struct {
	Pool *pgxpool.Pool
	// CompleteAttempts bounds the retry loop around the completion
	// transaction. Zero means the default of 5.
	CompleteAttempts int
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateUser(ctx context.Context, email, username, passwordHash string) (string, error) {
	id := uuid.NewString()
	_, err := r.Pool.Exec(ctx, `INSERT INTO users (id, email, username, password_hash) VALUES ($1, $2, $3, $4)`, id, email, username, passwordHash)
	return id, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`, userID, token, expiresAt)
	return err
}

func (r *Repo) GetSession(ctx context.Context, token string) (string, time.Time, error) {
	var userID string
	var expiresAt time.Time
	err := r.Pool.QueryRow(ctx, `SELECT user_id, expires_at FROM sessions WHERE token=$1`, token).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, ErrNotFound
	}
	return userID, expiresAt, err
}

// CreateProfile seeds the gamification state at registration time:
// zero points, zero streak, no completions yet.
func (r *Repo) CreateProfile(ctx context.Context, userID string) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO profiles (user_id, points, streak) VALUES ($1, 0, 0)`, userID)
	return err
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return scanProfile(r.Pool.QueryRow(ctx, `SELECT user_id, points, streak, last_completion_date FROM profiles WHERE user_id=$1`, userID))
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.UserID, &p.Points, &p.Streak, &p.LastCompletionDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (r *Repo) CreateProject(ctx context.Context, p *models.Project) error {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.Pool.Exec(ctx, `INSERT INTO projects (id, user_id, name, color, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Name, p.Color, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repo) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, name, color, created_at, updated_at FROM projects WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repo) UpdateProject(ctx context.Context, p *models.Project) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE projects SET name=$1, color=$2, updated_at=now() WHERE id=$3 AND user_id=$4`,
		p.Name, p.Color, p.ID, p.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes the project. With cascade, tasks in the project go
// with it; otherwise they are detached (project_id set null by the schema).
func (r *Repo) DeleteProject(ctx context.Context, userID, projectID string, cascade bool) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if cascade {
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id=$1 AND user_id=$2`, projectID, userID); err != nil {
			return err
		}
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM projects WHERE id=$1 AND user_id=$2`, projectID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *Repo) CreateFocusSession(ctx context.Context, s *models.FocusSession) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	_, err := r.Pool.Exec(ctx, `INSERT INTO focus_sessions (id, user_id, started_at, duration_minutes, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.StartedAt, s.DurationMinutes, s.CreatedAt)
	return err
}

func (r *Repo) ListFocusSessions(ctx context.Context, userID string) ([]models.FocusSession, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, started_at, duration_minutes, created_at FROM focus_sessions WHERE user_id=$1 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := []models.FocusSession{}
	for rows.Next() {
		var s models.FocusSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.DurationMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DueCount is one user's count of open tasks due inside a window.
type DueCount struct {
	UserID string
	Email  string
	Count  int
}

func (r *Repo) CountDueByUser(ctx context.Context, from, to time.Time) ([]DueCount, error) {
	rows, err := r.Pool.Query(ctx, `SELECT t.user_id, u.email, count(*)
		FROM tasks t JOIN users u ON u.id = t.user_id
		WHERE NOT t.is_completed AND t.due_date >= $1 AND t.due_date < $2
		GROUP BY t.user_id, u.email`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []DueCount
	for rows.Next() {
		var c DueCount
		if err := rows.Scan(&c.UserID, &c.Email, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DueReminder is one open task inside a reminder window.
type DueReminder struct {
	UserID  string
	TaskID  string
	Title   string
	DueDate time.Time
}

func (r *Repo) ListDueBetween(ctx context.Context, from, to time.Time) ([]DueReminder, error) {
	rows, err := r.Pool.Query(ctx, `SELECT user_id, id, title, due_date FROM tasks
		WHERE NOT is_completed AND due_date >= $1 AND due_date < $2
		ORDER BY due_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reminders []DueReminder
	for rows.Next() {
		var d DueReminder
		if err := rows.Scan(&d.UserID, &d.TaskID, &d.Title, &d.DueDate); err != nil {
			return nil, err
		}
		reminders = append(reminders, d)
	}
	return reminders, rows.Err()
}
