package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"zenithlist/internal/engine"
	"zenithlist/internal/models"
)

const taskColumns = `id, user_id, project_id, title, description, priority, due_date, is_completed, completed_at, recurrence_frequency, recurrence_interval, subtasks, tags, created_at, updated_at`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *Repo) CreateTask(ctx context.Context, t *models.Task) error {
	t.ID = uuid.NewString()
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return insertTask(ctx, r.Pool, t)
}

func insertTask(ctx context.Context, db execer, t *models.Task) error {
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	subtasks, err := json.Marshal(t.Subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}
	freq, interval := recurrenceColumns(t.Recurrence)
	_, err = db.Exec(ctx, `INSERT INTO tasks (id, user_id, project_id, title, description, priority, due_date, is_completed, completed_at, recurrence_frequency, recurrence_interval, subtasks, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.UserID, t.ProjectID, t.Title, t.Description, string(t.Priority), t.DueDate, t.IsCompleted, t.CompletedAt, freq, interval, subtasks, t.Tags, t.CreatedAt, t.UpdatedAt)
	return err
}

func recurrenceColumns(rec *models.Recurrence) (*string, *int) {
	if rec == nil {
		return nil, nil
	}
	freq := string(rec.Frequency)
	interval := rec.Interval
	return &freq, &interval
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	var priority string
	var freq *string
	var interval *int
	var subtasks []byte
	err := row.Scan(&t.ID, &t.UserID, &t.ProjectID, &t.Title, &t.Description, &priority, &t.DueDate, &t.IsCompleted, &t.CompletedAt, &freq, &interval, &subtasks, &t.Tags, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	t.Priority = models.Priority(priority)
	if freq != nil {
		iv := 1
		if interval != nil {
			iv = *interval
		}
		t.Recurrence = &models.Recurrence{Frequency: models.Frequency(*freq), Interval: iv}
	}
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
			return models.Task{}, fmt.Errorf("decode subtasks: %w", err)
		}
	}
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (r *Repo) GetTask(ctx context.Context, userID, taskID string) (models.Task, error) {
	return scanTask(r.Pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND user_id=$2`, taskID, userID))
}

// TaskFilter narrows a task listing. Nil fields mean "any"; DueTo is
// exclusive so day windows can be expressed as [start, nextStart).
type TaskFilter struct {
	Completed *bool
	DueFrom   *time.Time
	DueTo     *time.Time
}

func (r *Repo) ListTasks(ctx context.Context, userID string, f TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1`
	args := []any{userID}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		query += fmt.Sprintf(` AND is_completed=$%d`, len(args))
	}
	if f.DueFrom != nil {
		args = append(args, *f.DueFrom)
		query += fmt.Sprintf(` AND due_date >= $%d`, len(args))
	}
	if f.DueTo != nil {
		args = append(args, *f.DueTo)
		query += fmt.Sprintf(` AND due_date < $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites the editable fields. Completion state moves only
// through CompleteTask and ReopenTask so the gamification invariants hold.
func (r *Repo) UpdateTask(ctx context.Context, t *models.Task) error {
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	subtasks, err := json.Marshal(t.Subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}
	freq, interval := recurrenceColumns(t.Recurrence)
	cmd, err := r.Pool.Exec(ctx, `UPDATE tasks SET project_id=$1, title=$2, description=$3, priority=$4, due_date=$5, recurrence_frequency=$6, recurrence_interval=$7, subtasks=$8, tags=$9, updated_at=now()
		WHERE id=$10 AND user_id=$11`,
		t.ProjectID, t.Title, t.Description, string(t.Priority), t.DueDate, freq, interval, subtasks, t.Tags, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteTask(ctx context.Context, userID, taskID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2`, taskID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReopenTask clears the completion mark without touching points or streak;
// awards are never rolled back.
func (r *Repo) ReopenTask(ctx context.Context, userID, taskID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE tasks SET is_completed=false, completed_at=NULL, updated_at=now() WHERE id=$1 AND user_id=$2`, taskID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSubtaskDone toggles one subtask inside the task's subtask list. The
// row is locked so concurrent toggles don't clobber each other.
func (r *Repo) SetSubtaskDone(ctx context.Context, userID, taskID, subtaskID string, done bool) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT subtasks FROM tasks WHERE id=$1 AND user_id=$2 FOR UPDATE`, taskID, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	var subtasks []models.Subtask
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &subtasks); err != nil {
			return fmt.Errorf("decode subtasks: %w", err)
		}
	}
	found := false
	for i := range subtasks {
		if subtasks[i].ID == subtaskID {
			subtasks[i].IsCompleted = done
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	updated, err := json.Marshal(subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE tasks SET subtasks=$1, updated_at=now() WHERE id=$2 AND user_id=$3`, updated, taskID, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CompleteTask applies the completion transition atomically: the profile
// update, the task patch, and the spawned occurrence (if any) commit or roll
// back together. Serialization failures re-run the whole read-compute-write
// cycle against fresh reads, bounded by CompleteAttempts.
func (r *Repo) CompleteTask(ctx context.Context, userID, taskID string, now time.Time) (engine.Result, error) {
	attempts := r.CompleteAttempts
	if attempts < 1 {
		attempts = defaultCompleteAttempts
	}
	return completeWithRetry(attempts, func() (engine.Result, error) {
		return r.completeTaskOnce(ctx, userID, taskID, now)
	})
}

func (r *Repo) completeTaskOnce(ctx context.Context, userID, taskID string, now time.Time) (engine.Result, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return engine.Result{}, err
	}
	defer tx.Rollback(ctx)

	task, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND user_id=$2`, taskID, userID))
	if err != nil {
		return engine.Result{}, err
	}
	profile, err := scanProfile(tx.QueryRow(ctx, `SELECT user_id, points, streak, last_completion_date FROM profiles WHERE user_id=$1`, userID))
	if err != nil {
		return engine.Result{}, err
	}

	res, err := engine.Complete(profile, task, now)
	if err != nil {
		return engine.Result{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE profiles SET points=$1, streak=$2, last_completion_date=$3, updated_at=now() WHERE user_id=$4`,
		res.Profile.Points, res.Profile.Streak, res.Profile.LastCompletionDate, userID); err != nil {
		return engine.Result{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE tasks SET is_completed=true, completed_at=$1, updated_at=now() WHERE id=$2 AND user_id=$3`,
		res.Patch.CompletedAt, taskID, userID); err != nil {
		return engine.Result{}, err
	}
	if res.Spawned != nil {
		res.Spawned.ID = uuid.NewString()
		res.Spawned.CreatedAt = now.UTC()
		res.Spawned.UpdatedAt = now.UTC()
		if err := insertTask(ctx, tx, res.Spawned); err != nil {
			return engine.Result{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return engine.Result{}, err
	}
	return res, nil
}
