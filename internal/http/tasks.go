package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zenithlist/internal/auth"
	"zenithlist/internal/engine"
	"zenithlist/internal/models"
	"zenithlist/internal/repo"
)

type taskRequest struct {
	ProjectID   *string            `json:"project_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    models.Priority    `json:"priority"`
	DueDate     *time.Time         `json:"due_date"`
	Recurrence  *models.Recurrence `json:"recurrence"`
	Subtasks    []models.Subtask   `json:"subtasks"`
	Tags        []string           `json:"tags"`
}

type subtaskRequest struct {
	IsCompleted bool `json:"is_completed"`
}

type completeResponse struct {
	Profile     profileResponse `json:"profile"`
	SpawnedTask *models.Task    `json:"spawned_task,omitempty"`
}

type generateRequest struct {
	Goal string `json:"goal"`
}

const dateLayout = "2006-01-02"

// filterFromQuery maps the app's list views onto a repository filter.
// "today" and "upcoming" cover [today, +1d) and [today, +8d); explicit
// from/to dates take a whole-day window with an exclusive upper bound.
func filterFromQuery(r *http.Request, now time.Time) (repo.TaskFilter, error) {
	var f repo.TaskFilter
	open, done := false, true

	switch r.URL.Query().Get("filter") {
	case "", "all":
		f.Completed = &open
	case "today":
		start := engine.StartOfDay(now)
		end := start.AddDate(0, 0, 1)
		f.Completed = &open
		f.DueFrom, f.DueTo = &start, &end
	case "upcoming":
		start := engine.StartOfDay(now)
		end := start.AddDate(0, 0, 8)
		f.Completed = &open
		f.DueFrom, f.DueTo = &start, &end
	case "completed":
		f.Completed = &done
	default:
		return f, errors.New("unknown filter")
	}

	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, err
		}
		f.DueFrom = &from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, err
		}
		end := to.AddDate(0, 0, 1)
		f.DueTo = &end
	}
	return f, nil
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	filter, err := filterFromQuery(r, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter")
		return
	}
	tasks, err := a.Repo.ListTasks(r.Context(), userID, filter)
	if err != nil {
		a.Log.Error().Err(err).Msg("list tasks failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func taskFromRequest(req taskRequest, userID string) (models.Task, error) {
	if req.Title == "" {
		return models.Task{}, errors.New("title required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Recurrence != nil {
		switch req.Recurrence.Frequency {
		case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
			if req.Recurrence.Interval < 1 {
				req.Recurrence.Interval = 1
			}
		case models.FrequencyNone:
			req.Recurrence = nil
		default:
			return models.Task{}, errors.New("unknown recurrence frequency")
		}
	}
	for i := range req.Subtasks {
		if req.Subtasks[i].ID == "" {
			req.Subtasks[i].ID = uuid.NewString()
		}
	}
	return models.Task{
		UserID:      userID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Recurrence:  req.Recurrence,
		Subtasks:    req.Subtasks,
		Tags:        req.Tags,
	}, nil
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := taskFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := a.Repo.CreateTask(r.Context(), &task); err != nil {
		a.Log.Error().Err(err).Msg("create task failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := taskFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	task.ID = chi.URLParam(r, "id")
	if err := a.Repo.UpdateTask(r.Context(), &task); err != nil {
		a.taskError(w, err, "update task failed")
		return
	}
	updated, err := a.Repo.GetTask(r.Context(), userID, task.ID)
	if err != nil {
		a.taskError(w, err, "reload task failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := a.Repo.DeleteTask(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		a.taskError(w, err, "delete task failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	res, err := a.Repo.CompleteTask(r.Context(), userID, chi.URLParam(r, "id"), time.Now())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return
	case errors.Is(err, repo.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile not found")
		return
	case errors.Is(err, engine.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "ALREADY_COMPLETED", "Task is already completed")
		return
	case errors.Is(err, repo.ErrTransactionConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "Completion conflicted with concurrent updates, retry")
		return
	case err != nil:
		a.Log.Error().Err(err).Msg("complete task failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{
		Profile:     newProfileResponse(res.Profile),
		SpawnedTask: res.Spawned,
	})
}

func (a *API) handleReopenTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	taskID := chi.URLParam(r, "id")
	if err := a.Repo.ReopenTask(r.Context(), userID, taskID); err != nil {
		a.taskError(w, err, "reopen task failed")
		return
	}
	task, err := a.Repo.GetTask(r.Context(), userID, taskID)
	if err != nil {
		a.taskError(w, err, "reload task failed")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleSetSubtask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req subtaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := a.Repo.SetSubtaskDone(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "subtaskID"), req.IsCompleted)
	if err != nil {
		a.taskError(w, err, "set subtask failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGenerateTasks(w http.ResponseWriter, r *http.Request) {
	if !a.AI.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "AI_DISABLED", "AI suggestions are not configured")
		return
	}
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	suggestions, err := a.AI.SuggestTasks(r.Context(), req.Goal)
	if err != nil {
		a.Log.Error().Err(err).Msg("suggestion request failed")
		writeError(w, http.StatusBadGateway, "AI_FAILED", "Could not generate suggestions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (a *API) taskError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return
	}
	a.Log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
