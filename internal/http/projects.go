package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zenithlist/internal/auth"
	"zenithlist/internal/models"
	"zenithlist/internal/repo"
)

type projectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type focusSessionRequest struct {
	StartedAt       time.Time `json:"started_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	projects, err := a.Repo.ListProjects(r.Context(), userID)
	if err != nil {
		a.Log.Error().Err(err).Msg("list projects failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Project name required")
		return
	}
	project := models.Project{UserID: userID, Name: req.Name, Color: req.Color}
	if err := a.Repo.CreateProject(r.Context(), &project); err != nil {
		a.Log.Error().Err(err).Msg("create project failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Project name required")
		return
	}
	project := models.Project{ID: chi.URLParam(r, "id"), UserID: userID, Name: req.Name, Color: req.Color}
	if err := a.Repo.UpdateProject(r.Context(), &project); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Project not found")
			return
		}
		a.Log.Error().Err(err).Msg("update project failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// handleDeleteProject detaches the project's tasks by default; ?cascade=true
// deletes them along with the project.
func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	cascade := r.URL.Query().Get("cascade") == "true"
	err := a.Repo.DeleteProject(r.Context(), userID, chi.URLParam(r, "id"), cascade)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Project not found")
			return
		}
		a.Log.Error().Err(err).Msg("delete project failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListFocusSessions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	sessions, err := a.Repo.ListFocusSessions(r.Context(), userID)
	if err != nil {
		a.Log.Error().Err(err).Msg("list focus sessions failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (a *API) handleCreateFocusSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req focusSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DurationMinutes < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "duration_minutes must be positive")
		return
	}
	if req.StartedAt.IsZero() {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "started_at required")
		return
	}
	session := models.FocusSession{UserID: userID, StartedAt: req.StartedAt, DurationMinutes: req.DurationMinutes}
	if err := a.Repo.CreateFocusSession(r.Context(), &session); err != nil {
		a.Log.Error().Err(err).Msg("create focus session failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}
