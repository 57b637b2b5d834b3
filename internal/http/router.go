package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"zenithlist/internal/ai"
	"zenithlist/internal/auth"
	"zenithlist/internal/repo"
	"zenithlist/internal/service"
)

type API struct {
	Repo    *repo.Repo
	Service *service.Service
	Auth    *auth.Manager
	AI      *ai.Client
	Log     zerolog.Logger
	Origins []string
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(a.loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
		r.Post("/refresh", a.handleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/me", a.handleMe)
		r.Get("/profile", a.handleProfile)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", a.handleListTasks)
			r.Post("/", a.handleCreateTask)
			r.Post("/generate", a.handleGenerateTasks)
			r.Put("/{id}", a.handleUpdateTask)
			r.Delete("/{id}", a.handleDeleteTask)
			r.Post("/{id}/complete", a.handleCompleteTask)
			r.Post("/{id}/reopen", a.handleReopenTask)
			r.Put("/{id}/subtasks/{subtaskID}", a.handleSetSubtask)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", a.handleListProjects)
			r.Post("/", a.handleCreateProject)
			r.Put("/{id}", a.handleUpdateProject)
			r.Delete("/{id}", a.handleDeleteProject)
		})
		r.Route("/focus", func(r chi.Router) {
			r.Get("/sessions", a.handleListFocusSessions)
			r.Post("/sessions", a.handleCreateFocusSession)
		})
	})

	return r
}
