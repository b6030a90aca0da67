package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/catalog"
	"github.com/gradebook/gradebook/internal/grades"
	"github.com/gradebook/gradebook/internal/knowledgetests"
	"github.com/gradebook/gradebook/internal/observability"
	"github.com/gradebook/gradebook/internal/platform/httpx"
	"github.com/gradebook/gradebook/internal/students"
	"github.com/gradebook/gradebook/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Authenticator *auth.Authenticator
	Metrics       *observability.Metrics

	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	StudentsHandler *students.Handler
	ClassesHandler  *catalog.Handler
	SubjectsHandler *catalog.Handler
	TestsHandler    *knowledgetests.Handler
	GradesHandler   *grades.Handler
}

// NewRouter constructs the chi.Router with gradebook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:        params.Logger,
		Config:        params.Config,
		Authenticator: params.Authenticator,
		Metrics:       params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if params.AuthHandler != nil {
				params.AuthHandler.MountRoutes(r)
			}
			if params.UsersHandler != nil {
				params.UsersHandler.MountRegistration(r)
			}
			if params.StudentsHandler != nil {
				params.StudentsHandler.MountRegistration(r)
			}
		})
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.StudentsHandler != nil {
			r.Route("/students", params.StudentsHandler.MountRoutes)
		}
		if params.ClassesHandler != nil {
			r.Route("/classes", params.ClassesHandler.MountRoutes)
		}
		if params.SubjectsHandler != nil {
			r.Route("/subjects", params.SubjectsHandler.MountRoutes)
		}
		if params.TestsHandler != nil {
			r.Route("/knowledge_tests", params.TestsHandler.MountRoutes)
		}
		if params.GradesHandler != nil {
			r.Route("/grades", params.GradesHandler.MountRoutes)
		}
	})

	return r
}
