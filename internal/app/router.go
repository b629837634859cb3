package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/instamunch/instamunch-api/internal/auth"
	"github.com/instamunch/instamunch-api/internal/observability"
	"github.com/instamunch/instamunch-api/internal/ops"
	"github.com/instamunch/instamunch-api/internal/platform/httpx"
	"github.com/instamunch/instamunch-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	Verifier   *auth.Verifier
	Resolver   *auth.Resolver
	Operations *ops.HTTPHandler
	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:   params.Logger,
			Config:   params.Config,
			Metrics:  params.Metrics,
			Verifier: params.Verifier,
			Resolver: params.Resolver,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.Operations != nil {
			r.Route("/api/v1/ops", params.Operations.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
