package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lnk-io/lnk-console/internal/audit"
	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/observability"
	"github.com/lnk-io/lnk-console/internal/roles"
	"github.com/lnk-io/lnk-console/internal/shared"
	"github.com/lnk-io/lnk-console/internal/teams"
	"github.com/lnk-io/lnk-console/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	CatalogHandler    *catalog.Handler
	TeamRolesHandler  *roles.Handler
	AdminRolesHandler *roles.Handler
	TeamsHandler      *teams.Handler
	AuditHandler      *audit.Handler
	JobsHandler       *jobs.Handler

	Authz   shared.Authorizer
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/permissions", params.CatalogHandler.MountRoutes)
		r.Route("/teams", func(r chi.Router) {
			params.TeamsHandler.MountRoutes(r)
			r.Route("/{teamID}/roles", params.TeamRolesHandler.MountTeamRoutes)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Route("/roles", params.AdminRolesHandler.MountAdminRoutes)
			r.Route("/audit", params.AuditHandler.MountRoutes)
			if params.JobsHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(params.Authz.RequirePlatform())
					params.JobsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
