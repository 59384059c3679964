package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
	"github.com/lnk-io/lnk-console/internal/shared"
)

// Handler exposes the audit trail to the admin console.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	authz  shared.Authorizer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, authz shared.Authorizer) *Handler {
	return &Handler{logger: logger, repo: repo, authz: authz}
}

// MountRoutes registers audit routes behind the platform guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePlatform())
		r.Get("/", h.listEvents)
	})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	scope := r.URL.Query().Get("scope")
	events, total, err := h.repo.ListRecent(r.Context(), scope, perPage, (page-1)*perPage)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list audit events", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Envelope{Data: events, Meta: shared.NewPagination(page, perPage, total)})
}
