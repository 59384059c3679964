package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/platform/httpx"
	"github.com/lnk-io/lnk-console/internal/shared"
)

// Handler exposes the role management JSON API for one scope family. The
// team and admin consoles are thin call sites over the same handler,
// differing only in scope resolution and route guards.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog *catalog.Store
	authz   shared.Authorizer
	scope   func(r *http.Request) string
}

// NewTeamHandler builds the handler variant mounted under a team scope.
func NewTeamHandler(logger *slog.Logger, service *Service, cat *catalog.Store, authz shared.Authorizer) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		catalog: cat,
		authz:   authz,
		scope: func(r *http.Request) string {
			return chi.URLParam(r, "teamID")
		},
	}
}

// NewAdminHandler builds the handler variant for platform preset and admin
// roles.
func NewAdminHandler(logger *slog.Logger, service *Service, cat *catalog.Store, authz shared.Authorizer) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		catalog: cat,
		authz:   authz,
		scope: func(*http.Request) string {
			return ScopePlatform
		},
	}
}

// MountTeamRoutes registers team role routes. Reads need team:view, writes
// need team:manage_roles.
func (h *Handler) MountTeamRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermTeamView, shared.PermManageRoles))
		r.Get("/", h.listRoles)
		r.Get("/compare", h.compareRoles)
		r.Get("/{roleID}", h.getRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(shared.PermManageRoles))
		r.Post("/", h.createRole)
		r.Put("/{roleID}", h.updateRole)
		r.Delete("/{roleID}", h.deleteRole)
		r.Post("/{roleID}/duplicate", h.duplicateRole)
	})
}

// MountAdminRoutes registers platform role routes behind the platform guard.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePlatform())
		r.Get("/", h.listRoles)
		r.Get("/compare", h.compareRoles)
		r.Get("/{roleID}", h.getRole)
		r.Post("/", h.createRole)
		r.Put("/{roleID}", h.updateRole)
		r.Delete("/{roleID}", h.deleteRole)
		r.Post("/{roleID}/duplicate", h.duplicateRole)
	})
}

type roleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	IsDefault   bool     `json:"isDefault"`
}

type duplicateRequest struct {
	Name string `json:"name" validate:"required"`
}

type roleResponse struct {
	Role
	CanBeDeleted bool `json:"canBeDeleted"`
}

func toResponse(role Role) roleResponse {
	return roleResponse{Role: role, CanBeDeleted: role.CanBeDeleted()}
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRoles(r.Context(), h.scope(r))
	if err != nil {
		h.fail(w, r, "list roles", err)
		return
	}
	out := make([]roleResponse, len(list))
	for i, role := range list {
		out[i] = toResponse(role)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), h.scope(r), id)
	if err != nil {
		h.fail(w, r, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(role))
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.CreateRole(r.Context(), h.scope(r), RoleInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Permissions: req.Permissions,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		h.fail(w, r, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(role))
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.UpdateRole(r.Context(), h.scope(r), id, RoleInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Permissions: req.Permissions,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		h.fail(w, r, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(role))
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), h.scope(r), id); err != nil {
		h.fail(w, r, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) duplicateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	var req duplicateRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.DuplicateRole(r.Context(), h.scope(r), id, req.Name)
	if err != nil {
		h.fail(w, r, "duplicate role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(role))
}

func (h *Handler) compareRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRoles(r.Context(), h.scope(r))
	if err != nil {
		h.fail(w, r, "compare roles", err)
		return
	}
	matrix := NewMatrix(list)
	cat := h.catalog.Get(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"roles":  matrix.RoleNames(),
		"groups": matrix.Comparison(cat),
	})
}

func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid role id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
