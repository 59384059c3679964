package teams

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
	"github.com/lnk-io/lnk-console/internal/shared"
)

// Handler exposes the team management JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   shared.Authorizer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz shared.Authorizer) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers team routes under /teams.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePlatform())
		r.Get("/", h.listTeams)
		r.Post("/", h.createTeam)
		r.Delete("/{teamID}", h.deleteTeam)
	})
	r.Post("/invitations/accept", h.acceptInvitation)
	r.Route("/{teamID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequireAny(shared.PermTeamView))
			r.Get("/", h.getTeam)
			r.Get("/members", h.listMembers)
			r.Get("/members/{memberID}", h.getMember)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequireAll(shared.PermManageMembers))
			r.Patch("/", h.updateTeam)
			r.Patch("/members/{memberID}", h.updateMemberRole)
			r.Delete("/members/{memberID}", h.removeMember)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequireAll(shared.PermTeamInvite))
			r.Get("/invitations", h.listInvitations)
			r.Post("/invitations", h.invite)
			r.Delete("/invitations/{inviteID}", h.cancelInvitation)
			r.Post("/invitations/{inviteID}/resend", h.resendInvitation)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequireAll(shared.PermIntegrationView))
			r.Get("/api-keys", h.listAPIKeys)
			r.Post("/api-keys", h.createAPIKey)
			r.Delete("/api-keys/{keyID}", h.deleteAPIKey)
		})
	})
}

type teamRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

type memberRoleRequest struct {
	RoleID int64 `json:"roleId" validate:"required"`
}

type inviteRequest struct {
	Email  string `json:"email" validate:"required,email"`
	RoleID int64  `json:"roleId" validate:"required"`
}

type acceptRequest struct {
	Token  string `json:"token" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type apiKeyRequest struct {
	Name      string     `json:"name" validate:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	teams, total, err := h.service.ListTeams(r.Context(), page, perPage)
	if err != nil {
		h.fail(w, r, "list teams", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Envelope{Data: teams, Meta: shared.NewPagination(page, perPage, total)})
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	team, err := h.service.CreateTeam(r.Context(), req.Name, req.Slug)
	if err != nil {
		h.fail(w, r, "create team", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.service.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, "get team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	team, err := h.service.UpdateTeam(r.Context(), chi.URLParam(r, "teamID"), req.Name, req.Slug)
	if err != nil {
		h.fail(w, r, "update team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		h.fail(w, r, "delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	members, total, err := h.service.ListMembers(r.Context(), chi.URLParam(r, "teamID"), page, perPage)
	if err != nil {
		h.fail(w, r, "list members", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Envelope{Data: members, Meta: shared.NewPagination(page, perPage, total)})
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.int64Param(w, r, "memberID")
	if !ok {
		return
	}
	member, err := h.service.GetMember(r.Context(), chi.URLParam(r, "teamID"), memberID)
	if err != nil {
		h.fail(w, r, "get member", err)
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.int64Param(w, r, "memberID")
	if !ok {
		return
	}
	var req memberRoleRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	member, err := h.service.UpdateMemberRole(r.Context(), chi.URLParam(r, "teamID"), memberID, req.RoleID)
	if err != nil {
		h.fail(w, r, "update member role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.int64Param(w, r, "memberID")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "teamID"), memberID); err != nil {
		h.fail(w, r, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listInvitations(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	invites, total, err := h.service.ListInvitations(r.Context(), chi.URLParam(r, "teamID"), page, perPage)
	if err != nil {
		h.fail(w, r, "list invitations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Envelope{Data: invites, Meta: shared.NewPagination(page, perPage, total)})
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	invite, err := h.service.Invite(r.Context(), chi.URLParam(r, "teamID"), req.Email, req.RoleID)
	if err != nil {
		h.fail(w, r, "invite member", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invite)
}

func (h *Handler) cancelInvitation(w http.ResponseWriter, r *http.Request) {
	err := h.service.CancelInvitation(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "inviteID"))
	if err != nil {
		h.fail(w, r, "cancel invitation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resendInvitation(w http.ResponseWriter, r *http.Request) {
	invite, err := h.service.ResendInvitation(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "inviteID"))
	if err != nil {
		h.fail(w, r, "resend invitation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invite)
}

func (h *Handler) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	member, err := h.service.AcceptInvitation(r.Context(), req.Token, req.UserID)
	if err != nil {
		h.fail(w, r, "accept invitation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, member)
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.ListAPIKeys(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, "list api keys", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": keys})
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key, secret, err := h.service.CreateAPIKey(r.Context(), chi.URLParam(r, "teamID"), req.Name, req.ExpiresAt)
	if err != nil {
		h.fail(w, r, "create api key", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"key": key, "secret": secret})
}

func (h *Handler) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteAPIKey(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "keyID"))
	if err != nil {
		h.fail(w, r, "delete api key", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+name)
		return 0, false
	}
	return v, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
