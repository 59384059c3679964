package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
)

// Handler serves the permission catalog to the console UI.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers catalog routes. The catalog is not sensitive; any
// authenticated session may read it.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listGroups)
}

type groupResponse struct {
	Key         string               `json:"key"`
	DisplayName string               `json:"displayName"`
	Permissions []permissionResponse `json:"permissions"`
}

type permissionResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	cat := h.store.Get(r.Context())
	groups := cat.GroupsInOrder()
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		perms := make([]permissionResponse, len(g.Permissions))
		for j, key := range g.Permissions {
			perms[j] = permissionResponse{Key: key, Label: cat.LabelFor(key)}
		}
		out[i] = groupResponse{Key: g.Key, DisplayName: g.DisplayName, Permissions: perms}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": out})
}
