package roles

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/shared"
)

func newTestRouter(t *testing.T, repo *mockRepository) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	service, _ := newTestService(repo)
	store := catalog.NewStore(client, nil, catalog.Default, time.Hour)
	handler := NewTeamHandler(nil, service, store, shared.Authorizer{})

	r := chi.NewRouter()
	r.Route("/api/teams/{teamID}/roles", handler.MountTeamRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, perms ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	sess := &shared.Session{ActorID: "user-1", TeamID: "team-1", Permissions: perms}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListRolesEndpoint(t *testing.T) {
	repo := newMockRepository()
	repo.seed(Role{Scope: "team-1", Name: "Owner", IsSystem: true, Permissions: []string{"links:view"}})
	repo.seed(Role{Scope: "team-1", Name: "Editors", Permissions: []string{"links:view", "links:edit"}})
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodGet, "/api/teams/team-1/roles/", nil, shared.PermTeamView)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data []struct {
			Name         string `json:"name"`
			IsSystem     bool   `json:"isSystem"`
			CanBeDeleted bool   `json:"canBeDeleted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Owner", out.Data[0].Name)
	assert.False(t, out.Data[0].CanBeDeleted)
	assert.True(t, out.Data[1].CanBeDeleted)
}

func TestListRolesRequiresPermission(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/teams/team-1/roles/", nil, "billing:view")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRoleEndpoint(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodPost, "/api/teams/team-1/roles/", map[string]any{
		"name":        "Editors",
		"permissions": []string{"links:view", "links:edit"},
	}, shared.PermManageRoles)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created roleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Editors", created.Name)
	assert.Equal(t, "team-1", created.Scope)
	assert.Equal(t, DefaultColor, created.Color)
	assert.True(t, created.CanBeDeleted)
}

func TestCreateRoleViewerForbidden(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/teams/team-1/roles/", map[string]any{
		"name":        "Editors",
		"permissions": []string{"links:view"},
	}, shared.PermTeamView)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRoleEndpointValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/teams/team-1/roles/", map[string]any{
		"name":        "Broken",
		"permissions": []string{"links:fly"},
	}, shared.PermManageRoles)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/teams/team-1/roles/", map[string]any{
		"name":        "Empty",
		"permissions": []string{},
	}, shared.PermManageRoles)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRoleEndpoint(t *testing.T) {
	repo := newMockRepository()
	repo.seed(Role{Scope: "team-1", Name: "Keep", Permissions: []string{"links:view"}})
	spare := repo.seed(Role{Scope: "team-1", Name: "Spare", Permissions: []string{"links:view"}})
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodDelete, "/api/teams/team-1/roles/"+strconv.FormatInt(spare.ID, 10), nil, shared.PermManageRoles)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/teams/team-1/roles/999", nil, shared.PermManageRoles)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/teams/team-1/roles/abc", nil, shared.PermManageRoles)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareRolesEndpoint(t *testing.T) {
	repo := newMockRepository()
	repo.seed(Role{Scope: "team-1", Name: "Admin", Permissions: []string{"links:view", "links:create"}})
	repo.seed(Role{Scope: "team-1", Name: "Viewer", Permissions: []string{"links:view"}})
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodGet, "/api/teams/team-1/roles/compare", nil, shared.PermTeamView)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Roles  []string `json:"roles"`
		Groups []struct {
			Key  string `json:"key"`
			Rows []struct {
				Key   string          `json:"key"`
				Label string          `json:"label"`
				Roles map[string]bool `json:"roles"`
			} `json:"rows"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Admin", "Viewer"}, out.Roles)
	require.NotEmpty(t, out.Groups)
	assert.Equal(t, "links", out.Groups[0].Key)

	rows := out.Groups[0].Rows
	require.NotEmpty(t, rows)
	assert.Equal(t, "links:view", rows[0].Key)
	assert.Equal(t, "View links", rows[0].Label)
	assert.Equal(t, map[string]bool{"Admin": true, "Viewer": true}, rows[0].Roles)
}
