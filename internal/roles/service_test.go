package roles

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/platform/httpx"
)

type mockRepository struct {
	roles  map[int64]Role
	nextID int64
	usage  map[int64]int

	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{roles: make(map[int64]Role), usage: make(map[int64]int), nextID: 1}
}

func (m *mockRepository) seed(role Role) Role {
	role.ID = m.nextID
	m.nextID++
	m.roles[role.ID] = role
	return role
}

func (m *mockRepository) ListRoles(ctx context.Context, scope string) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) GetRole(ctx context.Context, scope string, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok || r.Scope != scope {
		return Role{}, ErrNotFound
	}
	return r, nil
}

func (m *mockRepository) CreateRole(ctx context.Context, role Role) (Role, error) {
	if m.createErr != nil {
		return Role{}, m.createErr
	}
	for _, existing := range m.roles {
		if existing.Scope == role.Scope && existing.Name == role.Name {
			return Role{}, ErrNameTaken
		}
	}
	return m.seed(role), nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, role Role) (Role, error) {
	current, ok := m.roles[role.ID]
	if !ok || current.Scope != role.Scope {
		return Role{}, ErrNotFound
	}
	for id, existing := range m.roles {
		if id != role.ID && existing.Scope == role.Scope && existing.Name == role.Name {
			return Role{}, ErrNameTaken
		}
	}
	role.IsSystem = current.IsSystem
	role.Position = current.Position
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRepository) DeleteRole(ctx context.Context, scope string, id int64) (int64, error) {
	r, ok := m.roles[id]
	if !ok || r.Scope != scope || r.IsSystem {
		return 0, nil
	}
	delete(m.roles, id)
	return 1, nil
}

func (m *mockRepository) CountRoles(ctx context.Context, scope string) (int, error) {
	n := 0
	for _, r := range m.roles {
		if r.Scope == scope {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) RoleUsage(ctx context.Context, id int64) (int, error) {
	return m.usage[id], nil
}

type recordedEvent struct {
	action, scope, subject string
}

type mockAudit struct {
	events []recordedEvent
}

func (m *mockAudit) Record(ctx context.Context, action, scope, subject string, payload any) {
	m.events = append(m.events, recordedEvent{action: action, scope: scope, subject: subject})
}

func newTestService(repo *mockRepository) (*Service, *mockAudit) {
	audit := &mockAudit{}
	return NewService(repo, catalog.Default(), audit, nil), audit
}

func TestCreateRoleValidation(t *testing.T) {
	svc, _ := newTestService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "team-1", RoleInput{Name: "  ", Permissions: []string{"links:view"}})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateRole(ctx, "team-1", RoleInput{Name: "Support", Permissions: nil})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateRole(ctx, "team-1", RoleInput{Name: "Support", Permissions: []string{"nonsense:perm"}})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRoleNormalizesInput(t *testing.T) {
	svc, audit := newTestService(newMockRepository())

	role, err := svc.CreateRole(context.Background(), "team-1", RoleInput{
		Name:        "  Support  ",
		Color:       "not-a-color",
		Permissions: []string{"links:view", "links:view", " links:create "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Support", role.Name)
	assert.Equal(t, DefaultColor, role.Color)
	assert.Equal(t, []string{"links:create", "links:view"}, role.Permissions)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "role.created", audit.events[0].action)
}

func TestCreateRoleDuplicateName(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "team-1", RoleInput{Name: "Support", Permissions: []string{"links:view"}})
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, "team-1", RoleInput{Name: "Support", Permissions: []string{"links:view"}})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	// Same name in another scope is fine.
	_, err = svc.CreateRole(ctx, "team-2", RoleInput{Name: "Support", Permissions: []string{"links:view"}})
	assert.NoError(t, err)
}

func TestUpdateRoleRejectsSystemRole(t *testing.T) {
	repo := newMockRepository()
	owner := repo.seed(Role{Scope: ScopePlatform, Name: "Owner", IsSystem: true, Permissions: []string{"links:view"}})
	svc, _ := newTestService(repo)

	_, err := svc.UpdateRole(context.Background(), ScopePlatform, owner.ID, RoleInput{Name: "Owner2", Permissions: []string{"links:view"}})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDeleteRoleGuards(t *testing.T) {
	repo := newMockRepository()
	system := repo.seed(Role{Scope: "team-1", Name: "Owner", IsSystem: true, Permissions: []string{"links:view"}})
	inUse := repo.seed(Role{Scope: "team-1", Name: "Editors", Permissions: []string{"links:edit"}})
	free := repo.seed(Role{Scope: "team-1", Name: "Spare", Permissions: []string{"links:view"}})
	repo.usage[inUse.ID] = 3
	svc, _ := newTestService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteRole(ctx, "team-1", system.ID), httpx.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteRole(ctx, "team-1", inUse.ID), httpx.ErrConflict)
	assert.NoError(t, svc.DeleteRole(ctx, "team-1", free.ID))
	assert.ErrorIs(t, svc.DeleteRole(ctx, "team-1", free.ID), httpx.ErrNotFound)
}

func TestDeleteLastRoleBlocked(t *testing.T) {
	repo := newMockRepository()
	only := repo.seed(Role{Scope: "team-1", Name: "Solo", Permissions: []string{"links:view"}})
	svc, _ := newTestService(repo)

	assert.ErrorIs(t, svc.DeleteRole(context.Background(), "team-1", only.ID), httpx.ErrConflict)
}

func TestDuplicateRole(t *testing.T) {
	repo := newMockRepository()
	source := repo.seed(Role{
		Scope: "team-1", Name: "Editors", Color: Palette[2],
		Permissions: []string{"links:edit", "links:view"},
		IsDefault:   true, IsSystem: true,
	})
	svc, audit := newTestService(repo)
	ctx := context.Background()

	copyRole, err := svc.DuplicateRole(ctx, "team-1", source.ID, "Editors Copy")
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, copyRole.ID)
	assert.Equal(t, source.Permissions, copyRole.Permissions)
	assert.Equal(t, source.Color, copyRole.Color)
	assert.False(t, copyRole.IsDefault)
	assert.False(t, copyRole.IsSystem)
	require.NotEmpty(t, audit.events)
	assert.Equal(t, "role.duplicated", audit.events[len(audit.events)-1].action)

	// Colliding name fails without side effects.
	_, err = svc.DuplicateRole(ctx, "team-1", source.ID, "Editors")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.DuplicateRole(ctx, "team-1", source.ID, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
