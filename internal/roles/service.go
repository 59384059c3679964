package roles

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/platform/httpx"
)

// Domain errors, wrapped around the httpx sentinels so handlers map them to
// the right status without extra plumbing.
var (
	ErrNotFound     = fmt.Errorf("%w: role", httpx.ErrNotFound)
	ErrNameRequired = fmt.Errorf("%w: role name required", httpx.ErrValidation)
	ErrNoPermission = fmt.Errorf("%w: role needs at least one permission", httpx.ErrValidation)
	ErrNameTaken    = fmt.Errorf("%w: role name already in use", httpx.ErrDuplicate)
	ErrSystemRole   = fmt.Errorf("%w: system roles cannot be modified", httpx.ErrForbidden)
	ErrRoleInUse    = fmt.Errorf("%w: role is assigned to members", httpx.ErrConflict)
	ErrLastRole     = fmt.Errorf("%w: cannot delete the last role in scope", httpx.ErrConflict)
)

// RepositoryPort defines data access for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context, scope string) ([]Role, error)
	GetRole(ctx context.Context, scope string, id int64) (Role, error)
	CreateRole(ctx context.Context, role Role) (Role, error)
	UpdateRole(ctx context.Context, role Role) (Role, error)
	DeleteRole(ctx context.Context, scope string, id int64) (int64, error)
	CountRoles(ctx context.Context, scope string) (int, error)
	RoleUsage(ctx context.Context, id int64) (int, error)
}

// AuditRecorder records role mutations. Recording is best effort and never
// fails the mutation.
type AuditRecorder interface {
	Record(ctx context.Context, action, scope, subject string, payload any)
}

// RoleInput carries the create/update payload shape shared by every call
// site.
type RoleInput struct {
	Name        string
	Description string
	Color       string
	Permissions []string
	IsDefault   bool
}

// Service handles role business logic for all scopes.
type Service struct {
	repo    RepositoryPort
	catalog *catalog.Catalog
	audit   AuditRecorder
	logger  *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cat *catalog.Catalog, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: cat, audit: audit, logger: logger}
}

// ListRoles returns all roles in scope ordered by position then name.
func (s *Service) ListRoles(ctx context.Context, scope string) ([]Role, error) {
	return s.repo.ListRoles(ctx, scope)
}

// GetRole fetches one role within scope.
func (s *Service) GetRole(ctx context.Context, scope string, id int64) (Role, error) {
	return s.repo.GetRole(ctx, scope, id)
}

// CreateRole validates and inserts a new role.
func (s *Service) CreateRole(ctx context.Context, scope string, in RoleInput) (Role, error) {
	role, err := s.buildRole(scope, in)
	if err != nil {
		return Role{}, err
	}
	created, err := s.repo.CreateRole(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, "role.created", scope, created.Name, created)
	return created, nil
}

// UpdateRole validates and updates an existing role. System roles are
// rejected.
func (s *Service) UpdateRole(ctx context.Context, scope string, id int64, in RoleInput) (Role, error) {
	current, err := s.repo.GetRole(ctx, scope, id)
	if err != nil {
		return Role{}, err
	}
	if current.IsSystem {
		return Role{}, ErrSystemRole
	}
	role, err := s.buildRole(scope, in)
	if err != nil {
		return Role{}, err
	}
	role.ID = id
	role.Position = current.Position
	updated, err := s.repo.UpdateRole(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, "role.updated", scope, updated.Name, updated)
	return updated, nil
}

// DeleteRole removes a role. Deletion is refused for system roles, for roles
// still assigned to members, and for the last role in scope.
func (s *Service) DeleteRole(ctx context.Context, scope string, id int64) error {
	role, err := s.repo.GetRole(ctx, scope, id)
	if err != nil {
		return err
	}
	if !role.CanBeDeleted() {
		return ErrSystemRole
	}
	usage, err := s.repo.RoleUsage(ctx, id)
	if err != nil {
		return err
	}
	if usage > 0 {
		return ErrRoleInUse
	}
	total, err := s.repo.CountRoles(ctx, scope)
	if err != nil {
		return err
	}
	if total <= 1 {
		return ErrLastRole
	}
	rows, err := s.repo.DeleteRole(ctx, scope, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.record(ctx, "role.deleted", scope, role.Name, nil)
	return nil
}

// DuplicateRole copies a role under a new server-assigned ID. The copy is
// never a default or system role.
func (s *Service) DuplicateRole(ctx context.Context, scope string, id int64, newName string) (Role, error) {
	source, err := s.repo.GetRole(ctx, scope, id)
	if err != nil {
		return Role{}, err
	}
	copyRole, err := s.buildRole(scope, RoleInput{
		Name:        newName,
		Description: source.Description,
		Color:       source.Color,
		Permissions: source.Permissions,
	})
	if err != nil {
		return Role{}, err
	}
	created, err := s.repo.CreateRole(ctx, copyRole)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, "role.duplicated", scope, created.Name, map[string]any{"sourceId": source.ID})
	return created, nil
}

// buildRole normalizes and validates input into a persistable Role.
func (s *Service) buildRole(scope string, in RoleInput) (Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Role{}, ErrNameRequired
	}
	perms := normalizeKeys(in.Permissions)
	if len(perms) == 0 {
		return Role{}, ErrNoPermission
	}
	for _, key := range perms {
		if !s.catalog.Contains(key) {
			return Role{}, fmt.Errorf("%w: unknown permission %q", httpx.ErrValidation, key)
		}
	}
	color := in.Color
	if !ValidColor(color) {
		color = DefaultColor
	}
	return Role{
		Scope:       scope,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		Permissions: perms,
		IsDefault:   in.IsDefault,
	}, nil
}

func (s *Service) record(ctx context.Context, action, scope, subject string, payload any) {
	if s.audit != nil {
		s.audit.Record(ctx, action, scope, subject, payload)
	}
}

// normalizeKeys trims, deduplicates, and sorts permission keys.
func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
