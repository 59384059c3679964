package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, scope, name, description, color, permissions, is_default, is_system, position, created_at, updated_at`

// ListRoles returns all roles in scope ordered by position then name.
func (r *Repository) ListRoles(ctx context.Context, scope string) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE scope = $1 ORDER BY position, name`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches one role by scope and ID.
func (r *Repository) GetRole(ctx context.Context, scope string, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE scope = $1 AND id = $2`, scope, id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CreateRole inserts a new role. A name collision within scope returns
// ErrNameTaken.
func (r *Repository) CreateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (scope, name, description, color, permissions, is_default, is_system, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE((SELECT MAX(position)+1 FROM roles WHERE scope = $1), 0))
		 RETURNING `+roleColumns,
		role.Scope, role.Name, role.Description, role.Color, role.Permissions, role.IsDefault, role.IsSystem)
	created, err := scanRole(row)
	if err != nil {
		return Role{}, mapWriteError(err)
	}
	return created, nil
}

// UpdateRole updates name, description, color, permissions and default flag.
func (r *Repository) UpdateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE roles
		 SET name = $3, description = $4, color = $5, permissions = $6, is_default = $7, updated_at = now()
		 WHERE scope = $1 AND id = $2 AND NOT is_system
		 RETURNING `+roleColumns,
		role.Scope, role.ID, role.Name, role.Description, role.Color, role.Permissions, role.IsDefault)
	updated, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, mapWriteError(err)
	}
	return updated, nil
}

// DeleteRole removes a role, returning the number of rows deleted.
func (r *Repository) DeleteRole(ctx context.Context, scope string, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM roles WHERE scope = $1 AND id = $2 AND NOT is_system`, scope, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountRoles returns the number of roles in scope.
func (r *Repository) CountRoles(ctx context.Context, scope string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles WHERE scope = $1`, scope).Scan(&n)
	return n, err
}

// RoleUsage returns how many team members currently hold the role.
func (r *Repository) RoleUsage(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE role_id = $1`, id).Scan(&n)
	return n, err
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Scope, &role.Name, &role.Description, &role.Color,
		&role.Permissions, &role.IsDefault, &role.IsSystem, &role.Position,
		&role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrNameTaken
	}
	return err
}
