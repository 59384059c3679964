package teams

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for teams.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTeams returns a page of teams and the total count.
func (r *Repository) ListTeams(ctx context.Context, limit, offset int) ([]Team, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM teams ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		teams = append(teams, t)
	}
	return teams, total, rows.Err()
}

// GetTeam fetches one team by ID.
func (r *Repository) GetTeam(ctx context.Context, id string) (Team, error) {
	var t Team
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, err
	}
	return t, nil
}

// CreateTeam inserts a team. Slug collisions return ErrSlugTaken.
func (r *Repository) CreateTeam(ctx context.Context, team Team) (Team, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teams (id, name, slug) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		team.ID, team.Name, team.Slug).
		Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return Team{}, mapWriteError(err)
	}
	return team, nil
}

// UpdateTeam updates name and slug.
func (r *Repository) UpdateTeam(ctx context.Context, team Team) (Team, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE teams SET name = $2, slug = $3, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		team.ID, team.Name, team.Slug).
		Scan(&team.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, mapWriteError(err)
	}
	return team, nil
}

// DeleteTeam removes a team, returning the rows deleted.
func (r *Repository) DeleteTeam(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListMembers returns a page of team members and the total count.
func (r *Repository) ListMembers(ctx context.Context, teamID string, limit, offset int) ([]Member, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, team_id, user_id, email, role_id, joined_at
		 FROM team_members WHERE team_id = $1 ORDER BY joined_at LIMIT $2 OFFSET $3`,
		teamID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Email, &m.RoleID, &m.JoinedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

// GetMember fetches one member.
func (r *Repository) GetMember(ctx context.Context, teamID string, memberID int64) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx,
		`SELECT id, team_id, user_id, email, role_id, joined_at
		 FROM team_members WHERE team_id = $1 AND id = $2`, teamID, memberID).
		Scan(&m.ID, &m.TeamID, &m.UserID, &m.Email, &m.RoleID, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// UpdateMemberRole reassigns a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, teamID string, memberID, roleID int64) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx,
		`UPDATE team_members SET role_id = $3 WHERE team_id = $1 AND id = $2
		 RETURNING id, team_id, user_id, email, role_id, joined_at`,
		teamID, memberID, roleID).
		Scan(&m.ID, &m.TeamID, &m.UserID, &m.Email, &m.RoleID, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// RemoveMember deletes a membership, returning the rows deleted.
func (r *Repository) RemoveMember(ctx context.Context, teamID string, memberID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND id = $2`, teamID, memberID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreateMember inserts a membership.
func (r *Repository) CreateMember(ctx context.Context, member Member) (Member, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO team_members (team_id, user_id, email, role_id)
		 VALUES ($1, $2, $3, $4) RETURNING id, joined_at`,
		member.TeamID, member.UserID, member.Email, member.RoleID).
		Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return Member{}, mapWriteError(err)
	}
	return member, nil
}

// AcceptInvitation inserts the membership and closes the invitation in one
// transaction, so a failed status update cannot strand an accepted member
// behind a still-pending invite.
func (r *Repository) AcceptInvitation(ctx context.Context, invite Invitation, member Member) (Member, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Member{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx,
		`INSERT INTO team_members (team_id, user_id, email, role_id)
		 VALUES ($1, $2, $3, $4) RETURNING id, joined_at`,
		member.TeamID, member.UserID, member.Email, member.RoleID).
		Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return Member{}, mapWriteError(err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE team_invitations SET token = $2, status = $3, expires_at = $4 WHERE id = $1`,
		invite.ID, invite.Token, invite.Status, invite.ExpiresAt)
	if err != nil {
		return Member{}, err
	}
	if tag.RowsAffected() == 0 {
		return Member{}, ErrInviteNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return Member{}, err
	}
	return member, nil
}

// ListInvitations returns a page of invitations and the total count.
func (r *Repository) ListInvitations(ctx context.Context, teamID string, limit, offset int) ([]Invitation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_invitations WHERE team_id = $1`, teamID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, team_id, email, role_id, token, status, expires_at, created_at
		 FROM team_invitations WHERE team_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		teamID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invites []Invitation
	for rows.Next() {
		invite, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invites = append(invites, invite)
	}
	return invites, total, rows.Err()
}

// GetInvitation fetches one invitation by team and ID.
func (r *Repository) GetInvitation(ctx context.Context, teamID, inviteID string) (Invitation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, team_id, email, role_id, token, status, expires_at, created_at
		 FROM team_invitations WHERE team_id = $1 AND id = $2`, teamID, inviteID)
	invite, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invitation{}, ErrInviteNotFound
		}
		return Invitation{}, err
	}
	return invite, nil
}

// GetInvitationByToken fetches an invitation by its accept token.
func (r *Repository) GetInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, team_id, email, role_id, token, status, expires_at, created_at
		 FROM team_invitations WHERE token = $1`, token)
	invite, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invitation{}, ErrInviteNotFound
		}
		return Invitation{}, err
	}
	return invite, nil
}

// CreateInvitation inserts an invitation.
func (r *Repository) CreateInvitation(ctx context.Context, invite Invitation) (Invitation, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO team_invitations (id, team_id, email, role_id, token, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		invite.ID, invite.TeamID, invite.Email, invite.RoleID, invite.Token, invite.Status, invite.ExpiresAt).
		Scan(&invite.CreatedAt)
	if err != nil {
		return Invitation{}, mapWriteError(err)
	}
	return invite, nil
}

// HasPendingInvitation reports whether a pending invitation exists for the
// email in the team.
func (r *Repository) HasPendingInvitation(ctx context.Context, teamID, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_invitations WHERE team_id = $1 AND email = $2 AND status = $3)`,
		teamID, email, InviteStatusPending).Scan(&exists)
	return exists, err
}

// UpdateInvitation updates token, status, and expiry.
func (r *Repository) UpdateInvitation(ctx context.Context, invite Invitation) (Invitation, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE team_invitations SET token = $2, status = $3, expires_at = $4 WHERE id = $1`,
		invite.ID, invite.Token, invite.Status, invite.ExpiresAt)
	if err != nil {
		return Invitation{}, err
	}
	if tag.RowsAffected() == 0 {
		return Invitation{}, ErrInviteNotFound
	}
	return invite, nil
}

// ListAPIKeys returns the team's API keys.
func (r *Repository) ListAPIKeys(ctx context.Context, teamID string) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, team_id, name, prefix, secret_hash, expires_at, created_at
		 FROM team_api_keys WHERE team_id = $1 ORDER BY created_at DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.TeamID, &k.Name, &k.Prefix, &k.SecretHash, &k.ExpiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CreateAPIKey inserts an API key.
func (r *Repository) CreateAPIKey(ctx context.Context, key APIKey) (APIKey, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO team_api_keys (id, team_id, name, prefix, secret_hash, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		key.ID, key.TeamID, key.Name, key.Prefix, key.SecretHash, key.ExpiresAt).
		Scan(&key.CreatedAt)
	if err != nil {
		return APIKey{}, mapWriteError(err)
	}
	return key, nil
}

// DeleteAPIKey removes a key, returning the rows deleted.
func (r *Repository) DeleteAPIKey(ctx context.Context, teamID, keyID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM team_api_keys WHERE team_id = $1 AND id = $2`, teamID, keyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanInvitation(row pgx.Row) (Invitation, error) {
	var i Invitation
	err := row.Scan(&i.ID, &i.TeamID, &i.Email, &i.RoleID, &i.Token, &i.Status, &i.ExpiresAt, &i.CreatedAt)
	return i, err
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return httpx.ErrDuplicate
	}
	return err
}
