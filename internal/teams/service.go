package teams

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
	"github.com/lnk-io/lnk-console/internal/roles"
)

const inviteTTL = 7 * 24 * time.Hour

var (
	ErrTeamNotFound    = fmt.Errorf("%w: team", httpx.ErrNotFound)
	ErrMemberNotFound  = fmt.Errorf("%w: member", httpx.ErrNotFound)
	ErrInviteNotFound  = fmt.Errorf("%w: invitation", httpx.ErrNotFound)
	ErrKeyNotFound     = fmt.Errorf("%w: api key", httpx.ErrNotFound)
	ErrNameRequired    = fmt.Errorf("%w: team name required", httpx.ErrValidation)
	ErrEmailRequired   = fmt.Errorf("%w: email required", httpx.ErrValidation)
	ErrSlugTaken       = fmt.Errorf("%w: slug already in use", httpx.ErrDuplicate)
	ErrAlreadyInvited  = fmt.Errorf("%w: a pending invitation exists for this email", httpx.ErrDuplicate)
	ErrInviteExpired   = fmt.Errorf("%w: invitation expired", httpx.ErrConflict)
	ErrInviteNotOpen   = fmt.Errorf("%w: invitation is not pending", httpx.ErrConflict)
	ErrRoleUnavailable = fmt.Errorf("%w: role not available in this team", httpx.ErrValidation)
)

// RepositoryPort defines data access for teams, members, invitations, and
// API keys.
type RepositoryPort interface {
	ListTeams(ctx context.Context, limit, offset int) ([]Team, int, error)
	GetTeam(ctx context.Context, id string) (Team, error)
	CreateTeam(ctx context.Context, team Team) (Team, error)
	UpdateTeam(ctx context.Context, team Team) (Team, error)
	DeleteTeam(ctx context.Context, id string) (int64, error)

	ListMembers(ctx context.Context, teamID string, limit, offset int) ([]Member, int, error)
	GetMember(ctx context.Context, teamID string, memberID int64) (Member, error)
	UpdateMemberRole(ctx context.Context, teamID string, memberID, roleID int64) (Member, error)
	RemoveMember(ctx context.Context, teamID string, memberID int64) (int64, error)
	CreateMember(ctx context.Context, member Member) (Member, error)

	ListInvitations(ctx context.Context, teamID string, limit, offset int) ([]Invitation, int, error)
	GetInvitation(ctx context.Context, teamID, inviteID string) (Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	CreateInvitation(ctx context.Context, invite Invitation) (Invitation, error)
	HasPendingInvitation(ctx context.Context, teamID, email string) (bool, error)
	UpdateInvitation(ctx context.Context, invite Invitation) (Invitation, error)
	AcceptInvitation(ctx context.Context, invite Invitation, member Member) (Member, error)

	ListAPIKeys(ctx context.Context, teamID string) ([]APIKey, error)
	CreateAPIKey(ctx context.Context, key APIKey) (APIKey, error)
	DeleteAPIKey(ctx context.Context, teamID, keyID string) (int64, error)
}

// RoleReader is the slice of the role service the teams service needs to
// validate role references.
type RoleReader interface {
	GetRole(ctx context.Context, scope string, id int64) (roles.Role, error)
}

// Service handles team business logic.
type Service struct {
	repo   RepositoryPort
	roles  RoleReader
	audit  roles.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roleReader RoleReader, audit roles.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roleReader, audit: audit, logger: logger, now: time.Now}
}

// ListTeams returns one page of teams plus the total for the envelope.
func (s *Service) ListTeams(ctx context.Context, page, perPage int) ([]Team, int, error) {
	return s.repo.ListTeams(ctx, perPage, (page-1)*perPage)
}

// GetTeam fetches one team.
func (s *Service) GetTeam(ctx context.Context, id string) (Team, error) {
	return s.repo.GetTeam(ctx, id)
}

// CreateTeam inserts a team, deriving the slug from the name when absent.
func (s *Service) CreateTeam(ctx context.Context, name, slug string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, ErrNameRequired
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	team, err := s.repo.CreateTeam(ctx, Team{ID: uuid.NewString(), Name: name, Slug: slug})
	if err != nil {
		return Team{}, err
	}
	s.record(ctx, "team.created", team.ID, team.Name, nil)
	return team, nil
}

// UpdateTeam updates name and slug.
func (s *Service) UpdateTeam(ctx context.Context, id, name, slug string) (Team, error) {
	current, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return Team{}, err
	}
	if name = strings.TrimSpace(name); name != "" {
		current.Name = name
	}
	if slug = strings.TrimSpace(slug); slug != "" {
		current.Slug = Slugify(slug)
	}
	updated, err := s.repo.UpdateTeam(ctx, current)
	if err != nil {
		return Team{}, err
	}
	s.record(ctx, "team.updated", updated.ID, updated.Name, nil)
	return updated, nil
}

// DeleteTeam removes a team.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	rows, err := s.repo.DeleteTeam(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTeamNotFound
	}
	s.record(ctx, "team.deleted", id, "", nil)
	return nil
}

// ListMembers returns one page of team members.
func (s *Service) ListMembers(ctx context.Context, teamID string, page, perPage int) ([]Member, int, error) {
	return s.repo.ListMembers(ctx, teamID, perPage, (page-1)*perPage)
}

// GetMember fetches one team member.
func (s *Service) GetMember(ctx context.Context, teamID string, memberID int64) (Member, error) {
	return s.repo.GetMember(ctx, teamID, memberID)
}

// UpdateMemberRole reassigns a member to another role in the same team
// scope.
func (s *Service) UpdateMemberRole(ctx context.Context, teamID string, memberID, roleID int64) (Member, error) {
	if err := s.checkRole(ctx, teamID, roleID); err != nil {
		return Member{}, err
	}
	member, err := s.repo.UpdateMemberRole(ctx, teamID, memberID, roleID)
	if err != nil {
		return Member{}, err
	}
	s.record(ctx, "member.role_changed", teamID, member.Email, map[string]any{"roleId": roleID})
	return member, nil
}

// RemoveMember removes a member from the team.
func (s *Service) RemoveMember(ctx context.Context, teamID string, memberID int64) error {
	rows, err := s.repo.RemoveMember(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMemberNotFound
	}
	s.record(ctx, "member.removed", teamID, "", map[string]any{"memberId": memberID})
	return nil
}

// Invite creates a pending invitation with a fresh token. One pending
// invitation per email per team.
func (s *Service) Invite(ctx context.Context, teamID, email string, roleID int64) (Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Invitation{}, ErrEmailRequired
	}
	if err := s.checkRole(ctx, teamID, roleID); err != nil {
		return Invitation{}, err
	}
	pending, err := s.repo.HasPendingInvitation(ctx, teamID, email)
	if err != nil {
		return Invitation{}, err
	}
	if pending {
		return Invitation{}, ErrAlreadyInvited
	}
	invite, err := s.repo.CreateInvitation(ctx, Invitation{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Email:     email,
		RoleID:    roleID,
		Token:     uuid.NewString(),
		Status:    InviteStatusPending,
		ExpiresAt: s.now().Add(inviteTTL),
	})
	if err != nil {
		return Invitation{}, err
	}
	s.record(ctx, "invitation.sent", teamID, email, nil)
	return invite, nil
}

// ListInvitations returns one page of invitations for the team.
func (s *Service) ListInvitations(ctx context.Context, teamID string, page, perPage int) ([]Invitation, int, error) {
	return s.repo.ListInvitations(ctx, teamID, perPage, (page-1)*perPage)
}

// CancelInvitation marks a pending invitation cancelled.
func (s *Service) CancelInvitation(ctx context.Context, teamID, inviteID string) error {
	invite, err := s.repo.GetInvitation(ctx, teamID, inviteID)
	if err != nil {
		return err
	}
	if invite.Status != InviteStatusPending {
		return ErrInviteNotOpen
	}
	invite.Status = InviteStatusCancelled
	if _, err := s.repo.UpdateInvitation(ctx, invite); err != nil {
		return err
	}
	s.record(ctx, "invitation.cancelled", teamID, invite.Email, nil)
	return nil
}

// ResendInvitation rotates the token and extends the expiry of a pending
// invitation.
func (s *Service) ResendInvitation(ctx context.Context, teamID, inviteID string) (Invitation, error) {
	invite, err := s.repo.GetInvitation(ctx, teamID, inviteID)
	if err != nil {
		return Invitation{}, err
	}
	if invite.Status != InviteStatusPending {
		return Invitation{}, ErrInviteNotOpen
	}
	invite.Token = uuid.NewString()
	invite.ExpiresAt = s.now().Add(inviteTTL)
	updated, err := s.repo.UpdateInvitation(ctx, invite)
	if err != nil {
		return Invitation{}, err
	}
	s.record(ctx, "invitation.resent", teamID, invite.Email, nil)
	return updated, nil
}

// AcceptInvitation turns a pending, unexpired invitation into a membership.
func (s *Service) AcceptInvitation(ctx context.Context, token, userID string) (Member, error) {
	invite, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return Member{}, err
	}
	if invite.Status != InviteStatusPending {
		return Member{}, ErrInviteNotOpen
	}
	if invite.Expired(s.now()) {
		return Member{}, ErrInviteExpired
	}
	invite.Status = InviteStatusAccepted
	member, err := s.repo.AcceptInvitation(ctx, invite, Member{
		TeamID: invite.TeamID,
		UserID: userID,
		Email:  invite.Email,
		RoleID: invite.RoleID,
	})
	if err != nil {
		return Member{}, err
	}
	s.record(ctx, "invitation.accepted", invite.TeamID, invite.Email, nil)
	return member, nil
}

// ListAPIKeys returns the team's API keys, hashes excluded by the domain
// type.
func (s *Service) ListAPIKeys(ctx context.Context, teamID string) ([]APIKey, error) {
	return s.repo.ListAPIKeys(ctx, teamID)
}

// CreateAPIKey mints a key and returns it with the plaintext secret, shown
// exactly once.
func (s *Service) CreateAPIKey(ctx context.Context, teamID, name string, expiresAt *time.Time) (APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return APIKey{}, "", fmt.Errorf("%w: key name required", httpx.ErrValidation)
	}
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return APIKey{}, "", err
	}
	key, err := s.repo.CreateAPIKey(ctx, APIKey{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		Name:       name,
		Prefix:     secret[:8],
		SecretHash: string(hash),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return APIKey{}, "", err
	}
	s.record(ctx, "apikey.created", teamID, name, nil)
	return key, secret, nil
}

// DeleteAPIKey revokes a key.
func (s *Service) DeleteAPIKey(ctx context.Context, teamID, keyID string) error {
	rows, err := s.repo.DeleteAPIKey(ctx, teamID, keyID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrKeyNotFound
	}
	s.record(ctx, "apikey.deleted", teamID, keyID, nil)
	return nil
}

// checkRole verifies the role exists in the team scope or as a platform
// preset.
func (s *Service) checkRole(ctx context.Context, teamID string, roleID int64) error {
	if _, err := s.roles.GetRole(ctx, teamID, roleID); err == nil {
		return nil
	}
	if _, err := s.roles.GetRole(ctx, roles.ScopePlatform, roleID); err == nil {
		return nil
	}
	return ErrRoleUnavailable
}

func (s *Service) record(ctx context.Context, action, scope, subject string, payload any) {
	if s.audit != nil {
		s.audit.Record(ctx, action, scope, subject, payload)
	}
}

// Slugify lowercases and dashes a name into a URL slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
