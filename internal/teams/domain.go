// Package teams implements team management for the console: teams, members
// and their role assignments, invitations, and team API keys.
package teams

import "time"

// Invitation lifecycle statuses.
const (
	InviteStatusPending   = "pending"
	InviteStatusAccepted  = "accepted"
	InviteStatusCancelled = "cancelled"
)

// Team is a tenant owning links, roles, and members.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Member ties a user to a team under one role.
type Member struct {
	ID       int64     `json:"id"`
	TeamID   string    `json:"teamId"`
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	RoleID   int64     `json:"roleId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Invitation is a pending offer to join a team under a role.
type Invitation struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"roleId"`
	Token     string    `json:"-"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the invitation can no longer be accepted.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// APIKey is a team-scoped API credential. Only the bcrypt hash of the secret
// is stored; the plaintext is shown once at creation.
type APIKey struct {
	ID         string     `json:"id"`
	TeamID     string     `json:"teamId"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	SecretHash string     `json:"-"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
