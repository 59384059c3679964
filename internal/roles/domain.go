// Package roles implements role management for the console: scoped CRUD,
// duplication, and the read-only comparison matrix over preset roles.
package roles

import "time"

// ScopePlatform is the owning scope of platform preset and admin roles.
// Every other scope value is a team ID.
const ScopePlatform = "platform"

// Palette is the fixed set of role swatch colors.
var Palette = []string{
	"#6366f1", "#8b5cf6", "#ec4899", "#ef4444",
	"#f59e0b", "#10b981", "#06b6d4", "#64748b",
}

// DefaultColor is used when a role is created without a palette color.
const DefaultColor = "#6366f1"

// Role is a named bundle of permission keys owned by a team or the platform.
type Role struct {
	ID          int64     `json:"id"`
	Scope       string    `json:"scope"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Permissions []string  `json:"permissions"`
	IsDefault   bool      `json:"isDefault"`
	IsSystem    bool      `json:"isSystem"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CanBeDeleted reports whether deletion may be offered for this role.
// System roles are never deletable.
func (r Role) CanBeDeleted() bool {
	return !r.IsSystem
}

// HasPermission reports membership of key in the role's permission set.
func (r Role) HasPermission(key string) bool {
	for _, p := range r.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// ValidColor reports whether color is in the palette.
func ValidColor(color string) bool {
	for _, c := range Palette {
		if c == color {
			return true
		}
	}
	return false
}
