package shared

import (
	"log/slog"
	"net/http"
	"strings"
)

// Console permissions guarding the role-management surface.
const (
	PermTeamView        = "team:view"
	PermTeamInvite      = "team:invite"
	PermManageMembers   = "team:manage_members"
	PermManageRoles     = "team:manage_roles"
	PermIntegrationView = "integrations:view"
)

// Authorizer wires permission checks for HTTP handlers. Checks run against
// the permission keys carried by the resolved session.
type Authorizer struct {
	Logger *slog.Logger
}

// RequireAny ensures the current session holds at least one of the required
// permissions. Platform sessions pass every check.
func (a Authorizer) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if sess.IsPlatform || hasAnyPermission(sess.Permissions, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			a.deny(r)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current session holds all required permissions.
func (a Authorizer) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if sess.IsPlatform || hasAllPermissions(sess.Permissions, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			a.deny(r)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequirePlatform restricts a route to platform (admin console) sessions.
func (a Authorizer) RequirePlatform() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !sess.IsPlatform {
				a.deny(r)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a Authorizer) deny(r *http.Request) {
	if a.Logger != nil {
		a.Logger.Warn("authorization denied", slog.String("path", r.URL.Path))
	}
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
