package roles

import "github.com/lnk-io/lnk-console/internal/catalog"

// Matrix is the read-only permission x role comparison view built from
// already-loaded roles. It never consults selection state.
type Matrix struct {
	names  []string
	byName map[string]Role
}

// NewMatrix builds a Matrix over the given roles, preserving their order for
// column layout. Later duplicates of a name are ignored.
func NewMatrix(list []Role) *Matrix {
	m := &Matrix{byName: make(map[string]Role, len(list))}
	for _, role := range list {
		if _, ok := m.byName[role.Name]; ok {
			continue
		}
		m.names = append(m.names, role.Name)
		m.byName[role.Name] = role
	}
	return m
}

// RoleNames returns the column order of the matrix.
func (m *Matrix) RoleNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// HasPermission reports whether the named role holds the permission key.
// An unknown role name renders as "no" rather than erroring: the matrix must
// not crash on a role that has not loaded.
func (m *Matrix) HasPermission(roleName, key string) bool {
	role, ok := m.byName[roleName]
	if !ok {
		return false
	}
	return role.HasPermission(key)
}

// ComparisonRow is one permission line of the rendered matrix.
type ComparisonRow struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Roles map[string]bool `json:"roles"`
}

// ComparisonGroup groups matrix rows by catalog group for display.
type ComparisonGroup struct {
	Key         string          `json:"key"`
	DisplayName string          `json:"displayName"`
	Rows        []ComparisonRow `json:"rows"`
}

// Comparison renders the full matrix in catalog group order.
func (m *Matrix) Comparison(cat *catalog.Catalog) []ComparisonGroup {
	groups := cat.GroupsInOrder()
	out := make([]ComparisonGroup, 0, len(groups))
	for _, g := range groups {
		cg := ComparisonGroup{Key: g.Key, DisplayName: g.DisplayName}
		for _, key := range g.Permissions {
			row := ComparisonRow{Key: key, Label: cat.LabelFor(key), Roles: make(map[string]bool, len(m.names))}
			for _, name := range m.names {
				row.Roles[name] = m.HasPermission(name, key)
			}
			cg.Rows = append(cg.Rows, row)
		}
		out = append(out, cg)
	}
	return out
}
