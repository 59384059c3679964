package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Catalog holds the ordered permission groups and a label index. It is
// read-only after construction and safe to share across sessions.
type Catalog struct {
	groups []Group
	labels map[string]string
}

var titleCaser = cases.Title(language.English)

// New builds a Catalog from ordered groups and a key-to-label table. The
// group order given here is the order GroupsInOrder returns forever after.
func New(groups []Group, labels map[string]string) *Catalog {
	copied := make([]Group, len(groups))
	for i, g := range groups {
		perms := make([]string, len(g.Permissions))
		copy(perms, g.Permissions)
		copied[i] = Group{Key: g.Key, DisplayName: g.DisplayName, Permissions: perms}
	}
	idx := make(map[string]string, len(labels))
	for k, v := range labels {
		idx[k] = v
	}
	return &Catalog{groups: copied, labels: idx}
}

// GroupsInOrder returns the groups in their configured insertion order.
func (c *Catalog) GroupsInOrder() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// Group returns the group with the given key.
func (c *Catalog) Group(key string) (Group, bool) {
	for _, g := range c.groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// AllKeys returns every permission key in the catalog, in group order.
func (c *Catalog) AllKeys() []string {
	var keys []string
	for _, g := range c.groups {
		keys = append(keys, g.Permissions...)
	}
	return keys
}

// Contains reports whether key is defined by any group in the catalog.
func (c *Catalog) Contains(key string) bool {
	for _, g := range c.groups {
		for _, k := range g.Permissions {
			if k == key {
				return true
			}
		}
	}
	return false
}

// LabelFor returns the configured label for key. Unlabeled keys get a
// humanized fallback derived from the key itself; a key that cannot be
// humanized is returned unchanged. Never empty.
func (c *Catalog) LabelFor(key string) string {
	if label, ok := c.labels[key]; ok && label != "" {
		return label
	}
	return humanize(key)
}

// humanize turns "links:create" into "Create links". Keys that do not follow
// the resource:action convention are returned as-is.
func humanize(key string) string {
	resource, action, ok := strings.Cut(key, ":")
	if !ok || resource == "" || action == "" {
		return key
	}
	action = strings.ReplaceAll(action, "_", " ")
	resource = strings.ReplaceAll(resource, "_", " ")
	return titleCaser.String(action) + " " + resource
}
