// Package catalog supplies the immutable permission vocabulary: permission
// keys, their display labels, and their grouping into named categories.
package catalog

// Permission is an atomic capability key with its display label.
type Permission struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Group is a named, ordered bucket of permission keys. Groups partition the
// catalog: every key belongs to exactly one group.
type Group struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Permissions []string `json:"permissions"`
}
