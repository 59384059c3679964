package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound indicates an unknown or expired bearer token.
	ErrSessionNotFound = errors.New("session not found")
)
