// Package editor models one role authoring session: the draft identity
// fields, the permission selection, and the state machine around submitting
// them to the role service.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/roles"
	"github.com/lnk-io/lnk-console/internal/selection"
)

// Phase is the lifecycle state of an editing session.
type Phase int

const (
	// Closed means no edit is in progress.
	Closed Phase = iota
	// Creating means a new role is being authored from scratch.
	Creating
	// Editing means an existing role's copy is being modified.
	Editing
	// Submitting means a save is in flight with the role service.
	Submitting
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

var (
	// ErrNotReady means submit validation failed: the draft needs a name
	// and at least one permission. No service call is made.
	ErrNotReady = errors.New("editor: draft not ready to submit")
	// ErrSubmitInFlight means a previous submit has not resolved yet.
	ErrSubmitInFlight = errors.New("editor: submit already in flight")
	// ErrClosed means the session is not open for the requested operation.
	ErrClosed = errors.New("editor: session closed")
)

// RoleWriter is the injected collaborator the session submits through.
// roles.Service satisfies it.
type RoleWriter interface {
	CreateRole(ctx context.Context, scope string, in roles.RoleInput) (roles.Role, error)
	UpdateRole(ctx context.Context, scope string, id int64, in roles.RoleInput) (roles.Role, error)
}

// Draft holds the in-progress identity fields and selection for one role.
type Draft struct {
	Name        string
	Description string
	Color       string
	Selection   selection.Set
}

// Session is the role editing state machine. All mutators are synchronous;
// Submit is the only suspension point. A Session is owned by exactly one
// editing flow and never shared between concurrent edits.
type Session struct {
	writer  RoleWriter
	catalog *catalog.Catalog
	scope   string

	mu         sync.Mutex
	phase      Phase
	prior      Phase
	roleID     int64
	draft      Draft
	expanded   map[string]bool
	generation uint64
	inFlight   bool
}

// NewSession builds a closed session bound to one scope and collaborator.
func NewSession(writer RoleWriter, cat *catalog.Catalog, scope string) *Session {
	return &Session{writer: writer, catalog: cat, scope: scope, phase: Closed}
}

// BeginCreate opens the session for a new role: empty selection, defaulted
// identity fields, no groups expanded. Any submit still in flight from an
// earlier session is invalidated; its late result will be discarded.
func (s *Session) BeginCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.inFlight = false
	s.phase = Creating
	s.roleID = 0
	s.draft = Draft{Color: roles.DefaultColor, Selection: selection.NewSet()}
	s.expanded = make(map[string]bool)
}

// BeginEdit opens the session seeded from an existing role. The selection is
// a defensive copy: mutating it never touches role.Permissions. Groups with
// at least one selected member start expanded.
func (s *Session) BeginEdit(role roles.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.inFlight = false
	s.phase = Editing
	s.roleID = role.ID
	s.draft = Draft{
		Name:        role.Name,
		Description: role.Description,
		Color:       role.Color,
		Selection:   selection.FromKeys(role.Permissions),
	}
	s.expanded = make(map[string]bool)
	for _, g := range s.catalog.GroupsInOrder() {
		if selection.GroupState(g.Permissions, s.draft.Selection) != selection.Unchecked {
			s.expanded[g.Key] = true
		}
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Draft returns a snapshot of the draft, with an independent selection copy.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	d.Selection = s.draft.Selection.Clone()
	return d
}

// SetName updates the draft name.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open() {
		s.draft.Name = name
	}
}

// SetDescription updates the draft description.
func (s *Session) SetDescription(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open() {
		s.draft.Description = desc
	}
}

// SetColor updates the draft color; off-palette values fall back to default.
func (s *Session) SetColor(color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open() {
		return
	}
	if roles.ValidColor(color) {
		s.draft.Color = color
	} else {
		s.draft.Color = roles.DefaultColor
	}
}

// ToggleGroup bulk-toggles every permission of the named catalog group.
// The selection stays mutable while a submit is in flight.
func (s *Session) ToggleGroup(groupKey string, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open() {
		return
	}
	group, ok := s.catalog.Group(groupKey)
	if !ok {
		return
	}
	s.draft.Selection = selection.ToggleGroup(group.Permissions, s.draft.Selection, checked)
}

// TogglePermission flips one permission key in the draft selection.
func (s *Session) TogglePermission(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open() {
		return
	}
	s.draft.Selection = selection.TogglePermission(key, s.draft.Selection)
}

// GroupState returns the tri-state indicator for the named catalog group.
func (s *Session) GroupState(groupKey string) selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.catalog.Group(groupKey)
	if !ok {
		return selection.Unchecked
	}
	return selection.GroupState(group.Permissions, s.draft.Selection)
}

// IsExpanded reports whether the named group started expanded.
func (s *Session) IsExpanded(groupKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[groupKey]
}

// CanSubmit reports whether the draft passes the submit-blocking checks:
// non-empty name and non-empty selection.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

// Submit dispatches the draft to the role service. At most one submit may be
// in flight; on failure the session returns to its prior phase with the
// draft preserved so nothing is re-entered. A result arriving after Close is
// discarded.
func (s *Session) Submit(ctx context.Context) (roles.Role, error) {
	s.mu.Lock()
	if s.phase == Closed {
		s.mu.Unlock()
		return roles.Role{}, ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return roles.Role{}, ErrSubmitInFlight
	}
	if !s.canSubmitLocked() {
		s.mu.Unlock()
		return roles.Role{}, ErrNotReady
	}

	s.prior = s.phase
	s.phase = Submitting
	s.inFlight = true
	generation := s.generation
	editing := s.prior == Editing
	roleID := s.roleID
	input := roles.RoleInput{
		Name:        s.draft.Name,
		Description: s.draft.Description,
		Color:       s.draft.Color,
		Permissions: s.draft.Selection.Keys(),
	}
	s.mu.Unlock()

	var saved roles.Role
	var err error
	if editing {
		saved, err = s.writer.UpdateRole(ctx, s.scope, roleID, input)
	} else {
		saved, err = s.writer.CreateRole(ctx, s.scope, input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		// Session was closed while the request was in flight; the result
		// must not reopen it or touch the draft.
		return roles.Role{}, ErrClosed
	}
	s.inFlight = false
	if err != nil {
		s.phase = s.prior
		return roles.Role{}, err
	}
	s.phase = Closed
	s.draft = Draft{}
	s.expanded = nil
	return saved, nil
}

// Close abandons the session. The draft is discarded and any in-flight
// submit result will be ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Closed
	s.inFlight = false
	s.generation++
	s.draft = Draft{}
	s.expanded = nil
}

func (s *Session) open() bool {
	return s.phase == Creating || s.phase == Editing || s.phase == Submitting
}

func (s *Session) canSubmitLocked() bool {
	if s.phase != Creating && s.phase != Editing {
		return false
	}
	return len(s.draft.Name) > 0 && s.draft.Selection.Len() > 0
}
