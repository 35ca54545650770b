package overlay

import "fmt"

// DismissalScope decides how long a dismissal is remembered.
type DismissalScope int

const (
	// ScopeNavigation forgets a dismissal as soon as the identity changes.
	ScopeNavigation DismissalScope = iota
	// ScopeIdentity remembers dismissals per identity for the lifetime of
	// the activation, so returning to a dismissed video keeps it hidden.
	ScopeIdentity
)

func (s DismissalScope) String() string {
	switch s {
	case ScopeNavigation:
		return "navigation"
	case ScopeIdentity:
		return "identity"
	}
	return fmt.Sprintf("DismissalScope(%d)", int(s))
}

// ParseDismissalScope maps a configuration value to a scope. The empty
// string selects ScopeNavigation.
func ParseDismissalScope(s string) (DismissalScope, error) {
	switch s {
	case "", "navigation":
		return ScopeNavigation, nil
	case "identity":
		return ScopeIdentity, nil
	}
	return ScopeNavigation, fmt.Errorf("overlay: unknown dismissal scope %q", s)
}

// VideoContext is the identity of the displayed video plus the dismissal
// flag scoped to it.
type VideoContext struct {
	Identity  string
	Dismissed bool
}

// State is the mutable state shared by the watcher and the controller.
// It is not safe for concurrent use: every caller runs on the host's single
// callback chain.
type State struct {
	scope     DismissalScope
	current   VideoContext
	seen      bool
	dismissed map[string]bool
}

// NewState returns an empty State. No identity has been observed yet.
func NewState(scope DismissalScope) *State {
	s := &State{scope: scope}
	if scope == ScopeIdentity {
		s.dismissed = make(map[string]bool)
	}
	return s
}

// Current returns the active VideoContext.
func (s *State) Current() VideoContext { return s.current }

// Advance records identity. It reports whether the identity changed, in
// which case the dismissal flag has been reset for the new context.
func (s *State) Advance(identity string) bool {
	if s.seen && s.current.Identity == identity {
		return false
	}
	s.seen = true
	s.current = VideoContext{Identity: identity, Dismissed: s.dismissed[identity]}
	return true
}

// Dismiss marks the current context as dismissed.
func (s *State) Dismiss() {
	s.current.Dismissed = true
	if s.dismissed != nil {
		s.dismissed[s.current.Identity] = true
	}
}
