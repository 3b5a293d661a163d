package autosave

// Section is a value that can take a partial patch optimistically and be
// reconciled with the server's echo of itself. Clone must return a deep copy.
type Section[S, P any] interface {
	Apply(patch P) S
	Reconcile(server S) S
	Clone() S
}

// Store holds the latest optimistic-or-authoritative value of one section.
// Values are cloned on the way in and out, so nothing a caller holds aliases
// the stored one. It is not safe for concurrent use; Orchestrator serializes
// access.
type Store[S Section[S, P], P any] struct {
	value   S
	present bool
	empty   func() S
}

// NewStore returns an empty store. empty builds the default a first edit is
// applied to when nothing has been loaded yet.
func NewStore[S Section[S, P], P any](empty func() S) *Store[S, P] {
	return &Store[S, P]{empty: empty}
}

// Current returns the value and whether the section exists yet.
func (s *Store[S, P]) Current() (S, bool) {
	if !s.present {
		return s.value, false
	}
	return s.value.Clone(), true
}

// ApplyOptimistic merges patch onto the current value (or the empty default)
// and returns the result without waiting for the server.
func (s *Store[S, P]) ApplyOptimistic(patch P) S {
	s.value = s.base().Apply(patch).Clone()
	s.present = true
	return s.value.Clone()
}

// ApplyAuthoritative reconciles a server response over the current value.
func (s *Store[S, P]) ApplyAuthoritative(server S) S {
	s.value = s.base().Reconcile(server).Clone()
	s.present = true
	return s.value.Clone()
}

// Hydrate replaces the value wholesale. A nil value marks the section absent.
func (s *Store[S, P]) Hydrate(value *S) {
	if value == nil {
		var zero S
		s.value, s.present = zero, false
		return
	}
	s.value, s.present = (*value).Clone(), true
}

// base returns a copy of the value an edit starts from.
func (s *Store[S, P]) base() S {
	if s.present {
		return s.value.Clone()
	}
	return s.empty()
}
