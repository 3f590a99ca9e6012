// Package participants tracks which participants have ever appeared in a
// match, in first-seen order. The order drives pivot column order.
package participants

import "github.com/okian/scorebook/internal/domain/model"

// Seen is an insertion-ordered set of participant ids. The zero value is
// ready to use. Seen is not safe for concurrent use; the owning ledger
// serializes access.
type Seen struct {
	order []string
	index map[string]struct{}
}

// New returns a Seen pre-populated with starters.
func New(starters ...string) *Seen {
	s := &Seen{}
	for _, id := range starters {
		s.Add(id)
	}
	return s
}

// Add records id if it has not been seen. Empty ids and the opponent
// sentinel are ignored. It reports whether id was newly added.
func (s *Seen) Add(id string) bool {
	if id == "" || id == model.Opponent {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id has been seen.
func (s *Seen) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// List returns the ids in first-seen order.
func (s *Seen) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of seen ids.
func (s *Seen) Len() int { return len(s.order) }

// Reset forgets everything and seeds the set with starters.
func (s *Seen) Reset(starters ...string) {
	s.order = nil
	s.index = nil
	for _, id := range starters {
		s.Add(id)
	}
}
