package table

import (
	"slices"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Selection tracks which row identifiers are marked for bulk action.
type Selection struct {
	ids map[schema.ID]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[schema.ID]struct{})}
}

// SelectAll replaces the selection with exactly ids.
func (s *Selection) SelectAll(ids []schema.ID) {
	s.ids = make(map[schema.ID]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[schema.ID]struct{})
}

// Toggle adds id if absent and removes it if present.
// Returns true if id is selected afterwards.
func (s *Selection) Toggle(id schema.ID) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Reconcile subtracts removed from the selection.
func (s *Selection) Reconcile(removed map[schema.ID]struct{}) {
	for id := range removed {
		delete(s.ids, id)
	}
}

// Retain keeps only identifiers for which keep returns true.
func (s *Selection) Retain(keep func(schema.ID) bool) {
	for id := range s.ids {
		if !keep(id) {
			delete(s.ids, id)
		}
	}
}

// Has reports whether id is selected.
func (s *Selection) Has(id schema.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected identifiers sorted for deterministic iteration.
func (s *Selection) IDs() []schema.ID {
	out := make([]schema.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
