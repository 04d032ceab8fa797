package table

import "github.com/JonMunkholm/nutrition/internal/schema"

// RowStore is an insertion-ordered mapping from ID to Row.
// It is not safe for concurrent use; Table serialises access.
type RowStore struct {
	order []schema.ID
	rows  map[schema.ID]schema.Row
}

// NewRowStore returns an empty store.
func NewRowStore() *RowStore {
	return &RowStore{rows: make(map[schema.ID]schema.Row)}
}

// Len returns the number of rows.
func (s *RowStore) Len() int {
	return len(s.order)
}

// Get returns the row with id.
func (s *RowStore) Get(id schema.ID) (schema.Row, bool) {
	r, ok := s.rows[id]
	return r, ok
}

// Has reports whether id is present.
func (s *RowStore) Has(id schema.ID) bool {
	_, ok := s.rows[id]
	return ok
}

// Rows returns a copy of all rows in insertion order.
func (s *RowStore) Rows() []schema.Row {
	out := make([]schema.Row, len(s.order))
	for i, id := range s.order {
		out[i] = s.rows[id]
	}
	return out
}

// IDs returns a copy of all identifiers in insertion order.
func (s *RowStore) IDs() []schema.ID {
	out := make([]schema.ID, len(s.order))
	copy(out, s.order)
	return out
}

// ReplaceAll swaps the whole content for rows.
// A later duplicate ID overwrites the earlier one in place so the store
// never holds two rows with the same identifier.
func (s *RowStore) ReplaceAll(rows []schema.Row) {
	order := make([]schema.ID, 0, len(rows))
	byID := make(map[schema.ID]schema.Row, len(rows))
	for _, r := range rows {
		if _, dup := byID[r.ID]; !dup {
			order = append(order, r.ID)
		}
		byID[r.ID] = r
	}
	s.order = order
	s.rows = byID
}

// Upsert replaces the row with the same ID in place, or appends it.
// Returns true if a new row was inserted.
func (s *RowStore) Upsert(r schema.Row) bool {
	_, exists := s.rows[r.ID]
	s.rows[r.ID] = r
	if exists {
		return false
	}
	s.order = append(s.order, r.ID)
	return true
}

// RemoveByIDs deletes every listed row and returns the set actually removed.
// Unknown IDs are ignored.
func (s *RowStore) RemoveByIDs(ids []schema.ID) map[schema.ID]struct{} {
	removed := make(map[schema.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.rows[id]; ok {
			delete(s.rows, id)
			removed[id] = struct{}{}
		}
	}
	if len(removed) == 0 {
		return removed
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, gone := removed[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return removed
}
