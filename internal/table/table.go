// Package table is the client-side tabular data engine: row store, sort
// key, selection and page state behind one lock, with a pure derivation of
// the rendered view.
//
// Every exported Table method is one mutation batch. The batch is applied
// under the lock, then subscribers receive the resulting View. No caller can
// observe a half-applied batch, and no row leaves the store without the
// selection being reconciled in the same batch.
package table

import (
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// ErrUnknownRow is returned when an intent targets a row not in the store.
var ErrUnknownRow = errors.New("row not found")

// Options configures a new Table.
type Options struct {
	SortKey   SortKey // Zero value uses DefaultSortKey
	PageSize  int     // Zero value uses the first allowed size
	PageSizes []int   // Nil uses DefaultPageSizes
}

// Table owns the engine state for one presentation session.
type Table struct {
	mu        sync.Mutex
	store     *RowStore
	selection *Selection
	pager     *Pager
	sortKey   SortKey

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(View)
}

// New creates an empty table.
func New(opts Options) (*Table, error) {
	key := opts.SortKey
	if key == (SortKey{}) {
		key = DefaultSortKey
	}
	if _, ok := schema.LookupColumn(key.Column); !ok {
		return nil, fmt.Errorf("column not found: %q", key.Column)
	}
	if key.Direction != Asc && key.Direction != Desc {
		return nil, fmt.Errorf("invalid sort direction: %q", key.Direction)
	}

	sizes := opts.PageSizes
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	size := opts.PageSize
	if size == 0 {
		size = sizes[0]
	}
	pager, err := NewPager(size, sizes)
	if err != nil {
		return nil, err
	}

	return &Table{
		store:     NewRowStore(),
		selection: NewSelection(),
		pager:     pager,
		sortKey:   key,
		subs:      make(map[int]func(View)),
	}, nil
}

// Subscribe registers fn to receive the View after every mutation batch.
// The returned function removes the subscription.
func (t *Table) Subscribe(fn func(View)) (cancel func()) {
	t.subMu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.subMu.Unlock()

	return func() {
		t.subMu.Lock()
		delete(t.subs, id)
		t.subMu.Unlock()
	}
}

// mutate runs fn under the state lock and publishes the resulting view.
func (t *Table) mutate(fn func() error) error {
	t.mu.Lock()
	err := fn()
	view := t.viewLocked()
	t.mu.Unlock()

	if err != nil {
		return err
	}
	t.publish(view)
	return nil
}

func (t *Table) publish(v View) {
	t.subMu.Lock()
	subs := make([]func(View), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.subMu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// ReplaceAll swaps the row set for rows, as after a successful fetch-all.
// Selected ids that are no longer present are dropped and the page is clamped.
func (t *Table) ReplaceAll(rows []schema.Row) {
	t.mutate(func() error {
		t.store.ReplaceAll(rows)
		t.selection.Retain(t.store.Has)
		t.pager.Clamp(t.store.Len())
		return nil
	})
}

// Upsert inserts or replaces one row. Returns true if the row was new.
func (t *Table) Upsert(r schema.Row) bool {
	var inserted bool
	t.mutate(func() error {
		inserted = t.store.Upsert(r)
		return nil
	})
	return inserted
}

// Remove deletes ids from the store, reconciles the selection, and clamps
// the page, all in one batch. Returns the number of rows removed.
func (t *Table) Remove(ids []schema.ID) int {
	var n int
	t.mutate(func() error {
		removed := t.store.RemoveByIDs(ids)
		t.selection.Reconcile(removed)
		t.pager.Clamp(t.store.Len())
		n = len(removed)
		return nil
	})
	return n
}

// RequestSort applies a header click on column.
func (t *Table) RequestSort(column schema.ColumnKey) error {
	if _, ok := schema.LookupColumn(column); !ok {
		return fmt.Errorf("column not found: %q", column)
	}
	return t.mutate(func() error {
		t.sortKey = t.sortKey.Next(column)
		return nil
	})
}

// SetSort replaces the active sort key.
func (t *Table) SetSort(key SortKey) error {
	if _, ok := schema.LookupColumn(key.Column); !ok {
		return fmt.Errorf("column not found: %q", key.Column)
	}
	if key.Direction != Asc && key.Direction != Desc {
		return fmt.Errorf("invalid sort direction: %q", key.Direction)
	}
	return t.mutate(func() error {
		t.sortKey = key
		return nil
	})
}

// Toggle flips the selection of one row.
func (t *Table) Toggle(id schema.ID) error {
	return t.mutate(func() error {
		if !t.store.Has(id) {
			return fmt.Errorf("toggle %s: %w", id, ErrUnknownRow)
		}
		t.selection.Toggle(id)
		return nil
	})
}

// SelectAll selects every row in the store when checked, otherwise clears.
func (t *Table) SelectAll(checked bool) {
	t.mutate(func() error {
		if checked {
			t.selection.SelectAll(t.store.IDs())
		} else {
			t.selection.Clear()
		}
		return nil
	})
}

// ClearSelection empties the selection.
func (t *Table) ClearSelection() {
	t.SelectAll(false)
}

// NextPage moves forward one page if possible.
func (t *Table) NextPage() {
	t.mutate(func() error {
		t.pager.Next(t.store.Len())
		return nil
	})
}

// PrevPage moves back one page if possible.
func (t *Table) PrevPage() {
	t.mutate(func() error {
		t.pager.Prev()
		return nil
	})
}

// SetPageSize changes the page size and returns to the first page.
func (t *Table) SetPageSize(size int) error {
	return t.mutate(func() error {
		return t.pager.SetSize(size)
	})
}

// SelectedIDs returns a snapshot of the selection.
func (t *Table) SelectedIDs() []schema.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.IDs()
}

// Row returns the stored row with id.
func (t *Table) Row(id schema.ID) (schema.Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Get(id)
}

// Rows returns all rows in store order.
func (t *Table) Rows() []schema.Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Rows()
}

// SortKey returns the active sort key.
func (t *Table) SortKey() SortKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortKey
}

// PageState returns the current page state.
func (t *Table) PageState() PageState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.State()
}

// View derives the rendered view of the current state.
func (t *Table) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Table) viewLocked() View {
	return Derive(t.store.Rows(), t.sortKey, t.pager.State(), t.pager.Sizes(), t.selection)
}
