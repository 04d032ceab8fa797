package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// MemoryGateway keeps rows in process. Failures can be injected per
// operation and per id.
type MemoryGateway struct {
	mu    sync.Mutex
	order []schema.ID
	rows  map[schema.ID]schema.Row

	failNext map[Op]error
	failIDs  map[schema.ID]error
	calls    map[Op]int
}

// NewMemoryGateway returns a gateway holding a copy of seed.
func NewMemoryGateway(seed []schema.Row) *MemoryGateway {
	g := &MemoryGateway{
		rows:     make(map[schema.ID]schema.Row, len(seed)),
		failNext: make(map[Op]error),
		failIDs:  make(map[schema.ID]error),
		calls:    make(map[Op]int),
	}
	for _, r := range seed {
		if _, ok := g.rows[r.ID]; !ok {
			g.order = append(g.order, r.ID)
		}
		g.rows[r.ID] = r
	}
	return g
}

// FailNext makes the next call of op fail with kind.
func (g *MemoryGateway) FailNext(op Op, kind error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext[op] = kind
}

// FailID makes every upsert or delete of id fail with kind until cleared
// with a nil kind.
func (g *MemoryGateway) FailID(id schema.ID, kind error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if kind == nil {
		delete(g.failIDs, id)
		return
	}
	g.failIDs[id] = kind
}

// Calls reports how many times op was invoked.
func (g *MemoryGateway) Calls(op Op) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// Snapshot returns the stored rows in insertion order.
func (g *MemoryGateway) Snapshot() []schema.Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *MemoryGateway) FetchAll(ctx context.Context) ([]schema.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.beginLocked(ctx, OpFetchAll, ""); err != nil {
		return nil, err
	}
	return g.snapshotLocked(), nil
}

func (g *MemoryGateway) Upsert(ctx context.Context, row schema.Row) (schema.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.beginLocked(ctx, OpUpsert, row.ID); err != nil {
		return schema.Row{}, err
	}
	if row.ID == "" {
		return schema.Row{}, newError(OpUpsert, row.ID, ErrValidation, fmt.Errorf("id is required"))
	}
	if _, ok := g.rows[row.ID]; !ok {
		g.order = append(g.order, row.ID)
	}
	g.rows[row.ID] = row
	return row, nil
}

func (g *MemoryGateway) DeleteOne(ctx context.Context, id schema.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.beginLocked(ctx, OpDelete, id); err != nil {
		return err
	}
	if _, ok := g.rows[id]; !ok {
		return newError(OpDelete, id, ErrNotFound, nil)
	}
	delete(g.rows, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// beginLocked counts the call and applies injected failures.
func (g *MemoryGateway) beginLocked(ctx context.Context, op Op, id schema.ID) error {
	g.calls[op]++
	if err := ctx.Err(); err != nil {
		return newError(op, id, ErrNetwork, err)
	}
	if kind, ok := g.failNext[op]; ok {
		delete(g.failNext, op)
		return newError(op, id, kind, fmt.Errorf("injected failure"))
	}
	if id != "" {
		if kind, ok := g.failIDs[id]; ok {
			return newError(op, id, kind, fmt.Errorf("injected failure"))
		}
	}
	return nil
}

func (g *MemoryGateway) snapshotLocked() []schema.Row {
	out := make([]schema.Row, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.rows[id])
	}
	return out
}
