package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGateway_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(schema.SampleRows())

	rows, err := g.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 15)

	_, err = g.Upsert(ctx, schema.Row{ID: "3", Name: "Eclair", Calories: 1})
	require.NoError(t, err)
	_, err = g.Upsert(ctx, schema.Row{ID: "99", Name: "Baklava"})
	require.NoError(t, err)

	rows = g.Snapshot()
	assert.Len(t, rows, 16)
	assert.Equal(t, "Eclair", rows[2].Name)
	assert.Equal(t, schema.ID("99"), rows[15].ID)

	require.NoError(t, g.DeleteOne(ctx, "99"))
	assert.ErrorIs(t, g.DeleteOne(ctx, "99"), ErrNotFound)
	assert.Len(t, g.Snapshot(), 15)
}

func TestMemoryGateway_FetchAllReturnsCopy(t *testing.T) {
	g := NewMemoryGateway(schema.SampleRows())

	rows, err := g.FetchAll(context.Background())
	require.NoError(t, err)
	rows[0].Name = "mutated"

	assert.Equal(t, "Cupcake", g.Snapshot()[0].Name)
}

func TestMemoryGateway_FailNext(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(schema.SampleRows())
	g.FailNext(OpFetchAll, ErrParse)

	_, err := g.FetchAll(ctx)
	assert.ErrorIs(t, err, ErrParse)

	_, err = g.FetchAll(ctx)
	assert.NoError(t, err, "only the next call fails")
	assert.Equal(t, 2, g.Calls(OpFetchAll))
}

func TestMemoryGateway_FailID(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(schema.SampleRows())
	g.FailID("5", ErrNetwork)

	assert.ErrorIs(t, g.DeleteOne(ctx, "5"), ErrNetwork)
	assert.ErrorIs(t, g.DeleteOne(ctx, "5"), ErrNetwork)
	assert.NoError(t, g.DeleteOne(ctx, "6"))

	g.FailID("5", nil)
	assert.NoError(t, g.DeleteOne(ctx, "5"))
}

func TestMemoryGateway_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewMemoryGateway(nil)

	_, err := g.FetchAll(ctx)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestMemoryGateway_UpsertRequiresID(t *testing.T) {
	g := NewMemoryGateway(nil)
	_, err := g.Upsert(context.Background(), schema.Row{Name: "anonymous"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemoryGateway_ConcurrentDeletes(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(schema.SampleRows())

	var wg sync.WaitGroup
	errs := make([]error, 15)
	for i, r := range schema.SampleRows() {
		wg.Add(1)
		go func(i int, id schema.ID) {
			defer wg.Done()
			errs[i] = g.DeleteOne(ctx, id)
		}(i, r.ID)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Empty(t, g.Snapshot())
}
