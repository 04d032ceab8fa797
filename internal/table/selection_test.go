package table

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestSelection_ToggleSelectAllClear(t *testing.T) {
	s := NewSelection()

	assert.True(t, s.Toggle("1"))
	assert.True(t, s.Toggle("2"))
	assert.False(t, s.Toggle("1"))
	assert.Equal(t, []schema.ID{"2"}, s.IDs())

	s.SelectAll([]schema.ID{"3", "4", "5"})
	assert.Equal(t, []schema.ID{"3", "4", "5"}, s.IDs(), "select-all replaces the set")

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestSelection_ReconcileLeavesNoRemovedIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		s := NewSelection()
		removed := map[schema.ID]struct{}{}
		for i := 0; i < 20; i++ {
			id := schema.ID(strconv.Itoa(i))
			if rng.Intn(2) == 0 {
				s.Toggle(id)
			}
			if rng.Intn(3) == 0 {
				removed[id] = struct{}{}
			}
		}
		before := s.Len()

		s.Reconcile(removed)

		for id := range removed {
			assert.False(t, s.Has(id))
		}
		assert.LessOrEqual(t, s.Len(), before)
	}
}

func TestSelection_Retain(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]schema.ID{"1", "2", "3"})
	s.Retain(func(id schema.ID) bool { return id != "2" })
	assert.Equal(t, []schema.ID{"1", "3"}, s.IDs())
}
