package table

import (
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomRows builds n rows with small value ranges so ties are common.
func randomRows(rng *rand.Rand, n int) []schema.Row {
	names := []string{"Tart", "Donut", "Eclair", "Muffin", "Strudel"}
	rows := make([]schema.Row, n)
	for i := range rows {
		rows[i] = schema.Row{
			ID:       schema.ID(strconv.Itoa(i + 1)),
			Name:     names[rng.Intn(len(names))],
			Calories: float64(rng.Intn(5) * 100),
			Fat:      float64(rng.Intn(20)) / 2,
			Carbs:    float64(rng.Intn(60)),
			Protein:  float64(rng.Intn(10)) / 10,
		}
	}
	return rows
}

func allKeys() []SortKey {
	var keys []SortKey
	for _, c := range schema.Columns() {
		keys = append(keys, SortKey{c.Key, Asc}, SortKey{c.Key, Desc})
	}
	return keys
}

func TestOrder_DoesNotModifyInput(t *testing.T) {
	rows := schema.SampleRows()
	before := slices.Clone(rows)

	_ = Order(rows, SortKey{schema.ColumnName, Desc})

	assert.Equal(t, before, rows)
}

func TestOrder_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		rows := randomRows(rng, rng.Intn(30))
		for _, k := range allKeys() {
			once := Order(rows, k)
			assert.Equal(t, once, Order(once, k), "key %v", k)
		}
	}
}

func TestOrder_ReverseWithoutTies(t *testing.T) {
	rows := schema.SampleRows() // calories and names are all distinct
	for _, col := range []schema.ColumnKey{schema.ColumnCalories, schema.ColumnName} {
		asc := Order(rows, SortKey{col, Asc})
		desc := Order(rows, SortKey{col, Desc})
		slices.Reverse(desc)
		assert.Equal(t, asc, desc, "column %s", col)
	}
}

func TestOrder_TiesKeepInsertionOrder(t *testing.T) {
	rows := []schema.Row{
		{ID: "a", Name: "Tart", Fat: 1},
		{ID: "b", Name: "Tart", Fat: 2},
		{ID: "c", Name: "Donut", Fat: 1},
		{ID: "d", Name: "Tart", Fat: 1},
	}

	tests := []struct {
		key  SortKey
		want []schema.ID
	}{
		{SortKey{schema.ColumnFat, Asc}, []schema.ID{"a", "c", "d", "b"}},
		{SortKey{schema.ColumnFat, Desc}, []schema.ID{"b", "a", "c", "d"}},
		{SortKey{schema.ColumnName, Asc}, []schema.ID{"c", "a", "b", "d"}},
		{SortKey{schema.ColumnName, Desc}, []schema.ID{"a", "b", "d", "c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key.Column)+"_"+string(tt.key.Direction), func(t *testing.T) {
			assert.Equal(t, tt.want, schema.IDs(Order(rows, tt.key)))
		})
	}
}

func TestOrder_NumericNotLexical(t *testing.T) {
	rows := []schema.Row{
		{ID: "1", Calories: 90},
		{ID: "2", Calories: 1000},
		{ID: "3", Calories: 200},
	}
	assert.Equal(t, []schema.ID{"1", "3", "2"}, schema.IDs(Order(rows, DefaultSortKey)))
}

func TestOrder_UnknownColumnPanics(t *testing.T) {
	assert.Panics(t, func() {
		Order(schema.SampleRows(), SortKey{Column: "sugar", Direction: Asc})
	})
}

func TestSortKey_Next(t *testing.T) {
	k := DefaultSortKey

	k = k.Next(schema.ColumnCalories)
	assert.Equal(t, SortKey{schema.ColumnCalories, Desc}, k)

	k = k.Next(schema.ColumnCalories)
	assert.Equal(t, SortKey{schema.ColumnCalories, Asc}, k)

	k = k.Next(schema.ColumnFat)
	assert.Equal(t, SortKey{schema.ColumnFat, Asc}, k)

	k = SortKey{schema.ColumnFat, Desc}.Next(schema.ColumnName)
	assert.Equal(t, SortKey{schema.ColumnName, Asc}, k)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" DESC ")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)
	assert.Equal(t, Asc, d.Flip())

	_, err = ParseDirection("up")
	assert.Error(t, err)
}
