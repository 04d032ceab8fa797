package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Direction is the sort direction of the active column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction: %q", s)
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortKey is the single active (column, direction) pair.
type SortKey struct {
	Column    schema.ColumnKey `json:"column"`
	Direction Direction        `json:"direction"`
}

// DefaultSortKey orders by calories, lowest first.
var DefaultSortKey = SortKey{Column: schema.ColumnCalories, Direction: Asc}

// Next applies a header click: clicking the active ascending column turns it
// descending; any other click selects that column ascending.
func (k SortKey) Next(column schema.ColumnKey) SortKey {
	if k.Column == column && k.Direction == Asc {
		return SortKey{Column: column, Direction: Desc}
	}
	return SortKey{Column: column, Direction: Asc}
}

// Order returns rows sorted by key in a new slice; rows is not modified.
// Equal values keep their input order. An unknown column panics.
func Order(rows []schema.Row, key SortKey) []schema.Row {
	col := schema.MustColumn(key.Column)
	sign := 1
	if key.Direction == Desc {
		sign = -1
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b schema.Row) int {
		return sign * col.Compare(a, b)
	})
	return out
}
