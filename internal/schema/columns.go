package schema

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the comparison kind of a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// String returns the lowercase type name.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	default:
		return "value"
	}
}

// ColumnKey names a sortable attribute of Row.
type ColumnKey string

const (
	ColumnName     ColumnKey = "name"
	ColumnCalories ColumnKey = "calories"
	ColumnFat      ColumnKey = "fat"
	ColumnCarbs    ColumnKey = "carbs"
	ColumnProtein  ColumnKey = "protein"
)

// Column describes one rendered attribute.
type Column struct {
	Key   ColumnKey
	Label string // Header text
	Type  FieldType

	text    func(Row) string
	numeric func(Row) float64
}

// columns is the header order of the table.
var columns = []Column{
	{Key: ColumnName, Label: "Dessert", Type: FieldText, text: func(r Row) string { return r.Name }},
	{Key: ColumnCalories, Label: "Calories", Type: FieldNumeric, numeric: func(r Row) float64 { return r.Calories }},
	{Key: ColumnFat, Label: "Fat", Type: FieldNumeric, numeric: func(r Row) float64 { return r.Fat }},
	{Key: ColumnCarbs, Label: "Carbs", Type: FieldNumeric, numeric: func(r Row) float64 { return r.Carbs }},
	{Key: ColumnProtein, Label: "Protein", Type: FieldNumeric, numeric: func(r Row) float64 { return r.Protein }},
}

// Columns returns the column set in header order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// LookupColumn returns the column for key.
// Returns false if the key is not a known column.
func LookupColumn(key ColumnKey) (Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// MustColumn returns the column for key and panics if it does not exist.
// Callers pass keys from the fixed column set, so a miss is a bug.
func MustColumn(key ColumnKey) Column {
	c, ok := LookupColumn(key)
	if !ok {
		panic(fmt.Sprintf("schema: unknown column %q", key))
	}
	return c
}

// ParseColumnKey converts user input (a header click, a query string) into
// a column key. Matching is case-insensitive.
func ParseColumnKey(s string) (ColumnKey, error) {
	key := ColumnKey(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := LookupColumn(key); !ok {
		return "", fmt.Errorf("column not found: %q", s)
	}
	return key, nil
}

// Compare orders a and b by this column. It returns 0 for equal values.
func (c Column) Compare(a, b Row) int {
	if c.Type == FieldNumeric {
		return cmp.Compare(c.numeric(a), c.numeric(b))
	}
	return strings.Compare(c.text(a), c.text(b))
}

// Format renders the column value of r for display.
func (c Column) Format(r Row) string {
	if c.Type == FieldNumeric {
		return FormatNumber(c.numeric(r))
	}
	return c.text(r)
}

// FormatNumber renders a nutrition value without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
