// Package schema defines the nutrition row type and the fixed column set
// every other package renders, sorts, and transmits.
package schema

import "fmt"

// ID uniquely identifies a row within the store.
type ID string

// Row is one nutrition record.
type Row struct {
	ID       ID      `json:"id" validate:"required,max=64"`
	Name     string  `json:"name" validate:"required,max=100"`
	Calories float64 `json:"calories" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
}

// String returns a compact representation for logs.
func (r Row) String() string {
	return fmt.Sprintf("Row{%s %q %g/%g/%g/%g}", r.ID, r.Name, r.Calories, r.Fat, r.Carbs, r.Protein)
}

// IDs returns the identifiers of rows in order.
func IDs(rows []Row) []ID {
	ids := make([]ID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
