// Package gateway is the boundary between the table engine and the remote
// store that owns nutrition rows.
//
// Implementations:
//
//   - [HTTPGateway] talks to the deployed REST endpoint, including its
//     string-wrapped envelope and typed attribute values.
//   - [PostgresGateway] reads and writes the nutrition_items table directly.
//   - [MemoryGateway] keeps rows in process, for demos and tests.
//
// Decorators add behaviour to any of them: [NewValidating] rejects invalid
// rows before they leave the process and [NewObservable] records metrics and
// trace spans.
package gateway

//go:generate mockgen -destination=gateway_mock.go -package=gateway -source=gateway.go

import (
	"context"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Gateway is the remote store contract.
type Gateway interface {
	// FetchAll returns every row. Fails with ErrNetwork or ErrParse.
	FetchAll(ctx context.Context) ([]schema.Row, error)
	// Upsert inserts or replaces row by ID and returns the stored row.
	// Fails with ErrNetwork or ErrValidation.
	Upsert(ctx context.Context, row schema.Row) (schema.Row, error)
	// DeleteOne removes the row with id. Fails with ErrNetwork or ErrNotFound.
	DeleteOne(ctx context.Context, id schema.ID) error
}
