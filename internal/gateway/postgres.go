package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS nutrition_items (
    position   BIGSERIAL,
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    calories   DOUBLE PRECISION NOT NULL DEFAULT 0,
    fat        DOUBLE PRECISION NOT NULL DEFAULT 0,
    carbs      DOUBLE PRECISION NOT NULL DEFAULT 0,
    protein    DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectAllSQL = `
SELECT id, name, calories, fat, carbs, protein
FROM nutrition_items
ORDER BY position`

const upsertSQL = `
INSERT INTO nutrition_items (id, name, calories, fat, carbs, protein)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name       = EXCLUDED.name,
    calories   = EXCLUDED.calories,
    fat        = EXCLUDED.fat,
    carbs      = EXCLUDED.carbs,
    protein    = EXCLUDED.protein,
    updated_at = now()
RETURNING id, name, calories, fat, carbs, protein`

const deleteSQL = `DELETE FROM nutrition_items WHERE id = $1`

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenPool parses databaseURL, applies opts, connects and pings.
func OpenPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresGateway stores rows in the nutrition_items table.
type PostgresGateway struct {
	db DBTX
}

// NewPostgresGateway wraps db, usually a *pgxpool.Pool.
func NewPostgresGateway(db DBTX) *PostgresGateway {
	return &PostgresGateway{db: db}
}

// EnsureSchema creates nutrition_items if missing.
func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create nutrition_items: %w", err)
	}
	return nil
}

// Seed inserts rows that are not already present.
func (g *PostgresGateway) Seed(ctx context.Context, rows []schema.Row) (int, error) {
	inserted := 0
	for _, r := range rows {
		tag, err := g.db.Exec(ctx, `
INSERT INTO nutrition_items (id, name, calories, fat, carbs, protein)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`,
			string(r.ID), r.Name, r.Calories, r.Fat, r.Carbs, r.Protein)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", r.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (g *PostgresGateway) FetchAll(ctx context.Context) ([]schema.Row, error) {
	rows, err := g.db.Query(ctx, selectAllSQL)
	if err != nil {
		return nil, newError(OpFetchAll, "", ErrNetwork, err)
	}

	out, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (schema.Row, error) {
		return scanRow(r)
	})
	if err != nil {
		// Server errors mid-stream are transport failures; anything else is
		// a value that did not scan.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, newError(OpFetchAll, "", ErrNetwork, err)
		}
		return nil, newError(OpFetchAll, "", ErrParse, err)
	}
	if out == nil {
		out = []schema.Row{}
	}
	return out, nil
}

func (g *PostgresGateway) Upsert(ctx context.Context, row schema.Row) (schema.Row, error) {
	if strings.TrimSpace(string(row.ID)) == "" {
		return schema.Row{}, newError(OpUpsert, row.ID, ErrValidation, errors.New("id is required"))
	}

	stored, err := scanRow(g.db.QueryRow(ctx, upsertSQL,
		string(row.ID), row.Name, row.Calories, row.Fat, row.Carbs, row.Protein))
	if err != nil {
		return schema.Row{}, newError(OpUpsert, row.ID, classifyPg(err, ErrNetwork), err)
	}
	return stored, nil
}

func (g *PostgresGateway) DeleteOne(ctx context.Context, id schema.ID) error {
	tag, err := g.db.Exec(ctx, deleteSQL, string(id))
	if err != nil {
		return newError(OpDelete, id, ErrNetwork, err)
	}
	if tag.RowsAffected() == 0 {
		return newError(OpDelete, id, ErrNotFound, nil)
	}
	return nil
}

func scanRow(row pgx.Row) (schema.Row, error) {
	var (
		r  schema.Row
		id string
	)
	if err := row.Scan(&id, &r.Name, &r.Calories, &r.Fat, &r.Carbs, &r.Protein); err != nil {
		return schema.Row{}, err
	}
	r.ID = schema.ID(id)
	return r, nil
}

// classifyPg maps data and integrity violations to ErrValidation; anything
// else gets fallback.
func classifyPg(err error, fallback error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 22 data exception, class 23 integrity constraint violation.
		if strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") {
			return ErrValidation
		}
		return ErrNetwork
	}
	return fallback
}
