// Package admin provides administrative operations against the item store.
package admin

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Timeout is the maximum duration for one admin operation.
const Timeout = 30 * time.Second

// Messages delivered to the terminal UI when an operation finishes.
type (
	InfoMsg string
	DoneMsg string
	ErrMsg  struct{ Err error }
)

// Store runs bulk operations directly against a gateway, bypassing any
// session table. Callers reload their tables afterwards.
type Store struct {
	GW gateway.Gateway
}

type storeFn func(ctx context.Context) error

// Count reports how many items the store holds.
func (s *Store) Count() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		rows, err := s.GW.FetchAll(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("count items: %w", err)}
		}
		return InfoMsg(fmt.Sprintf("Store holds %d items", len(rows)))
	}
}

// SeedSample upserts the sample desserts. Existing rows with the same ids
// are overwritten.
func (s *Store) SeedSample() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		rows := schema.SampleRows()
		fns := make([]storeFn, 0, len(rows))
		for _, row := range rows {
			fns = append(fns, func(ctx context.Context) error {
				_, err := s.GW.Upsert(ctx, row)
				return err
			})
		}
		if err := s.run(ctx, fns); err != nil {
			return ErrMsg{Err: fmt.Errorf("seed sample: %w", err)}
		}
		return DoneMsg(fmt.Sprintf("Seeded %d sample items", len(rows)))
	}
}

// ResetAll deletes every item in the store.
// This is a destructive operation - use with caution.
func (s *Store) ResetAll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		rows, err := s.GW.FetchAll(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("reset: %w", err)}
		}

		fns := make([]storeFn, 0, len(rows))
		for _, row := range rows {
			fns = append(fns, func(ctx context.Context) error {
				return s.GW.DeleteOne(ctx, row.ID)
			})
		}
		if err := s.run(ctx, fns); err != nil {
			return ErrMsg{Err: fmt.Errorf("reset: %w", err)}
		}
		return DoneMsg("Store reset")
	}
}

// run executes fns in order and stops at the first failure.
func (s *Store) run(ctx context.Context, fns []storeFn) error {
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}
