package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/table"
)

// DefaultDeleteFanOut bounds concurrent deletes within one batch.
const DefaultDeleteFanOut = 8

// Options configures a Service.
type Options struct {
	Table         table.Options
	DeleteFanOut  int      // Zero uses DefaultDeleteFanOut
	Limiter       *Limiter // Shared across sessions, nil for no global limit
	ClockOverride func() time.Time
}

// Service coordinates tables with the gateway. It is the entry point every
// presentation layer uses: one Service per process, one Session per user.
type Service struct {
	gw        gateway.Gateway
	tableOpts table.Options
	fanOut    int
	limiter   *Limiter
	now       func() time.Time
}

// NewService validates opts by building a throwaway table, so a bad default
// sort or page size fails at startup rather than on the first request.
func NewService(gw gateway.Gateway, opts Options) (*Service, error) {
	if gw == nil {
		return nil, errors.New("gateway is nil")
	}
	if _, err := table.New(opts.Table); err != nil {
		return nil, fmt.Errorf("table options: %w", err)
	}

	fanOut := opts.DeleteFanOut
	if fanOut <= 0 {
		fanOut = DefaultDeleteFanOut
	}
	now := opts.ClockOverride
	if now == nil {
		now = time.Now
	}

	return &Service{
		gw:        gw,
		tableOpts: opts.Table,
		fanOut:    fanOut,
		limiter:   opts.Limiter,
		now:       now,
	}, nil
}

// Gateway returns the wrapped gateway.
func (s *Service) Gateway() gateway.Gateway {
	return s.gw
}

// Limiter returns the shared limiter, possibly nil.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// NewSession returns an empty session identified by id. Call Load to
// populate it.
func (s *Service) NewSession(id string) (*Session, error) {
	tbl, err := table.New(s.tableOpts)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:       id,
		svc:      s,
		tbl:      tbl,
		lastSeen: s.now(),
	}, nil
}
