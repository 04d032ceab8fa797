package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/schema"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewService(gateway.NewMemoryGateway(schema.SampleRows()), Options{ClockOverride: clock.Now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewRegistry(svc), clock
}

func TestRegistry_GetOrCreate(t *testing.T) {
	reg, _ := newTestRegistry(t)

	s, created, err := reg.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Error("expected a new session for an empty id")
	}
	if s.ID() == "" {
		t.Error("new session has no id")
	}

	again, created, err := reg.GetOrCreate(s.ID())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created || again != s {
		t.Error("known id should return the existing session")
	}

	other, created, _ := reg.GetOrCreate("forged-id")
	if !created || other.ID() == "forged-id" {
		t.Errorf("unknown id should get a fresh random id, got %q", other.ID())
	}

	if got := reg.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg, _ := newTestRegistry(t)
	s, _, _ := reg.GetOrCreate("")

	reg.Remove(s.ID())

	if _, ok := reg.Get(s.ID()); ok {
		t.Error("session still registered after Remove")
	}
}

func TestRegistry_Sweep(t *testing.T) {
	reg, clock := newTestRegistry(t)
	idle, _, _ := reg.GetOrCreate("")
	active, _, _ := reg.GetOrCreate("")

	clock.Advance(20 * time.Minute)
	active.Touch()
	clock.Advance(15 * time.Minute)

	if removed := reg.Sweep(clock.Now(), 30*time.Minute); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, ok := reg.Get(idle.ID()); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := reg.Get(active.ID()); !ok {
		t.Error("active session was swept")
	}
}

func TestRegistry_StartSweeperStops(t *testing.T) {
	reg, clock := newTestRegistry(t)
	reg.GetOrCreate("")
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.StartSweeper(ctx, SweepConfig{TTL: time.Minute, Interval: 5 * time.Millisecond})
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for reg.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if got := reg.Len(); got != 0 {
		t.Errorf("Len after sweep = %d, want 0", got)
	}
}

func TestSweepConfig_Defaults(t *testing.T) {
	cfg := SweepConfig{}.withDefaults()
	if cfg.TTL != DefaultSessionTTL || cfg.Interval != DefaultSweepInterval {
		t.Errorf("withDefaults = %+v", cfg)
	}
}

func TestSessionContext(t *testing.T) {
	reg, _ := newTestRegistry(t)
	s, _, _ := reg.GetOrCreate("")

	ctx := ContextWithSession(context.Background(), s)
	got, ok := SessionFromContext(ctx)
	if !ok || got != s {
		t.Error("session not recovered from context")
	}

	if _, ok := SessionFromContext(context.Background()); ok {
		t.Error("empty context should carry no session")
	}
}
