package admin

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/schema"
)

func TestStore_Count(t *testing.T) {
	s := &Store{GW: gateway.NewMemoryGateway(schema.SampleRows())}

	msg := s.Count()()

	if got, want := msg, InfoMsg("Store holds 15 items"); got != want {
		t.Errorf("Count() = %v, want %v", got, want)
	}
}

func TestStore_SeedSample(t *testing.T) {
	gw := gateway.NewMemoryGateway([]schema.Row{{ID: "1", Name: "Old cupcake"}, {ID: "99", Name: "Baklava"}})
	s := &Store{GW: gw}

	msg := s.SeedSample()()

	if _, ok := msg.(DoneMsg); !ok {
		t.Fatalf("SeedSample() = %#v, want DoneMsg", msg)
	}
	rows := gw.Snapshot()
	if len(rows) != 16 {
		t.Fatalf("store has %d rows, want 16", len(rows))
	}
	for _, r := range rows {
		if r.ID == "1" && r.Name != "Cupcake" {
			t.Errorf("row 1 = %q, want it overwritten", r.Name)
		}
	}
}

func TestStore_ResetAll(t *testing.T) {
	gw := gateway.NewMemoryGateway(schema.SampleRows())
	s := &Store{GW: gw}

	msg := s.ResetAll()()

	if msg != DoneMsg("Store reset") {
		t.Fatalf("ResetAll() = %#v", msg)
	}
	if n := len(gw.Snapshot()); n != 0 {
		t.Errorf("store has %d rows after reset", n)
	}
}

func TestStore_ResetAllStopsAtFirstFailure(t *testing.T) {
	gw := gateway.NewMemoryGateway(schema.SampleRows())
	gw.FailNext(gateway.OpDelete, gateway.ErrNetwork)
	s := &Store{GW: gw}

	msg := s.ResetAll()()

	errMsg, ok := msg.(ErrMsg)
	if !ok {
		t.Fatalf("ResetAll() = %#v, want ErrMsg", msg)
	}
	if !errors.Is(errMsg.Err, gateway.ErrNetwork) {
		t.Errorf("error = %v, want network kind", errMsg.Err)
	}
	if n := len(gw.Snapshot()); n != 15 {
		t.Errorf("store has %d rows, want untouched 15", n)
	}
}

func TestStore_CountFailure(t *testing.T) {
	gw := gateway.NewMemoryGateway(nil)
	gw.FailNext(gateway.OpFetchAll, gateway.ErrParse)
	s := &Store{GW: gw}

	errMsg, ok := s.Count()().(ErrMsg)
	if !ok {
		t.Fatal("want ErrMsg")
	}
	if !errors.Is(errMsg.Err, gateway.ErrParse) {
		t.Errorf("error = %v", errMsg.Err)
	}
}
