package seating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
)

type testGate struct{ priv, edit bool }

func (g *testGate) IsPrivileged() bool       { return g.priv }
func (g *testGate) IsLayoutEditActive() bool { return g.edit }

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingLedger struct {
	seated  []model.Guest
	cleared []model.Guest
	areas   []string
}

func (l *recordingLedger) RecordSeated(area string, g model.Guest) {
	l.seated = append(l.seated, g)
	l.areas = append(l.areas, area)
}

func (l *recordingLedger) RecordCleared(area string, g model.Guest) {
	l.cleared = append(l.cleared, g)
	l.areas = append(l.areas, area)
}

// flakyStore wraps a MemoryStore and fails writes while failPut is set.
type flakyStore struct {
	*repository.MemoryStore
	failPut bool
}

func (s *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	if s.failPut {
		return errors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, key, data)
}

type fixture struct {
	reg    *Registry
	layout *LayoutStore
	gate   *testGate
	clock  *testClock
	ledger *recordingLedger
	store  *flakyStore
	repo   *repository.LayoutRepo
}

func twoAreas() []AreaSpec {
	return []AreaSpec{
		{Name: "Pool", Seats: []SeatSpec{
			{ID: "S1", Capacity: 4, Position: model.Vec2{X: 100, Y: 100}},
			{ID: "S2", Capacity: 1, Position: model.Vec2{X: 200, Y: 100}},
			{ID: "S3", Capacity: 2, Position: model.Vec2{X: 300, Y: 100}},
		}},
		{Name: "Beach", Seats: []SeatSpec{
			{ID: "B1", Capacity: 6, Position: model.Vec2{X: 0, Y: 50}},
			{ID: "B2", Capacity: 2, Position: model.Vec2{X: 50, Y: 50}},
		}},
	}
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		gate:   &testGate{},
		clock:  &testClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)},
		ledger: &recordingLedger{},
		store:  &flakyStore{MemoryStore: repository.NewMemoryStore()},
	}
	opts := DefaultOptions()
	opts.Gate = f.gate
	opts.Clock = f.clock
	opts.Ledger = f.ledger
	if mutate != nil {
		mutate(&opts)
	}
	reg, err := NewRegistry(twoAreas(), opts)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	f.reg = reg
	f.repo = repository.NewLayoutRepo(f.store)
	f.layout = NewLayoutStore(reg, f.repo)
	return f
}

func (f *fixture) seat(t *testing.T, id string) *Seat {
	t.Helper()
	s, err := f.reg.Seat(id)
	if err != nil {
		t.Fatalf("seat %s: %v", id, err)
	}
	return s
}

func (f *fixture) admin(edit bool) {
	f.gate.priv = true
	f.gate.edit = edit
}

// checkInvariant fails when any seat breaks occupant <=> occupied.
func checkInvariant(t *testing.T, reg *Registry) {
	t.Helper()
	for _, s := range reg.AllSeats() {
		if (s.Occupant() != nil) != (s.State() == model.SeatOccupied) {
			t.Fatalf("seat %s: state %s with occupant %v", s.ID(), s.State(), s.Occupant())
		}
	}
}

func guest(first string, party int) model.Guest {
	return model.NewGuest(first, "Doe", "101", party, "", "")
}
