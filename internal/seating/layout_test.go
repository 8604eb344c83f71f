package seating

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(true)

	s1 := f.seat(t, "S1")
	_ = s1.SetPosition(model.Vec2{X: 650, Y: 400})
	_ = s1.Rotate(90)
	_ = s1.AssignGuest(guest("Ann", 3))
	_ = f.seat(t, "S2").Reserve()
	_ = f.seat(t, "S3").ToggleOutOfService()

	want := map[string]model.SeatRecord{}
	for _, s := range f.reg.ActiveSeats() {
		want[s.ID()] = s.Record()
	}
	if err := f.layout.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if f.layout.Dirty() {
		t.Fatal("save should clear the dirty flag")
	}

	// scramble, then load back
	f.layout.HardReset()
	if src := f.layout.Load(ctx); src != FromWorking {
		t.Fatalf("load source = %s", src)
	}
	for _, s := range f.reg.ActiveSeats() {
		got := s.Record()
		w := want[s.ID()]
		if got.Position != w.Position || got.Rotation != w.Rotation || got.Capacity != w.Capacity || got.State != w.State {
			t.Fatalf("seat %s: got %+v want %+v", s.ID(), got, w)
		}
	}
	if g := s1.Occupant(); g == nil || g.FirstName != "Ann" {
		t.Fatalf("occupant not restored: %+v", g)
	}
	checkInvariant(t, f.reg)
}

func TestApplyWithoutOccupancyRestore(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.RestoreOccupancy = false })
	s := f.seat(t, "S1")
	_ = s.AssignGuest(guest("Ann", 2))
	snap := f.layout.Snapshot(f.reg.ActiveArea(), model.RoleWorking)

	f.layout.Apply(snap)

	if s.State() != model.SeatAvailable || s.Occupant() != nil {
		t.Fatalf("occupancy should be dropped on apply, got %s", s.State())
	}
	if len(f.ledger.cleared) != 1 {
		t.Fatalf("dropped occupant should be cleared from the ledger, got %d", len(f.ledger.cleared))
	}
}

func TestApplyRepairsInconsistentRecords(t *testing.T) {
	f := newFixture(t, nil)
	g := guest("Ann", 1)
	f.layout.Apply(model.LayoutSnapshot{Seats: []model.SeatRecord{
		{SeatID: "S1", State: model.SeatOccupied, Capacity: 4},
		{SeatID: "S2", State: model.SeatReserved, Guest: &g, Capacity: 0},
		{SeatID: "S3", State: "bogus", Capacity: 5},
		{SeatID: "ghost", State: model.SeatOccupied, Guest: &g},
	}})

	if got := f.seat(t, "S1").State(); got != model.SeatAvailable {
		t.Fatalf("occupied without guest should become available, got %s", got)
	}
	s2 := f.seat(t, "S2")
	if s2.Occupant() != nil || s2.State() != model.SeatReserved {
		t.Fatal("guest on a non-occupied record must be dropped")
	}
	if s2.Capacity() != 1 {
		t.Fatalf("zero capacity must not overwrite, got %d", s2.Capacity())
	}
	s3 := f.seat(t, "S3")
	if s3.State() != model.SeatAvailable || s3.Capacity() != 5 {
		t.Fatalf("S3 = %s/%d", s3.State(), s3.Capacity())
	}
	if len(f.reg.ActiveSeats()) != 3 {
		t.Fatal("unknown seat ids must not be fabricated")
	}
	checkInvariant(t, f.reg)
}

func TestApplyMigratesSeatToRecordArea(t *testing.T) {
	f := newFixture(t, nil)
	f.layout.Apply(model.LayoutSnapshot{Seats: []model.SeatRecord{
		{SeatID: "S3", State: model.SeatAvailable, Capacity: 2, AreaName: "Beach"},
	}})

	if f.reg.ActiveArea().Seat("S3") != nil {
		t.Fatal("S3 should have left Pool")
	}
	moved := f.reg.Area("Beach").Seat("S3")
	if moved == nil || moved.AreaName() != "Beach" {
		t.Fatal("S3 should now belong to Beach")
	}
}

func TestResetToDefaultWithoutDefaultHardResets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(true)
	_ = f.seat(t, "S1").AssignGuest(guest("Ann", 2))
	_ = f.seat(t, "S2").Rotate(45)
	_ = f.seat(t, "S3").ToggleOutOfService()
	_ = f.layout.Save(ctx)

	src, err := f.layout.ResetToDefault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if src != FromHardReset {
		t.Fatalf("source = %s, want hard reset", src)
	}
	for _, s := range f.reg.ActiveSeats() {
		if s.State() != model.SeatAvailable || s.Position() != (model.Vec2{}) || s.Rotation() != 0 || s.Occupant() != nil {
			t.Fatalf("seat %s not reset: %+v", s.ID(), s.Record())
		}
	}
	if len(f.ledger.cleared) != 1 {
		t.Fatalf("hard reset should close the open ledger record, got %d", len(f.ledger.cleared))
	}
	if !f.layout.Dirty() {
		t.Fatal("reset result should be pending save")
	}
	if _, err := f.repo.Load(ctx, "Pool", model.RoleWorking); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("working snapshot should be deleted, got %v", err)
	}
}

func TestResetToDefaultAppliesDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(true)
	s := f.seat(t, "S1")
	_ = s.SetPosition(model.Vec2{X: 1000, Y: 1000})
	if err := f.layout.SaveAsDefault(ctx); err != nil {
		t.Fatal(err)
	}
	_ = s.SetPosition(model.Vec2{X: 0, Y: 500})

	src, err := f.layout.ResetToDefault(ctx)
	if err != nil || src != FromDefault {
		t.Fatalf("reset: %s %v", src, err)
	}
	if s.Position() != (model.Vec2{X: 1000, Y: 1000}) {
		t.Fatalf("position = %+v", s.Position())
	}
}

func TestResetToDefaultClosesDisplacedOccupant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(false)
	if err := f.layout.SaveAsDefault(ctx); err != nil {
		t.Fatal(err)
	}
	s := f.seat(t, "S1")
	_ = s.AssignGuest(guest("Ann", 2))

	src, err := f.layout.ResetToDefault(ctx)
	if err != nil || src != FromDefault {
		t.Fatalf("reset: %s %v", src, err)
	}
	if s.Occupant() != nil {
		t.Fatal("default layout has S1 empty")
	}
	if len(f.ledger.cleared) != 1 || f.ledger.cleared[0].GuestID != f.ledger.seated[0].GuestID {
		t.Fatalf("displaced guest not cleared: seated=%d cleared=%d", len(f.ledger.seated), len(f.ledger.cleared))
	}
	checkInvariant(t, f.reg)
}

func TestApplyKeepsLedgerOpenForSameGuest(t *testing.T) {
	f := newFixture(t, nil)
	s := f.seat(t, "S1")
	_ = s.AssignGuest(guest("Ann", 2))
	snap := f.layout.Snapshot(f.reg.ActiveArea(), model.RoleWorking)

	f.layout.Apply(snap)

	if s.Occupant() == nil || len(f.ledger.cleared) != 0 {
		t.Fatalf("same guest reloaded: occupant=%v cleared=%d", s.Occupant(), len(f.ledger.cleared))
	}

	other := guest("Bob", 1)
	other.TimeSeated = f.clock.Now()
	snap.Seats[0].Guest = &other
	f.layout.Apply(snap)

	if g := s.Occupant(); g == nil || g.FirstName != "Bob" {
		t.Fatalf("occupant = %+v", g)
	}
	if len(f.ledger.cleared) != 1 || f.ledger.cleared[0].FirstName != "Ann" {
		t.Fatalf("replaced guest not cleared: %+v", f.ledger.cleared)
	}
}

func TestPrivilegedLayoutOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if err := f.layout.SaveAsDefault(ctx); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("save default: %v", err)
	}
	if _, err := f.layout.ResetToDefault(ctx); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.repo.Load(ctx, "Pool", model.RoleDefault); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("denied save must not write")
	}
}

func TestLoadFallsBackFromCorruptWorking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(true)
	_ = f.seat(t, "S2").Rotate(90)
	_ = f.layout.SaveAsDefault(ctx)
	_ = f.store.Put(ctx, repository.LayoutKey("Pool", model.RoleWorking), []byte("{broken"))

	if src := f.layout.Load(ctx); src != FromDefault {
		t.Fatalf("source = %s, want default", src)
	}
	if f.seat(t, "S2").Rotation() != 90 {
		t.Fatal("default snapshot not applied")
	}
	if _, err := f.store.Get(ctx, repository.LayoutKey("Pool", model.RoleWorking)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("stale working snapshot should be deleted")
	}
	if !f.layout.Dirty() {
		t.Fatal("fallback should mark dirty")
	}
}

func TestFlushKeepsDirtyOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_ = f.seat(t, "S1").Reserve()

	f.store.failPut = true
	if err := f.layout.Flush(ctx); err == nil {
		t.Fatal("expected flush error")
	}
	if !f.layout.Dirty() {
		t.Fatal("failed flush must leave the store dirty")
	}

	f.store.failPut = false
	if err := f.layout.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if f.layout.Dirty() {
		t.Fatal("successful flush should clear dirty")
	}
	snap, err := f.repo.Load(ctx, "Pool", model.RoleWorking)
	if err != nil || snap.Seats[0].State != model.SeatReserved {
		t.Fatalf("flushed snapshot: %+v %v", snap, err)
	}
}

func TestBootstrapRestoresSeatSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.admin(false)
	if _, err := f.reg.AddSeat("S9", 3); err != nil {
		t.Fatal(err)
	}
	if err := f.reg.DeleteSeat("S2"); err != nil {
		t.Fatal(err)
	}
	_ = f.seat(t, "S1").AssignGuest(guest("Ann", 2))
	if err := f.layout.Save(ctx); err != nil {
		t.Fatal(err)
	}

	// second process, same storage, seeded from the original specs
	opts := DefaultOptions()
	reg, err := NewRegistry(twoAreas(), opts)
	if err != nil {
		t.Fatal(err)
	}
	ls := NewLayoutStore(reg, f.repo)
	sources := ls.Bootstrap(ctx)

	if sources["Pool"] != FromWorking || sources["Beach"] != FromSeed {
		t.Fatalf("sources = %v", sources)
	}
	if reg.ActiveAreaName() != "Pool" {
		t.Fatalf("active = %s", reg.ActiveAreaName())
	}
	if _, err := reg.Seat("S9"); err != nil {
		t.Fatal("runtime-added seat lost")
	}
	if _, err := reg.Seat("S2"); err == nil {
		t.Fatal("deleted seat came back")
	}
	s1, _ := reg.Seat("S1")
	if s1.State() != model.SeatOccupied {
		t.Fatalf("S1 = %s", s1.State())
	}
	if _, err := f.repo.Load(ctx, "Beach", model.RoleWorking); err != nil {
		t.Fatalf("seeded area should get a working snapshot: %v", err)
	}
}
