package seating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
)

// SnapshotRepository persists layout snapshots keyed by (area, role).
type SnapshotRepository interface {
	Load(ctx context.Context, area string, role model.SnapshotRole) (model.LayoutSnapshot, error)
	Save(ctx context.Context, snap model.LayoutSnapshot) error
	Delete(ctx context.Context, area string, role model.SnapshotRole) error
}

// LoadSource tells where an applied layout came from.
type LoadSource string

const (
	FromWorking   LoadSource = "working"
	FromDefault   LoadSource = "default"
	FromHardReset LoadSource = "hard_reset"
	FromSeed      LoadSource = "seed"
)

// LayoutStore saves and restores the active area's layout.  Mutations
// only mark it dirty; Flush, driven by a ticker, does the write.
type LayoutStore struct {
	reg   *Registry
	repo  SnapshotRepository
	log   *slog.Logger
	dirty bool
}

// NewLayoutStore binds a store to reg.  Seats mark this store dirty from
// then on.
func NewLayoutStore(reg *Registry, repo SnapshotRepository) *LayoutStore {
	ls := &LayoutStore{reg: reg, repo: repo, log: reg.log}
	reg.layout = ls
	return ls
}

func (ls *LayoutStore) MarkDirty()  { ls.dirty = true }
func (ls *LayoutStore) Dirty() bool { return ls.dirty }

// Flush saves the working snapshot if anything changed since the last
// save.  A failed write leaves the store dirty for the next tick.
func (ls *LayoutStore) Flush(ctx context.Context) error {
	if !ls.dirty {
		return nil
	}
	return ls.Save(ctx)
}

// Snapshot builds a snapshot of the given area.
func (ls *LayoutStore) Snapshot(a *Area, role model.SnapshotRole) model.LayoutSnapshot {
	snap := model.LayoutSnapshot{
		Area:    a.Name,
		Role:    role,
		SavedAt: ls.reg.now(),
		Seats:   make([]model.SeatRecord, 0, len(a.seats)),
	}
	for _, s := range a.seats {
		snap.Seats = append(snap.Seats, s.Record())
	}
	return snap
}

// Save writes the active area's working snapshot.
func (ls *LayoutStore) Save(ctx context.Context) error {
	if err := ls.write(ctx, ls.reg.active, model.RoleWorking); err != nil {
		return err
	}
	ls.dirty = false
	return nil
}

// SaveAll writes a working snapshot for every area.
func (ls *LayoutStore) SaveAll(ctx context.Context) error {
	var errs []error
	for _, a := range ls.reg.areas {
		if err := ls.write(ctx, a, model.RoleWorking); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	ls.dirty = false
	return nil
}

// SaveAsDefault stores the active layout as the area's default.
func (ls *LayoutStore) SaveAsDefault(ctx context.Context) error {
	if !ls.reg.opts.Gate.IsPrivileged() {
		return ls.reg.denied("save default layout", "")
	}
	return ls.write(ctx, ls.reg.active, model.RoleDefault)
}

func (ls *LayoutStore) write(ctx context.Context, a *Area, role model.SnapshotRole) error {
	if err := ls.repo.Save(ctx, ls.Snapshot(a, role)); err != nil {
		ls.log.Error("layout save failed", "area", a.Name, "role", role, "err", err)
		return fmt.Errorf("save %s layout of %s: %w", role, a.Name, err)
	}
	ls.log.Debug("layout saved", "area", a.Name, "role", role, "seats", len(a.seats))
	return nil
}

// Load restores the active area: working snapshot, else default snapshot,
// else hard reset.  The last two leave the store dirty so the result
// becomes the new working snapshot.
func (ls *LayoutStore) Load(ctx context.Context) LoadSource {
	a := ls.reg.active
	if snap, ok := ls.read(ctx, a.Name, model.RoleWorking); ok {
		ls.Apply(snap)
		return FromWorking
	}
	if err := ls.repo.Delete(ctx, a.Name, model.RoleWorking); err != nil {
		ls.log.Warn("stale working layout not removed", "area", a.Name, "role", model.RoleWorking, "err", err)
	}
	return ls.fallback(ctx)
}

// ResetToDefault discards the working snapshot and reapplies the default
// layout, or hard-resets the area when there is none.
func (ls *LayoutStore) ResetToDefault(ctx context.Context) (LoadSource, error) {
	if !ls.reg.opts.Gate.IsPrivileged() {
		return "", ls.reg.denied("reset layout", "")
	}
	a := ls.reg.active
	if err := ls.repo.Delete(ctx, a.Name, model.RoleWorking); err != nil {
		ls.log.Warn("working layout not removed", "area", a.Name, "role", model.RoleWorking, "err", err)
	}
	return ls.fallback(ctx), nil
}

func (ls *LayoutStore) fallback(ctx context.Context) LoadSource {
	a := ls.reg.active
	defer ls.MarkDirty()
	if snap, ok := ls.read(ctx, a.Name, model.RoleDefault); ok {
		ls.Apply(snap)
		return FromDefault
	}
	ls.HardReset()
	return FromHardReset
}

// read returns a usable snapshot or logs why there is none.
func (ls *LayoutStore) read(ctx context.Context, area string, role model.SnapshotRole) (model.LayoutSnapshot, bool) {
	snap, err := ls.repo.Load(ctx, area, role)
	switch {
	case err == nil:
		return snap, true
	case errors.Is(err, repository.ErrNotFound):
		ls.log.Debug("no layout snapshot", "area", area, "role", role)
	default:
		ls.log.Warn("layout snapshot unreadable", "area", area, "role", role, "err", err)
	}
	return model.LayoutSnapshot{}, false
}

// Apply restores seats of the active area from snap.  Records naming
// unknown seats are skipped.  A record owned by another known area moves
// the seat into that area.
func (ls *LayoutStore) Apply(snap model.LayoutSnapshot) {
	a := ls.reg.active
	keep := ls.reg.opts.RestoreOccupancy
	for _, rec := range snap.Seats {
		s := a.Seat(rec.SeatID)
		if s == nil {
			ls.log.Debug("snapshot seat not found", "area", a.Name, "seat", rec.SeatID)
			continue
		}
		if rec.AreaName != "" && rec.AreaName != s.area {
			if !ls.reg.migrate(s, rec.AreaName) {
				ls.log.Debug("seat migration skipped", "seat", s.id, "from", s.area, "to", rec.AreaName)
			}
		}
		s.restore(rec, keep)
	}
}

// HardReset clears every seat of the active area and returns it to the
// origin with no rotation.
func (ls *LayoutStore) HardReset() {
	a := ls.reg.active
	for _, s := range a.Seats() {
		s.reset()
	}
	ls.log.Info("layout hard reset", "area", a.Name, "seats", len(a.seats))
}

// Bootstrap loads every area at startup.  An area whose working (else
// default) snapshot exists takes its seat set from that snapshot, so
// seats added or removed at runtime survive a restart.  Areas without any
// snapshot keep their seeded seats and get a working snapshot written.
// The first area is active afterwards.
func (ls *LayoutStore) Bootstrap(ctx context.Context) map[string]LoadSource {
	type found struct {
		snap model.LayoutSnapshot
		src  LoadSource
	}
	snaps := make(map[*Area]found, len(ls.reg.areas))
	for _, a := range ls.reg.areas {
		if snap, ok := ls.read(ctx, a.Name, model.RoleWorking); ok {
			snaps[a] = found{snap, FromWorking}
		} else if snap, ok := ls.read(ctx, a.Name, model.RoleDefault); ok {
			snaps[a] = found{snap, FromDefault}
		} else {
			continue
		}
		specs := make([]SeatSpec, 0, len(snaps[a].snap.Seats))
		seen := make(map[string]bool)
		for _, rec := range snaps[a].snap.Seats {
			if rec.SeatID == "" || seen[rec.SeatID] {
				continue
			}
			seen[rec.SeatID] = true
			specs = append(specs, SeatSpec{ID: rec.SeatID, Capacity: rec.Capacity, Position: rec.Position, Rotation: rec.Rotation})
		}
		a.seats = nil
		if err := ls.reg.populate(a, specs); err != nil {
			ls.log.Warn("snapshot seat set rejected", "area", a.Name, "err", err)
		}
	}

	first := ls.reg.areas[0]
	out := make(map[string]LoadSource, len(ls.reg.areas))
	for _, a := range ls.reg.areas {
		ls.reg.active = a
		f, ok := snaps[a]
		if !ok {
			out[a.Name] = FromSeed
			_ = ls.write(ctx, a, model.RoleWorking)
			continue
		}
		ls.Apply(f.snap)
		out[a.Name] = f.src
		if f.src == FromDefault {
			_ = ls.write(ctx, a, model.RoleWorking)
		}
	}
	ls.reg.active = first
	ls.dirty = false
	return out
}
