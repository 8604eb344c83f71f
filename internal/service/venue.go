package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/seating-chart/internal/access"
	"github.com/iliyamo/seating-chart/internal/analytics"
	"github.com/iliyamo/seating-chart/internal/seating"
)

// VenueConfig holds what NewVenue needs.
type VenueConfig struct {
	Seed      seating.Seed
	Options   seating.Options
	Layouts   seating.SnapshotRepository
	Sessions  analytics.SessionRepository
	Now       func() time.Time
	Logger    *slog.Logger
	ExportDir string
}

// Venue is the application context: every collaborator, and one mutex
// that serializes all operations on them.  Handlers and background tasks
// go through Do.
type Venue struct {
	mu sync.Mutex

	Roles    *access.Roles
	Edit     *access.EditMode
	Registry *seating.Registry
	Layout   *seating.LayoutStore
	Ledger   *analytics.Ledger
	Drag     *seating.Drag
	DayCycle *DayCycle

	ExportDir string
	log       *slog.Logger
}

// NewVenue builds the engine, resumes today's ledger and loads every area.
func NewVenue(ctx context.Context, cfg VenueConfig) (*Venue, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Layouts == nil || cfg.Sessions == nil {
		return nil, errors.New("venue: layout and session repositories are required")
	}

	roles := access.NewRoles()
	edit := access.NewEditMode(roles, log)

	ledger := analytics.NewLedger(cfg.Sessions, now, log)
	if err := ledger.Open(ctx); err != nil {
		log.Warn("ledger opened fresh", "err", err)
	}

	opts := cfg.Options
	opts.Gate = access.Gate{Roles: roles, Edit: edit}
	opts.Ledger = ledger
	opts.Clock = seating.ClockFunc(now)
	opts.Logger = log

	reg, err := seating.NewRegistry(cfg.Seed.Areas, opts)
	if err != nil {
		return nil, fmt.Errorf("build areas: %w", err)
	}
	layout := seating.NewLayoutStore(reg, cfg.Layouts)
	for area, src := range layout.Bootstrap(ctx) {
		log.Info("area loaded", "area", area, "source", src)
	}

	return &Venue{
		Roles:     roles,
		Edit:      edit,
		Registry:  reg,
		Layout:    layout,
		Ledger:    ledger,
		Drag:      seating.NewDrag(reg),
		DayCycle:  &DayCycle{Seats: reg, Layout: layout, Session: ledger, Log: log},
		ExportDir: cfg.ExportDir,
		log:       log,
	}, nil
}

// Do runs fn while holding the venue lock.
func (v *Venue) Do(fn func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn()
}

// Flush writes the working snapshot if the layout is dirty.
func (v *Venue) Flush(ctx context.Context) error {
	return v.Do(func() error { return v.Layout.Flush(ctx) })
}

// RunAutosave flushes the layout every interval until ctx is done.
func (v *Venue) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.Flush(ctx); err != nil {
				v.log.Warn("autosave failed", "err", err)
			}
		}
	}
}

// Shutdown saves the layout and the ledger unconditionally.
func (v *Venue) Shutdown(ctx context.Context) error {
	return v.Do(func() error {
		v.Drag.Cancel()
		v.Edit.Close()
		return errors.Join(v.Layout.Save(ctx), v.Ledger.Save(ctx))
	})
}
