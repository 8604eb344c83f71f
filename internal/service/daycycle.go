// Package service wires the seating engine, the ledger and persistence
// into the operations the HTTP layer exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/seating-chart/internal/seating"
)

// ErrMissingCollaborator is returned by RunEndOfDay when it was built
// without one of its collaborators.  Nothing is executed in that case.
var ErrMissingCollaborator = errors.New("end of day: missing collaborator")

// SeatSource lists every seat in every area.
type SeatSource interface {
	AllSeats() []*seating.Seat
}

// LayoutSaver persists working snapshots for all areas.
type LayoutSaver interface {
	SaveAll(ctx context.Context) error
}

// SessionArchiver closes the day's ledger.
type SessionArchiver interface {
	SessionDate() string
	ArchiveAndReset(ctx context.Context) (string, error)
}

// DayCycle runs the end-of-day close.
type DayCycle struct {
	Seats   SeatSource
	Layout  LayoutSaver
	Session SessionArchiver
	Log     *slog.Logger
}

// EndOfDayReport summarizes a close.
type EndOfDayReport struct {
	SeatsCleared  int    `json:"seats_cleared"`
	ClosedSession string `json:"closed_session"`
	ArchiveKey    string `json:"archive_key,omitempty"`
	LayoutSaved   bool   `json:"layout_saved"`
}

// RunEndOfDay clears every occupied seat in every area, saves the layouts
// and archives the session.  A layout save failure is reported but does
// not stop the archive.
func (d *DayCycle) RunEndOfDay(ctx context.Context) (EndOfDayReport, error) {
	var rep EndOfDayReport
	if d.Seats == nil || d.Layout == nil || d.Session == nil {
		return rep, ErrMissingCollaborator
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	for _, s := range d.Seats.AllSeats() {
		if s.Occupant() == nil {
			continue
		}
		s.ClearSeat()
		rep.SeatsCleared++
	}

	var errs []error
	if err := d.Layout.SaveAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save layouts: %w", err))
	} else {
		rep.LayoutSaved = true
	}

	rep.ClosedSession = d.Session.SessionDate()
	key, err := d.Session.ArchiveAndReset(ctx)
	rep.ArchiveKey = key
	if err != nil {
		errs = append(errs, fmt.Errorf("archive session: %w", err))
	}

	log.Info("end of day complete", "seats_cleared", rep.SeatsCleared, "session", rep.ClosedSession,
		"archive", rep.ArchiveKey, "layout_saved", rep.LayoutSaved)
	return rep, errors.Join(errs...)
}
