// Package seating is the layout and occupancy engine: seats and their
// state machine, the registry of areas, the working/default layout store
// and the drag gesture.  None of its types are safe for concurrent use;
// callers serialize access (see service.Venue).
package seating

import (
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/seating-chart/internal/model"
)

var (
	ErrNotPermitted      = errors.New("operation not permitted")
	ErrInvalidGuest      = errors.New("invalid guest")
	ErrCapacityExceeded  = errors.New("party size exceeds seat capacity")
	ErrSeatOccupied      = errors.New("seat is already occupied")
	ErrOutOfService      = errors.New("seat is out of service")
	ErrInvalidTransition = errors.New("invalid seat state transition")
	ErrUnknownArea       = errors.New("unknown area")
	ErrUnknownSeat       = errors.New("unknown seat")
	ErrDuplicateSeat     = errors.New("seat id already exists in area")
	ErrInvalidSeatID     = errors.New("seat id is required")
	ErrInvalidCapacity   = errors.New("capacity must be at least 1")
	ErrDragInProgress    = errors.New("a drag is already in progress")
	ErrNoDrag            = errors.New("no drag in progress")
)

const (
	// DefaultGridPitch is the snapping step in canvas units.
	DefaultGridPitch = 50.0
	// RotateStep is the rotation applied by a single rotate gesture.
	RotateStep = 45.0
)

// Gate answers the permission questions the engine cannot answer itself.
type Gate interface {
	IsPrivileged() bool
	IsLayoutEditActive() bool
}

// Clock is the source of timestamps for seating and dwell times.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// LedgerNotifier receives guest seated / cleared notifications.
type LedgerNotifier interface {
	RecordSeated(area string, g model.Guest)
	RecordCleared(area string, g model.Guest)
}

// Options configures a Registry.
type Options struct {
	Gate   Gate
	Ledger LedgerNotifier
	Clock  Clock
	Logger *slog.Logger

	GridPitch float64

	// CloseLedgerOnOutOfService closes the occupant's ledger record when a
	// seat is taken out of service.  When false the occupant is dropped and
	// the record stays open.
	CloseLedgerOnOutOfService bool
	// RestoreOccupancy keeps occupants and states when a snapshot is
	// applied.  When false every applied seat comes back available.
	RestoreOccupancy bool
}

// DefaultOptions returns the options used by the server.
func DefaultOptions() Options {
	return Options{
		GridPitch:                 DefaultGridPitch,
		CloseLedgerOnOutOfService: true,
		RestoreOccupancy:          true,
	}
}

type noLedger struct{}

func (noLedger) RecordSeated(string, model.Guest)  {}
func (noLedger) RecordCleared(string, model.Guest) {}

type denyAll struct{}

func (denyAll) IsPrivileged() bool       { return false }
func (denyAll) IsLayoutEditActive() bool { return false }

func (o *Options) normalize() {
	if o.Gate == nil {
		o.Gate = denyAll{}
	}
	if o.Ledger == nil {
		o.Ledger = noLedger{}
	}
	if o.Clock == nil {
		o.Clock = ClockFunc(time.Now)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.GridPitch <= 0 {
		o.GridPitch = DefaultGridPitch
	}
}
