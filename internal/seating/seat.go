package seating

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seating-chart/internal/model"
)

// Seat is one chair, table or cabana.  Occupant is non-nil exactly when
// State is occupied.
type Seat struct {
	reg *Registry

	id            string
	capacity      int
	pos           model.Vec2
	rot           float64
	state         model.SeatState
	occupant      *model.Guest
	area          string
	occupiedSince time.Time
}

func (s *Seat) ID() string               { return s.id }
func (s *Seat) Capacity() int            { return s.capacity }
func (s *Seat) State() model.SeatState   { return s.state }
func (s *Seat) Position() model.Vec2     { return s.pos }
func (s *Seat) Rotation() float64        { return s.rot }
func (s *Seat) AreaName() string         { return s.area }
func (s *Seat) OccupiedSince() time.Time { return s.occupiedSince }

// Occupant returns a copy of the seated guest, or nil.
func (s *Seat) Occupant() *model.Guest {
	if s.occupant == nil {
		return nil
	}
	g := s.occupant.Clone()
	return &g
}

// CanAssign reports whether the party fits the seat's capacity.
func (s *Seat) CanAssign(g model.Guest) bool {
	return g.PartySize <= s.capacity
}

// AssignGuest seats g.  Available, reserved and cleaning seats accept a
// guest; on any error the seat is left untouched.
func (s *Seat) AssignGuest(g model.Guest) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGuest, err)
	}
	switch s.state {
	case model.SeatOutOfService:
		return fmt.Errorf("%w: %s", ErrOutOfService, s.id)
	case model.SeatOccupied:
		return fmt.Errorf("%w: %s", ErrSeatOccupied, s.id)
	}
	if !s.CanAssign(g) {
		return fmt.Errorf("%w: party of %d, seat %s holds %d", ErrCapacityExceeded, g.PartySize, s.id, s.capacity)
	}

	now := s.reg.now()
	occ := g.Clone()
	if occ.GuestID == "" {
		occ.GuestID = uuid.NewString()
	}
	occ.TimeSeated = now
	occ.TimeCleared = nil

	s.occupant = &occ
	s.state = model.SeatOccupied
	s.occupiedSince = now

	s.reg.opts.Ledger.RecordSeated(s.area, occ.Clone())
	s.reg.log.Info("guest seated", "seat", s.id, "area", s.area, "guest", occ.GuestID, "party", occ.PartySize)
	s.reg.markDirty()
	return nil
}

// ClearSeat returns the seat to available.  An occupied seat reports the
// departure to the ledger before the occupant is dropped.  Available and
// out-of-service seats are left as they are.
func (s *Seat) ClearSeat() {
	switch s.state {
	case model.SeatOccupied:
		if s.occupant != nil {
			s.reg.opts.Ledger.RecordCleared(s.area, s.occupant.Clone())
			s.reg.log.Info("guest cleared", "seat", s.id, "area", s.area, "guest", s.occupant.GuestID)
		}
		s.occupant = nil
		s.occupiedSince = time.Time{}
	case model.SeatReserved, model.SeatCleaning:
	default:
		return
	}
	s.state = model.SeatAvailable
	s.reg.markDirty()
}

// ToggleOutOfService moves the seat into or out of service.  Taking an
// occupied seat out of service drops the occupant.
func (s *Seat) ToggleOutOfService() error {
	if !s.reg.opts.Gate.IsPrivileged() {
		return s.reg.denied("toggle out of service", s.id)
	}
	if s.state == model.SeatOutOfService {
		s.state = model.SeatAvailable
		s.reg.markDirty()
		return nil
	}
	if s.occupant != nil {
		if s.reg.opts.CloseLedgerOnOutOfService {
			s.reg.opts.Ledger.RecordCleared(s.area, s.occupant.Clone())
		}
		s.reg.log.Info("occupant dropped for out of service", "seat", s.id, "area", s.area,
			"guest", s.occupant.GuestID, "ledger_closed", s.reg.opts.CloseLedgerOnOutOfService)
	}
	s.occupant = nil
	s.occupiedSince = time.Time{}
	s.state = model.SeatOutOfService
	s.reg.markDirty()
	return nil
}

// Reserve holds an available seat.
func (s *Seat) Reserve() error {
	if s.state != model.SeatAvailable {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, model.SeatReserved)
	}
	s.state = model.SeatReserved
	s.reg.markDirty()
	return nil
}

// MarkCleaning flags an available or reserved seat for cleaning.
func (s *Seat) MarkCleaning() error {
	if s.state != model.SeatAvailable && s.state != model.SeatReserved {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, model.SeatCleaning)
	}
	s.state = model.SeatCleaning
	s.reg.markDirty()
	return nil
}

// SetPosition moves the seat to p snapped to the grid.  If another seat
// of the same area already sits on that cell the seat is pushed one cell
// along X until it finds a free one.
func (s *Seat) SetPosition(p model.Vec2) error {
	if !s.reg.canEditLayout() {
		return s.reg.denied("set position", s.id)
	}
	s.pos = s.reg.place(s, p)
	s.reg.markDirty()
	return nil
}

// Rotate adds delta degrees to the rotation.
func (s *Seat) Rotate(delta float64) error {
	if !s.reg.canEditLayout() {
		return s.reg.denied("rotate", s.id)
	}
	s.rot = model.NormalizeDegrees(s.rot + delta)
	s.reg.markDirty()
	return nil
}

// Record captures the seat for a layout snapshot.
func (s *Seat) Record() model.SeatRecord {
	return model.SeatRecord{
		SeatID:   s.id,
		Position: s.pos,
		Rotation: s.rot,
		State:    s.state,
		Guest:    s.Occupant(),
		Capacity: s.capacity,
		AreaName: s.area,
	}
}

// restore overwrites the seat from a snapshot record.  The occupant and
// occupied state are kept consistent whatever the record says.  A current
// occupant the record does not carry is cleared from the ledger.
func (s *Seat) restore(rec model.SeatRecord, keepOccupancy bool) {
	s.pos = rec.Position
	s.rot = model.NormalizeDegrees(rec.Rotation)
	if rec.Capacity > 0 {
		s.capacity = rec.Capacity
	}

	state, err := model.ParseSeatState(string(rec.State))
	if err != nil {
		state = model.SeatAvailable
	}
	guest := rec.Guest
	if !keepOccupancy {
		guest = nil
		if state == model.SeatOccupied {
			state = model.SeatAvailable
		}
	}
	switch {
	case state == model.SeatOccupied && guest == nil:
		state = model.SeatAvailable
	case state != model.SeatOccupied:
		guest = nil
	}

	if old := s.occupant; old != nil && (guest == nil || guest.GuestID != old.GuestID) {
		s.reg.opts.Ledger.RecordCleared(s.area, old.Clone())
		s.reg.log.Info("occupant replaced by layout load", "seat", s.id, "area", s.area, "guest", old.GuestID)
	}

	s.state = state
	s.occupant = nil
	s.occupiedSince = time.Time{}
	if guest != nil {
		g := guest.Clone()
		s.occupant = &g
		s.occupiedSince = g.TimeSeated
		if s.occupiedSince.IsZero() {
			s.occupiedSince = s.reg.now()
		}
	}
}

// reset clears the seat and puts it back at the origin.
func (s *Seat) reset() {
	s.ClearSeat()
	s.pos = model.Vec2{}
	s.rot = 0
	s.state = model.SeatAvailable
	s.occupant = nil
	s.occupiedSince = time.Time{}
	s.reg.markDirty()
}
