package seating

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
)

// SeatSpec describes a seat at construction time.
type SeatSpec struct {
	ID       string     `json:"id"`
	Capacity int        `json:"capacity"`
	Position model.Vec2 `json:"position"`
	Rotation float64    `json:"rotation"`
}

// AreaSpec describes an area and its initial seats.
type AreaSpec struct {
	Name  string     `json:"name"`
	Seats []SeatSpec `json:"seats"`
}

// Area is a named zone holding an ordered set of seats.
type Area struct {
	Name  string
	seats []*Seat
}

// Seats returns the area's seats in order.
func (a *Area) Seats() []*Seat {
	return append([]*Seat(nil), a.seats...)
}

// Seat looks a seat up by ID.
func (a *Area) Seat(id string) *Seat {
	for _, s := range a.seats {
		if s.id == id {
			return s
		}
	}
	return nil
}

func (a *Area) remove(s *Seat) {
	for i, v := range a.seats {
		if v == s {
			a.seats = append(a.seats[:i], a.seats[i+1:]...)
			return
		}
	}
}

// Registry owns every area and knows which one is active.
type Registry struct {
	opts   Options
	log    *slog.Logger
	areas  []*Area
	active *Area
	layout *LayoutStore
}

// NewRegistry builds the areas from specs.  The first area starts active.
// Area names must be unique, also after mapping to storage keys, and every
// area needs at least a name.
func NewRegistry(specs []AreaSpec, opts Options) (*Registry, error) {
	opts.normalize()
	r := &Registry{opts: opts, log: opts.Logger}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one area is required")
	}
	keys := make(map[string]string, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("area name is required")
		}
		if r.Area(name) != nil {
			return nil, fmt.Errorf("duplicate area %q", name)
		}
		if prev, ok := keys[repository.KeyPart(name)]; ok {
			return nil, fmt.Errorf("areas %q and %q share a storage key", prev, name)
		}
		keys[repository.KeyPart(name)] = name
		a := &Area{Name: name}
		if err := r.populate(a, spec.Seats); err != nil {
			return nil, err
		}
		r.areas = append(r.areas, a)
	}
	r.active = r.areas[0]
	return r, nil
}

func (r *Registry) populate(a *Area, seats []SeatSpec) error {
	a.seats = a.seats[:0]
	for _, ss := range seats {
		if ss.ID == "" {
			return fmt.Errorf("%w (area %s)", ErrInvalidSeatID, a.Name)
		}
		if a.Seat(ss.ID) != nil {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateSeat, ss.ID, a.Name)
		}
		capacity := ss.Capacity
		if capacity <= 0 {
			capacity = 1
		}
		a.seats = append(a.seats, &Seat{
			reg:      r,
			id:       ss.ID,
			capacity: capacity,
			pos:      ss.Position,
			rot:      model.NormalizeDegrees(ss.Rotation),
			state:    model.SeatAvailable,
			area:     a.Name,
		})
	}
	return nil
}

// Options returns the effective options.
func (r *Registry) Options() Options { return r.opts }

// GridPitch is the snapping step used by SetPosition.
func (r *Registry) GridPitch() float64 { return r.opts.GridPitch }

// Areas returns every area in configuration order.
func (r *Registry) Areas() []*Area { return append([]*Area(nil), r.areas...) }

// Area returns the named area or nil.
func (r *Registry) Area(name string) *Area {
	for _, a := range r.areas {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (r *Registry) ActiveArea() *Area      { return r.active }
func (r *Registry) ActiveAreaName() string { return r.active.Name }
func (r *Registry) ActiveSeats() []*Seat   { return r.active.Seats() }

// Seat looks up a seat of the active area.
func (r *Registry) Seat(id string) (*Seat, error) {
	if s := r.active.Seat(id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
}

// AllSeats returns the seats of every area.
func (r *Registry) AllSeats() []*Seat {
	var out []*Seat
	for _, a := range r.areas {
		out = append(out, a.seats...)
	}
	return out
}

// SwitchTo saves the current area's working snapshot, activates name and
// loads its layout.  If the save fails the switch is abandoned so no
// unsaved edits are lost.
func (r *Registry) SwitchTo(ctx context.Context, name string) error {
	target := r.Area(name)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownArea, name)
	}
	if r.layout != nil {
		if err := r.layout.Save(ctx); err != nil {
			return fmt.Errorf("switch to %s: %w", name, err)
		}
	}
	prev := r.active.Name
	r.active = target
	if r.layout != nil {
		r.layout.Load(ctx)
	}
	r.log.Info("area switched", "from", prev, "to", name)
	return nil
}

// AddSeat creates an available seat in the active area.
func (r *Registry) AddSeat(id string, capacity int) (*Seat, error) {
	if !r.opts.Gate.IsPrivileged() {
		return nil, r.denied("add seat", id)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSeatID
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if r.active.Seat(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, id)
	}
	s := &Seat{reg: r, id: id, capacity: capacity, state: model.SeatAvailable, area: r.active.Name}
	s.pos = r.place(s, model.Vec2{})
	r.active.seats = append(r.active.seats, s)
	r.log.Info("seat added", "seat", id, "area", r.active.Name, "capacity", capacity)
	r.markDirty()
	return s, nil
}

// EditSeat renames a seat and/or changes its capacity.  An empty newID
// keeps the ID, and capacity 0 keeps the capacity.
func (r *Registry) EditSeat(id, newID string, capacity int) (*Seat, error) {
	if !r.opts.Gate.IsPrivileged() {
		return nil, r.denied("edit seat", id)
	}
	s, err := r.Seat(id)
	if err != nil {
		return nil, err
	}
	newID = strings.TrimSpace(newID)
	if newID != "" && newID != s.id && r.active.Seat(newID) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, newID)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if capacity > 0 && s.occupant != nil && s.occupant.PartySize > capacity {
		return nil, fmt.Errorf("%w: seated party of %d", ErrCapacityExceeded, s.occupant.PartySize)
	}
	if newID != "" {
		s.id = newID
	}
	if capacity > 0 {
		s.capacity = capacity
	}
	r.markDirty()
	return s, nil
}

// DeleteSeat clears and removes a seat of the active area.
func (r *Registry) DeleteSeat(id string) error {
	if !r.opts.Gate.IsPrivileged() {
		return r.denied("delete seat", id)
	}
	s, err := r.Seat(id)
	if err != nil {
		return err
	}
	s.ClearSeat()
	r.active.remove(s)
	r.log.Info("seat deleted", "seat", id, "area", r.active.Name)
	r.markDirty()
	return nil
}

// Search matches seats of the active area by seat ID or by the occupant's
// first name, last name or room number.  An empty query returns all seats.
func (r *Registry) Search(query string) []*Seat {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.ActiveSeats()
	}
	var out []*Seat
	for _, s := range r.active.seats {
		if strings.Contains(strings.ToLower(s.id), q) {
			out = append(out, s)
			continue
		}
		if g := s.occupant; g != nil {
			if strings.Contains(strings.ToLower(g.FirstName), q) ||
				strings.Contains(strings.ToLower(g.LastName), q) ||
				strings.Contains(strings.ToLower(g.RoomNumber), q) {
				out = append(out, s)
			}
		}
	}
	return out
}

// FilterByState returns the active area's seats in the given state.
func (r *Registry) FilterByState(state model.SeatState) []*Seat {
	var out []*Seat
	for _, s := range r.active.seats {
		if s.state == state {
			out = append(out, s)
		}
	}
	return out
}

// migrate moves s into the named area's container.  It refuses when the
// area is unknown or already has a seat with the same ID.
func (r *Registry) migrate(s *Seat, areaName string) bool {
	dst := r.Area(areaName)
	if dst == nil || dst.Seat(s.id) != nil {
		return false
	}
	if src := r.Area(s.area); src != nil {
		src.remove(s)
	}
	dst.seats = append(dst.seats, s)
	s.area = dst.Name
	return true
}

// place snaps p to the grid and nudges it along X past any sibling that
// already sits on the same cell.
func (r *Registry) place(s *Seat, p model.Vec2) model.Vec2 {
	pitch := r.opts.GridPitch
	p = p.Snap(pitch)
	a := r.Area(s.area)
	if a == nil {
		return p
	}
	for range len(a.seats) + 1 {
		if !r.cellTaken(a, s, p, pitch/2) {
			break
		}
		p.X += pitch
	}
	return p
}

func (r *Registry) cellTaken(a *Area, self *Seat, p model.Vec2, tol float64) bool {
	for _, o := range a.seats {
		if o != self && o.pos.Near(p, tol) {
			return true
		}
	}
	return false
}

func (r *Registry) canEditLayout() bool {
	return r.opts.Gate.IsPrivileged() && r.opts.Gate.IsLayoutEditActive()
}

func (r *Registry) denied(op, seat string) error {
	r.log.Warn("operation rejected", "op", op, "seat", seat, "area", r.active.Name)
	return fmt.Errorf("%w: %s", ErrNotPermitted, op)
}

func (r *Registry) now() time.Time { return r.opts.Clock.Now() }

func (r *Registry) markDirty() {
	if r.layout != nil {
		r.layout.MarkDirty()
	}
}
