package seating

import "github.com/iliyamo/seating-chart/internal/model"

// DragState is the state of a Drag.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

// Drag turns a begin/update/end pointer sequence into one SetPosition
// call.  Permission is checked when the drag begins; the seat itself is
// only moved when the drag ends.
type Drag struct {
	reg     *Registry
	state   DragState
	seat    *Seat
	offset  model.Vec2
	current model.Vec2
}

func NewDrag(reg *Registry) *Drag { return &Drag{reg: reg} }

func (d *Drag) State() DragState { return d.state }

// Seat returns the seat being dragged, or nil when idle.
func (d *Drag) Seat() *Seat { return d.seat }

// Current is the unsnapped position the seat would land on right now.
func (d *Drag) Current() model.Vec2 { return d.current }

// Begin grabs s at pointer.
func (d *Drag) Begin(s *Seat, pointer model.Vec2) error {
	if d.state == DragDragging {
		return ErrDragInProgress
	}
	if !d.reg.canEditLayout() {
		return d.reg.denied("drag", s.id)
	}
	d.state = DragDragging
	d.seat = s
	d.offset = model.Vec2{X: s.pos.X - pointer.X, Y: s.pos.Y - pointer.Y}
	d.current = s.pos
	return nil
}

// Update follows the pointer.
func (d *Drag) Update(pointer model.Vec2) (model.Vec2, error) {
	if d.state != DragDragging {
		return model.Vec2{}, ErrNoDrag
	}
	d.current = model.Vec2{X: pointer.X + d.offset.X, Y: pointer.Y + d.offset.Y}
	return d.current, nil
}

// End drops the seat at the last pointer position, snapped to the grid,
// and returns the committed position.
func (d *Drag) End() (model.Vec2, error) {
	if d.state != DragDragging {
		return model.Vec2{}, ErrNoDrag
	}
	s := d.seat
	target := d.current
	d.Cancel()
	if err := s.SetPosition(target); err != nil {
		return s.pos, err
	}
	return s.pos, nil
}

// Cancel abandons the drag and leaves the seat where it was.
func (d *Drag) Cancel() {
	d.state = DragIdle
	d.seat = nil
	d.offset = model.Vec2{}
	d.current = model.Vec2{}
}
