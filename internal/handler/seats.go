package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/seating"
	"github.com/iliyamo/seating-chart/internal/service"
)

// SeatHandler exposes seat operations of the active area.
type SeatHandler struct {
	V *service.Venue
}

func NewSeatHandler(v *service.Venue) *SeatHandler {
	if v == nil {
		panic("nil venue passed to NewSeatHandler")
	}
	return &SeatHandler{V: v}
}

// withSeat runs fn on the seat named by :id under the venue lock and
// answers with the seat's state afterwards.
func (h *SeatHandler) withSeat(c echo.Context, fn func(*seating.Seat) error) error {
	var view seatView
	err := h.V.Do(func() error {
		s, err := h.V.Registry.Seat(c.Param("id"))
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		view = toSeatView(s)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// List handles GET /v1/seats.  ?q= searches by seat ID, guest name or
// room; ?state= filters by state.  Both may be combined.
func (h *SeatHandler) List(c echo.Context) error {
	var filter model.SeatState
	if raw := c.QueryParam("state"); raw != "" {
		st, err := model.ParseSeatState(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter = st
	}
	var out []seatView
	_ = h.V.Do(func() error {
		seats := h.V.Registry.Search(c.QueryParam("q"))
		if filter != "" {
			kept := seats[:0]
			for _, s := range seats {
				if s.State() == filter {
					kept = append(kept, s)
				}
			}
			seats = kept
		}
		out = toSeatViews(seats)
		return nil
	})
	return c.JSON(http.StatusOK, echo.Map{"area": h.activeArea(), "seats": out})
}

func (h *SeatHandler) activeArea() string {
	var name string
	_ = h.V.Do(func() error { name = h.V.Registry.ActiveAreaName(); return nil })
	return name
}

// Get handles GET /v1/seats/:id.
func (h *SeatHandler) Get(c echo.Context) error {
	return h.withSeat(c, func(*seating.Seat) error { return nil })
}

type assignReq struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RoomNumber string `json:"room_number"`
	PartySize  int    `json:"party_size"`
	GuestID    string `json:"guest_id"`
	Notes      string `json:"notes"`
}

// Assign handles POST /v1/seats/:id/assign.
func (h *SeatHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.PartySize == 0 {
		req.PartySize = 1
	}
	g := model.NewGuest(
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
		strings.TrimSpace(req.RoomNumber),
		req.PartySize,
		strings.TrimSpace(req.GuestID),
		req.Notes,
	)
	return h.withSeat(c, func(s *seating.Seat) error { return s.AssignGuest(g) })
}

// Clear handles POST /v1/seats/:id/clear.
func (h *SeatHandler) Clear(c echo.Context) error {
	return h.withSeat(c, func(s *seating.Seat) error { s.ClearSeat(); return nil })
}

// Reserve handles POST /v1/seats/:id/reserve.
func (h *SeatHandler) Reserve(c echo.Context) error {
	return h.withSeat(c, (*seating.Seat).Reserve)
}

// Cleaning handles POST /v1/seats/:id/cleaning.
func (h *SeatHandler) Cleaning(c echo.Context) error {
	return h.withSeat(c, (*seating.Seat).MarkCleaning)
}

// OutOfService handles POST /v1/seats/:id/out-of-service (toggle).
func (h *SeatHandler) OutOfService(c echo.Context) error {
	return h.withSeat(c, (*seating.Seat).ToggleOutOfService)
}

type positionReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position handles POST /v1/seats/:id/position.
func (h *SeatHandler) Position(c echo.Context) error {
	var req positionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.withSeat(c, func(s *seating.Seat) error {
		return s.SetPosition(model.Vec2{X: req.X, Y: req.Y})
	})
}

type rotateReq struct {
	Degrees *float64 `json:"degrees"`
}

// Rotate handles POST /v1/seats/:id/rotate; without a body it turns one step.
func (h *SeatHandler) Rotate(c echo.Context) error {
	var req rotateReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	delta := seating.RotateStep
	if req.Degrees != nil {
		delta = *req.Degrees
	}
	return h.withSeat(c, func(s *seating.Seat) error { return s.Rotate(delta) })
}

type seatReq struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
}

// Create handles POST /v1/seats (admin).
func (h *SeatHandler) Create(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Capacity == 0 {
		req.Capacity = 1
	}
	var view seatView
	err := h.V.Do(func() error {
		s, err := h.V.Registry.AddSeat(req.ID, req.Capacity)
		if err != nil {
			return err
		}
		view = toSeatView(s)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// Update handles PATCH /v1/seats/:id (admin): rename and/or resize.
func (h *SeatHandler) Update(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	var view seatView
	err := h.V.Do(func() error {
		s, err := h.V.Registry.EditSeat(c.Param("id"), req.ID, req.Capacity)
		if err != nil {
			return err
		}
		view = toSeatView(s)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /v1/seats/:id (admin).  A drag holding the seat
// is abandoned.
func (h *SeatHandler) Delete(c echo.Context) error {
	err := h.V.Do(func() error {
		s, err := h.V.Registry.Seat(c.Param("id"))
		if err != nil {
			return err
		}
		if err := h.V.Registry.DeleteSeat(s.ID()); err != nil {
			return err
		}
		if h.V.Drag.Seat() == s {
			h.V.Drag.Cancel()
		}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type pointerReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type dragResp struct {
	State string  `json:"state"`
	Seat  string  `json:"seat,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// DragBegin handles POST /v1/seats/:id/drag/begin.
func (h *SeatHandler) DragBegin(c echo.Context) error {
	var req pointerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	var resp dragResp
	err := h.V.Do(func() error {
		s, err := h.V.Registry.Seat(c.Param("id"))
		if err != nil {
			return err
		}
		if err := h.V.Drag.Begin(s, model.Vec2{X: req.X, Y: req.Y}); err != nil {
			return err
		}
		cur := h.V.Drag.Current()
		resp = dragResp{State: h.V.Drag.State().String(), Seat: s.ID(), X: cur.X, Y: cur.Y}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DragUpdate handles POST /v1/drag/update.
func (h *SeatHandler) DragUpdate(c echo.Context) error {
	var req pointerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	var resp dragResp
	err := h.V.Do(func() error {
		cur, err := h.V.Drag.Update(model.Vec2{X: req.X, Y: req.Y})
		if err != nil {
			return err
		}
		resp = dragResp{State: h.V.Drag.State().String(), Seat: h.V.Drag.Seat().ID(), X: cur.X, Y: cur.Y}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DragEnd handles POST /v1/drag/end and returns the seat at its snapped position.
func (h *SeatHandler) DragEnd(c echo.Context) error {
	var view seatView
	err := h.V.Do(func() error {
		s := h.V.Drag.Seat()
		if _, err := h.V.Drag.End(); err != nil {
			return err
		}
		view = toSeatView(s)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// DragCancel handles POST /v1/drag/cancel.
func (h *SeatHandler) DragCancel(c echo.Context) error {
	_ = h.V.Do(func() error { h.V.Drag.Cancel(); return nil })
	return c.NoContent(http.StatusNoContent)
}
