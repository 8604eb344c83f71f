package handler // handler defines the HTTP handlers of the operator console

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/access"
	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/seating"
	"github.com/iliyamo/seating-chart/internal/service"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, seating.ErrNotPermitted), errors.Is(err, access.ErrEditModeForbidden):
		return http.StatusForbidden
	case errors.Is(err, seating.ErrUnknownSeat), errors.Is(err, seating.ErrUnknownArea):
		return http.StatusNotFound
	case errors.Is(err, seating.ErrSeatOccupied), errors.Is(err, seating.ErrDuplicateSeat),
		errors.Is(err, seating.ErrInvalidTransition), errors.Is(err, seating.ErrOutOfService),
		errors.Is(err, seating.ErrDragInProgress), errors.Is(err, seating.ErrNoDrag):
		return http.StatusConflict
	case errors.Is(err, seating.ErrCapacityExceeded), errors.Is(err, seating.ErrInvalidGuest),
		errors.Is(err, seating.ErrInvalidCapacity), errors.Is(err, seating.ErrInvalidSeatID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrMissingCollaborator):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...} with the mapped status.
func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

type guestView struct {
	GuestID     string     `json:"guest_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	RoomNumber  string     `json:"room_number"`
	PartySize   int        `json:"party_size"`
	Notes       string     `json:"notes,omitempty"`
	TimeSeated  time.Time  `json:"time_seated"`
	TimeCleared *time.Time `json:"time_cleared,omitempty"`
}

type seatView struct {
	ID            string          `json:"id"`
	Area          string          `json:"area"`
	Capacity      int             `json:"capacity"`
	State         model.SeatState `json:"state"`
	X             float64         `json:"x"`
	Y             float64         `json:"y"`
	Rotation      float64         `json:"rotation"`
	OccupiedSince *time.Time      `json:"occupied_since,omitempty"`
	Guest         *guestView      `json:"guest,omitempty"`
}

func toGuestView(g *model.Guest) *guestView {
	if g == nil {
		return nil
	}
	return &guestView{
		GuestID:     g.GuestID,
		FirstName:   g.FirstName,
		LastName:    g.LastName,
		RoomNumber:  g.RoomNumber,
		PartySize:   g.PartySize,
		Notes:       g.Notes,
		TimeSeated:  g.TimeSeated,
		TimeCleared: g.TimeCleared,
	}
}

func toSeatView(s *seating.Seat) seatView {
	pos := s.Position()
	v := seatView{
		ID:       s.ID(),
		Area:     s.AreaName(),
		Capacity: s.Capacity(),
		State:    s.State(),
		X:        pos.X,
		Y:        pos.Y,
		Rotation: s.Rotation(),
		Guest:    toGuestView(s.Occupant()),
	}
	if t := s.OccupiedSince(); !t.IsZero() {
		v.OccupiedSince = &t
	}
	return v
}

func toSeatViews(seats []*seating.Seat) []seatView {
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		out = append(out, toSeatView(s))
	}
	return out
}
