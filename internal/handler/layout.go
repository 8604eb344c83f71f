package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/service"
)

// LayoutHandler covers areas, edit mode and layout persistence.
type LayoutHandler struct {
	V *service.Venue
}

func NewLayoutHandler(v *service.Venue) *LayoutHandler { return &LayoutHandler{V: v} }

type areaView struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Seats  int    `json:"seats"`
}

// Areas handles GET /v1/areas.
func (h *LayoutHandler) Areas(c echo.Context) error {
	var out []areaView
	_ = h.V.Do(func() error {
		active := h.V.Registry.ActiveAreaName()
		for _, a := range h.V.Registry.Areas() {
			out = append(out, areaView{Name: a.Name, Active: a.Name == active, Seats: len(a.Seats())})
		}
		return nil
	})
	return c.JSON(http.StatusOK, out)
}

// Activate handles POST /v1/areas/:name/activate.  The departing area is
// saved before the new one is loaded.
func (h *LayoutHandler) Activate(c echo.Context) error {
	name := c.Param("name")
	var seats []seatView
	err := h.V.Do(func() error {
		h.V.Drag.Cancel()
		if err := h.V.Registry.SwitchTo(c.Request().Context(), name); err != nil {
			return err
		}
		seats = toSeatViews(h.V.Registry.ActiveSeats())
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"area": name, "seats": seats})
}

type editModeReq struct {
	Enabled *bool `json:"enabled"`
}

// EditMode handles POST /v1/layout/edit-mode.  With {"enabled": bool} it
// sets the mode, otherwise it toggles.
func (h *LayoutHandler) EditMode(c echo.Context) error {
	var req editModeReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	var on bool
	err := h.V.Do(func() error {
		if req.Enabled != nil {
			if err := h.V.Edit.Set(*req.Enabled); err != nil {
				return err
			}
			if !*req.Enabled {
				h.V.Drag.Cancel()
			}
			on = h.V.Edit.Active()
			return nil
		}
		var err error
		on, err = h.V.Edit.Toggle()
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"edit_mode": on})
}

// Save handles POST /v1/layout/save: write the working snapshot now.
func (h *LayoutHandler) Save(c echo.Context) error {
	err := h.V.Do(func() error { return h.V.Layout.Save(c.Request().Context()) })
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SaveDefault handles POST /v1/layout/default.
func (h *LayoutHandler) SaveDefault(c echo.Context) error {
	err := h.V.Do(func() error { return h.V.Layout.SaveAsDefault(c.Request().Context()) })
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reset handles POST /v1/layout/reset.
func (h *LayoutHandler) Reset(c echo.Context) error {
	var (
		source string
		seats  []seatView
	)
	err := h.V.Do(func() error {
		h.V.Drag.Cancel()
		src, err := h.V.Layout.ResetToDefault(c.Request().Context())
		if err != nil {
			return err
		}
		source = string(src)
		seats = toSeatViews(h.V.Registry.ActiveSeats())
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"source": source, "seats": seats})
}
