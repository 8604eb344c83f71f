package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/service"
)

// AnalyticsHandler serves the ledger metrics, exports and the end-of-day close.
type AnalyticsHandler struct {
	V *service.Venue
}

func NewAnalyticsHandler(v *service.Venue) *AnalyticsHandler { return &AnalyticsHandler{V: v} }

type metricsResp struct {
	SessionDate        string                  `json:"session_date"`
	TotalGuestsToday   int                     `json:"total_guests_today"`
	AverageStayMinutes float64                 `json:"average_stay_minutes"`
	CurrentlySeated    int                     `json:"currently_seated"`
	SeatsByState       map[model.SeatState]int `json:"seats_by_state"`
}

// Metrics handles GET /v1/analytics.
func (h *AnalyticsHandler) Metrics(c echo.Context) error {
	var resp metricsResp
	_ = h.V.Do(func() error {
		l := h.V.Ledger
		resp = metricsResp{
			SessionDate:        l.SessionDate(),
			TotalGuestsToday:   l.TotalGuestsToday(),
			AverageStayMinutes: l.AverageStayMinutes(),
			CurrentlySeated:    l.OpenRecords(),
			SeatsByState:       make(map[model.SeatState]int),
		}
		for _, s := range h.V.Registry.AllSeats() {
			resp.SeatsByState[s.State()]++
		}
		return nil
	})
	return c.JSON(http.StatusOK, resp)
}

// ExportCSV handles GET /v1/analytics/export.csv and streams the ledger.
func (h *AnalyticsHandler) ExportCSV(c echo.Context) error {
	var (
		buf  bytes.Buffer
		date string
	)
	err := h.V.Do(func() error {
		date = h.V.Ledger.SessionDate()
		return h.V.Ledger.Export(&buf, h.V.Registry.ActiveAreaName())
	})
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "analytics_"+date+".csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportFile handles POST /v1/analytics/export and writes the CSV to the
// export directory.
func (h *AnalyticsHandler) ExportFile(c echo.Context) error {
	var path string
	err := h.V.Do(func() error {
		var err error
		path, err = h.V.Ledger.ExportToFlatFile(h.V.ExportDir, h.V.Registry.ActiveAreaName())
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"path": path})
}

// EndOfDay handles POST /v1/end-of-day?confirm=true.  Without the
// confirmation nothing happens.
func (h *AnalyticsHandler) EndOfDay(c echo.Context) error {
	if ok, _ := strconv.ParseBool(c.QueryParam("confirm")); !ok {
		return c.JSON(http.StatusPreconditionRequired, echo.Map{"error": "end of day must be confirmed with confirm=true"})
	}
	var rep service.EndOfDayReport
	err := h.V.Do(func() error {
		h.V.Drag.Cancel()
		var err error
		rep, err = h.V.DayCycle.RunEndOfDay(c.Request().Context())
		return err
	})
	if err != nil && rep.ClosedSession == "" {
		return fail(c, err)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"report": rep, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, rep)
}
