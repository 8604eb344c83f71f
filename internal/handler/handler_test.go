package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/seating-chart/internal/handler"
	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
	"github.com/iliyamo/seating-chart/internal/router"
	"github.com/iliyamo/seating-chart/internal/seating"
	"github.com/iliyamo/seating-chart/internal/service"
	"github.com/iliyamo/seating-chart/internal/utils"
)

const secret = "test-secret"

type console struct {
	t *testing.T
	e *echo.Echo
	v *service.Venue
}

func newConsole(t *testing.T) *console {
	t.Helper()
	mem := repository.NewMemoryStore()
	v, err := service.NewVenue(context.Background(), service.VenueConfig{
		Seed: seating.Seed{Areas: []seating.AreaSpec{
			{Name: "Pool", Seats: []seating.SeatSpec{
				{ID: "S1", Capacity: 4, Position: model.Vec2{X: 100, Y: 100}},
				{ID: "S2", Capacity: 1, Position: model.Vec2{X: 200, Y: 100}},
			}},
			{Name: "Beach", Seats: []seating.SeatSpec{{ID: "B1", Capacity: 2}}},
		}},
		Options:   seating.DefaultOptions(),
		Layouts:   repository.NewLayoutRepo(mem),
		Sessions:  repository.NewSessionRepo(mem),
		ExportDir: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	hash, err := utils.HashPassword("admin123", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(v, secret, 60, hash))
	router.RegisterConsole(e, router.Handlers{
		Auth:      handler.NewAuthHandler(v, secret, 60, hash),
		Seats:     handler.NewSeatHandler(v),
		Layout:    handler.NewLayoutHandler(v),
		Analytics: handler.NewAnalyticsHandler(v),
	}, secret)
	return &console{t: t, e: e, v: v}
}

func (c *console) do(method, path, token, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec
}

func (c *console) login(password string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/v1/auth/login", "", `{"password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	var out struct{ Token string }
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type seatOut struct {
	ID    string
	State string
	X, Y  float64
	Guest *struct {
		FirstName string `json:"first_name"`
	}
}

func TestHealthAndAuth(t *testing.T) {
	c := newConsole(t)

	if rec := c.do(http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodGet, "/v1/seats", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/v1/auth/login", "", `{"password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", rec.Code)
	}

	c.login("admin123")
	if c.v.Roles.Current() != model.RoleAdmin {
		t.Fatal("admin login should elevate the console")
	}
	if rec := c.do(http.MethodPost, "/v1/auth/logout", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if c.v.Roles.Current() != model.RoleAttendant {
		t.Fatal("logout should drop to attendant")
	}
}

func TestAttendantSeatFlow(t *testing.T) {
	c := newConsole(t)
	tok := c.login("")

	rec := c.do(http.MethodPost, "/v1/seats/S1/assign", tok, `{"first_name":"Ann","party_size":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: %d %s", rec.Code, rec.Body)
	}
	s := decode[seatOut](t, rec)
	if s.State != "occupied" || s.Guest == nil || s.Guest.FirstName != "Ann" {
		t.Fatalf("seat = %+v", s)
	}

	if rec := c.do(http.MethodPost, "/v1/seats/S2/assign", tok, `{"party_size":3}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("over capacity: %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/v1/seats/S1/assign", tok, `{"party_size":1}`); rec.Code != http.StatusConflict {
		t.Fatalf("occupied: %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/v1/seats/nope/clear", tok, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown seat: %d", rec.Code)
	}

	rec = c.do(http.MethodGet, "/v1/seats?q=ann", tok, "")
	list := decode[struct{ Seats []seatOut }](t, rec)
	if len(list.Seats) != 1 || list.Seats[0].ID != "S1" {
		t.Fatalf("search = %+v", list)
	}
	rec = c.do(http.MethodGet, "/v1/seats?state=available", tok, "")
	list = decode[struct{ Seats []seatOut }](t, rec)
	if len(list.Seats) != 1 || list.Seats[0].ID != "S2" {
		t.Fatalf("filter = %+v", list)
	}
	if rec := c.do(http.MethodGet, "/v1/seats?state=weird", tok, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad state: %d", rec.Code)
	}

	if rec := c.do(http.MethodPost, "/v1/seats/S1/clear", tok, ""); rec.Code != http.StatusOK {
		t.Fatalf("clear: %d", rec.Code)
	}
	m := decode[struct {
		Total int `json:"total_guests_today"`
	}](t, c.do(http.MethodGet, "/v1/analytics", tok, ""))
	if m.Total != 1 {
		t.Fatalf("total = %d", m.Total)
	}

	if rec := c.do(http.MethodPost, "/v1/seats", tok, `{"id":"S9"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("attendant admin route: %d", rec.Code)
	}
}

func TestAdminLayoutEditing(t *testing.T) {
	c := newConsole(t)
	tok := c.login("admin123")

	if rec := c.do(http.MethodPost, "/v1/seats/S1/position", tok, `{"x":333,"y":444}`); rec.Code != http.StatusForbidden {
		t.Fatalf("position outside edit mode: %d", rec.Code)
	}
	rec := c.do(http.MethodPost, "/v1/layout/edit-mode", tok, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "true") {
		t.Fatalf("edit mode: %d %s", rec.Code, rec.Body)
	}

	s := decode[seatOut](t, c.do(http.MethodPost, "/v1/seats/S1/position", tok, `{"x":333,"y":444}`))
	if s.X != 350 || s.Y != 450 {
		t.Fatalf("position = %v,%v", s.X, s.Y)
	}

	if rec := c.do(http.MethodPost, "/v1/seats/S2/drag/begin", tok, `{"x":200,"y":100}`); rec.Code != http.StatusOK {
		t.Fatalf("drag begin: %d %s", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodPost, "/v1/drag/update", tok, `{"x":512,"y":288}`); rec.Code != http.StatusOK {
		t.Fatalf("drag update: %d", rec.Code)
	}
	s = decode[seatOut](t, c.do(http.MethodPost, "/v1/drag/end", tok, ""))
	if s.ID != "S2" || s.X != 500 || s.Y != 300 {
		t.Fatalf("drag end = %+v", s)
	}

	rec = c.do(http.MethodPost, "/v1/seats", tok, `{"id":"S9","capacity":6}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodPost, "/v1/seats", tok, `{"id":"S9"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", rec.Code)
	}
	if rec := c.do(http.MethodDelete, "/v1/seats/S9", tok, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec = c.do(http.MethodPost, "/v1/layout/reset", tok, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"hard_reset"`) {
		t.Fatalf("reset: %d %s", rec.Code, rec.Body)
	}
}

func TestAreaSwitchAndEndOfDay(t *testing.T) {
	c := newConsole(t)
	tok := c.login("admin123")

	_ = c.do(http.MethodPost, "/v1/seats/S1/assign", tok, `{"first_name":"Ann","party_size":2}`)
	if rec := c.do(http.MethodPost, "/v1/areas/Beach/activate", tok, ""); rec.Code != http.StatusOK {
		t.Fatalf("activate: %d %s", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodPost, "/v1/areas/Moon/activate", tok, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown area: %d", rec.Code)
	}

	if rec := c.do(http.MethodPost, "/v1/end-of-day", tok, ""); rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("unconfirmed end of day: %d", rec.Code)
	}
	rec := c.do(http.MethodPost, "/v1/end-of-day?confirm=true", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("end of day: %d %s", rec.Code, rec.Body)
	}
	rep := decode[service.EndOfDayReport](t, rec)
	if rep.SeatsCleared != 1 || !rep.LayoutSaved {
		t.Fatalf("report = %+v", rep)
	}

	rec = c.do(http.MethodGet, "/v1/analytics/export.csv", tok, "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "FirstName,LastName") {
		t.Fatalf("csv: %d %q", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodPost, "/v1/analytics/export", tok, ""); rec.Code != http.StatusCreated {
		t.Fatalf("export file: %d", rec.Code)
	}
}

func TestDeleteSeatAbandonsItsDrag(t *testing.T) {
	c := newConsole(t)
	tok := c.login("admin123")
	_ = c.do(http.MethodPost, "/v1/layout/edit-mode", tok, `{"enabled":true}`)

	if rec := c.do(http.MethodPost, "/v1/seats/S2/drag/begin", tok, `{"x":200,"y":100}`); rec.Code != http.StatusOK {
		t.Fatalf("drag begin: %d %s", rec.Code, rec.Body)
	}
	if rec := c.do(http.MethodDelete, "/v1/seats/S2", tok, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/v1/drag/end", tok, ""); rec.Code != http.StatusConflict {
		t.Fatalf("drag end after delete: %d %s", rec.Code, rec.Body)
	}
	if c.v.Drag.Seat() != nil {
		t.Fatal("drag still holds the deleted seat")
	}
}
