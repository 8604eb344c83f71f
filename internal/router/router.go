package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/handler"
	"github.com/iliyamo/seating-chart/internal/middleware"
	"github.com/iliyamo/seating-chart/internal/model"
)

// Handlers groups everything the console routes need.
type Handlers struct {
	Auth      *handler.AuthHandler
	Seats     *handler.SeatHandler
	Layout    *handler.LayoutHandler
	Analytics *handler.AnalyticsHandler
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login/logout under /v1/auth.  Login issues the
// token every other /v1 route requires; loginMW (typically the throttle)
// wraps only the login route.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, loginMW ...echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, loginMW...)
	g.POST("/logout", a.Logout)
}

// RegisterConsole registers the operator console.  Attendant routes need
// a valid token of either role; layout editing and admin tools need ADMIN.
func RegisterConsole(e *echo.Echo, h Handlers, jwtSecret string) {
	admin, attendant := string(model.RoleAdmin), string(model.RoleAttendant)

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(admin, attendant))
	g.GET("/me", h.Auth.Me)

	// ---- Areas ----
	g.GET("/areas", h.Layout.Areas)
	g.POST("/areas/:name/activate", h.Layout.Activate)

	// ---- Seats ----
	g.GET("/seats", h.Seats.List)
	g.GET("/seats/:id", h.Seats.Get)
	g.POST("/seats/:id/assign", h.Seats.Assign)
	g.POST("/seats/:id/clear", h.Seats.Clear)
	g.POST("/seats/:id/reserve", h.Seats.Reserve)
	g.POST("/seats/:id/cleaning", h.Seats.Cleaning)

	// ---- Analytics ----
	g.GET("/analytics", h.Analytics.Metrics)
	g.GET("/analytics/export.csv", h.Analytics.ExportCSV)

	a := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(admin))

	// ---- Admin seat tools ----
	a.POST("/seats", h.Seats.Create)
	a.PATCH("/seats/:id", h.Seats.Update)
	a.DELETE("/seats/:id", h.Seats.Delete)
	a.POST("/seats/:id/out-of-service", h.Seats.OutOfService)

	// ---- Layout editing ----
	a.POST("/seats/:id/position", h.Seats.Position)
	a.POST("/seats/:id/rotate", h.Seats.Rotate)
	a.POST("/seats/:id/drag/begin", h.Seats.DragBegin)
	a.POST("/drag/update", h.Seats.DragUpdate)
	a.POST("/drag/end", h.Seats.DragEnd)
	a.POST("/drag/cancel", h.Seats.DragCancel)
	a.POST("/layout/edit-mode", h.Layout.EditMode)
	a.POST("/layout/save", h.Layout.Save)
	a.POST("/layout/default", h.Layout.SaveDefault)
	a.POST("/layout/reset", h.Layout.Reset)

	// ---- Day close ----
	a.POST("/analytics/export", h.Analytics.ExportFile)
	a.POST("/end-of-day", h.Analytics.EndOfDay)
}
