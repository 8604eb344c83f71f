package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seating-chart/internal/middleware"
	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/service"
	"github.com/iliyamo/seating-chart/internal/utils"
)

// AuthHandler switches the console between attendant and admin.  There is
// a single admin password; an empty password opens an attendant session.
type AuthHandler struct {
	V            *service.Venue
	JWTSecret    string
	AccessTTLMin int
	AdminHash    string
}

func NewAuthHandler(v *service.Venue, secret string, ttlMin int, adminHash string) *AuthHandler {
	return &AuthHandler{V: v, JWTSecret: secret, AccessTTLMin: ttlMin, AdminHash: adminHash}
}

type loginReq struct {
	Password string `json:"password"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Role    string    `json:"role"`
}

// Login: verify the admin password (if any) and return a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role := model.RoleAttendant
	if req.Password != "" {
		if !utils.VerifyPassword(h.AdminHash, req.Password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		role = model.RoleAdmin
	}

	access, err := utils.NewAccessToken(h.JWTSecret, string(role), h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	_ = h.V.Do(func() error {
		h.V.Roles.SetRole(role)
		return nil
	})
	return c.JSON(http.StatusOK, tokenResp{Token: access.Token, Expires: access.Exp, Role: string(role)})
}

// Logout drops the console back to attendant, which also ends edit mode.
func (h *AuthHandler) Logout(c echo.Context) error {
	_ = h.V.Do(func() error {
		h.V.Drag.Cancel()
		h.V.Roles.SetRole(model.RoleAttendant)
		return nil
	})
	return c.NoContent(http.StatusNoContent)
}

// Me reports the caller and the console state.
func (h *AuthHandler) Me(c echo.Context) error {
	var resp echo.Map
	_ = h.V.Do(func() error {
		resp = echo.Map{
			"operator":     middleware.Operator(c),
			"token_role":   middleware.Role(c),
			"console_role": h.V.Roles.Current(),
			"edit_mode":    h.V.Edit.Active(),
			"active_area":  h.V.Registry.ActiveAreaName(),
		}
		return nil
	})
	return c.JSON(http.StatusOK, resp)
}
