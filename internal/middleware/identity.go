package middleware

// identity.go holds helpers that read the authenticated operator back out
// of the Echo context.

import "github.com/labstack/echo/v4"

// Operator returns the token subject stored by JWTAuth, or "anonymous".
func Operator(c echo.Context) string {
	if v, ok := c.Get("operator").(string); ok && v != "" {
		return v
	}
	return "anonymous"
}

// Role returns the role claim stored by JWTAuth, or "".
func Role(c echo.Context) string {
	v, _ := c.Get("role").(string)
	return v
}
