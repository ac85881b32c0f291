package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// CurrentUser returns the claims of the request's session, if any.
func CurrentUser(c echo.Context) (*utils.SessionClaims, bool) {
	claims, ok := c.Get(sessionKey).(*utils.SessionClaims)
	if !ok || claims == nil || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}
