package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Authorized guards the dashboard: anonymous requests under /dashboard are
// sent to /login, and signed-in users visiting /login go to /dashboard.
// It must run after Session.
func Authorized() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			_, loggedIn := CurrentUser(c)

			onDashboard := path == "/dashboard" || strings.HasPrefix(path, "/dashboard/")
			switch {
			case onDashboard && !loggedIn:
				return c.Redirect(http.StatusSeeOther, "/login")
			case !onDashboard && loggedIn && path == "/login":
				return c.Redirect(http.StatusSeeOther, "/dashboard")
			}
			return next(c)
		}
	}
}
