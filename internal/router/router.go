// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/middleware"
)

// Deps is everything the routes need.
type Deps struct {
	Secret    string
	Health    echo.HandlerFunc
	Seed      echo.HandlerFunc
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Invoices  *handler.InvoiceHandler
	Customers *handler.CustomerHandler

	// Optional; nil means no response cache / no login rate limit.
	Cache        echo.MiddlewareFunc
	LoginLimiter echo.MiddlewareFunc
}

// Register installs the session reader and the dashboard gate on every
// request, then registers all routes.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.Session(d.Secret), middleware.Authorized())

	e.GET("/healthz", d.Health)
	e.GET("/seed", d.Seed)

	RegisterAuth(e, d.Auth, d.LoginLimiter)
	RegisterDashboard(e, d.Dashboard, d.Invoices, d.Customers, d.Cache)
}

// RegisterAuth registers the login form, sign-in and sign-out.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET("/login", a.LoginPage)
	if limiter != nil {
		e.POST("/login", a.Login, limiter)
	} else {
		e.POST("/login", a.Login)
	}
	e.POST("/logout", a.Logout)
}
