package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/handler"
)

// RegisterDashboard registers the pages under /dashboard. Access control is
// done by the global Authorized gate; cache (when set) serves repeated GETs.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, inv *handler.InvoiceHandler, cust *handler.CustomerHandler, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	g := e.Group("/dashboard", mw...)

	g.GET("", d.Overview)
	g.GET("/revenue", d.RevenueChart)
	g.GET("/latest-invoices", d.LatestInvoices)
	g.GET("/cards", d.Cards)

	g.GET("/invoices", inv.List)
	g.GET("/invoices/create", inv.CreateForm)
	g.POST("/invoices", inv.Create)
	g.GET("/invoices/:id/edit", inv.EditForm)
	g.POST("/invoices/:id", inv.Update)
	g.PUT("/invoices/:id", inv.Update)
	g.POST("/invoices/:id/delete", inv.Delete)
	g.DELETE("/invoices/:id", inv.Delete)

	g.GET("/customers", cust.List)
}
