package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// DashboardHandler serves the overview page and its widgets.
type DashboardHandler struct {
	Revenue  *repository.RevenueRepo
	Invoices *repository.InvoiceRepo
}

func NewDashboardHandler(revenue *repository.RevenueRepo, invoices *repository.InvoiceRepo) *DashboardHandler {
	return &DashboardHandler{Revenue: revenue, Invoices: invoices}
}

type revenueChart struct {
	Revenue []model.Revenue `json:"revenue"`
	YAxis   []string        `json:"y_axis_labels"`
	TopY    int64           `json:"top_label"`
}

func newRevenueChart(rows []model.Revenue) revenueChart {
	labels, top := utils.GenerateYAxis(rows)
	return revenueChart{Revenue: rows, YAxis: labels, TopY: top}
}

// Overview loads the revenue chart, latest invoices and cards concurrently.
func (h *DashboardHandler) Overview(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		revenue []model.Revenue
		latest  []model.LatestInvoice
		cards   model.CardData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		revenue, err = h.Revenue.FetchRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		latest, err = h.Invoices.FetchLatestInvoices(gctx)
		return err
	})
	g.Go(func() (err error) {
		cards, err = h.Invoices.FetchCardData(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"revenue_chart":   newRevenueChart(revenue),
		"latest_invoices": latest,
		"cards":           cards,
	})
}

func (h *DashboardHandler) RevenueChart(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	rows, err := h.Revenue.FetchRevenue(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, newRevenueChart(rows))
}

func (h *DashboardHandler) LatestInvoices(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	rows, err := h.Invoices.FetchLatestInvoices(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"latest_invoices": rows})
}

func (h *DashboardHandler) Cards(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	cards, err := h.Invoices.FetchCardData(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}
