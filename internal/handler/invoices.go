package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/service"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// InvoiceHandler serves the invoices table and its forms.
type InvoiceHandler struct {
	Invoices  *repository.InvoiceRepo
	Customers *repository.CustomerRepo
	Actions   *service.InvoiceActions
}

func NewInvoiceHandler(invoices *repository.InvoiceRepo, customers *repository.CustomerRepo, actions *service.InvoiceActions) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Customers: customers, Actions: actions}
}

type invoiceRowView struct {
	model.InvoiceRow
	AmountFormatted string `json:"amount_formatted"`
}

// List returns one page of invoices matching ?query= with pagination labels.
func (h *InvoiceHandler) List(c echo.Context) error {
	query := c.QueryParam("query")
	page := queryPage(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	totalPages, err := h.Invoices.FetchInvoicesPages(ctx, query)
	if err != nil {
		return fetchFailed(c, err)
	}
	rows, err := h.Invoices.FetchFilteredInvoices(ctx, query, page)
	if err != nil {
		return fetchFailed(c, err)
	}

	views := make([]invoiceRowView, len(rows))
	for i, r := range rows {
		views[i] = invoiceRowView{InvoiceRow: r, AmountFormatted: utils.FormatCurrency(r.Amount)}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"query":        query,
		"current_page": page,
		"total_pages":  totalPages,
		"pagination":   utils.GeneratePagination(page, totalPages),
		"invoices":     views,
	})
}

// CreateForm returns the customers to choose from.
func (h *InvoiceHandler) CreateForm(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	customers, err := h.Customers.FetchCustomers(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// EditForm returns the invoice (amount in dollars) and the customers.
func (h *InvoiceHandler) EditForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	inv, err := h.Invoices.FetchInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return fetchFailed(c, err)
	}
	customers, err := h.Customers.FetchCustomers(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invoice": inv, "customers": customers})
}

func (h *InvoiceHandler) bindInput(c echo.Context) (service.InvoiceInput, error) {
	var in service.InvoiceInput
	err := c.Bind(&in)
	return in, err
}

func (h *InvoiceHandler) Create(c echo.Context) error {
	in, err := h.bindInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	return actionResponse(c, h.Actions.Create(ctx, in))
}

func (h *InvoiceHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}
	in, err := h.bindInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	return actionResponse(c, h.Actions.Update(ctx, id, in))
}

func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	return actionResponse(c, h.Actions.Delete(ctx, id))
}
