package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/repository"
)

type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewCustomerHandler(customers *repository.CustomerRepo) *CustomerHandler {
	return &CustomerHandler{Customers: customers}
}

// List returns the customers table filtered by ?query=.
func (h *CustomerHandler) List(c echo.Context) error {
	query := c.QueryParam("query")
	ctx, cancel := dbCtx(c)
	defer cancel()
	rows, err := h.Customers.FetchFilteredCustomers(ctx, query)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"query": query, "customers": rows})
}
