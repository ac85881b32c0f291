package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// CustomerRepo encapsulates the read-only customer queries.
type CustomerRepo struct {
	db *database.DB
}

func NewCustomerRepo(db *database.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// FetchCustomers lists every customer (id and name) ordered by name, for the
// invoice form select.
func (r *CustomerRepo) FetchCustomers(ctx context.Context) ([]model.CustomerField, error) {
	rows, err := database.Query(ctx, r.db, func(s database.Scanner) (model.CustomerField, error) {
		var c model.CustomerField
		err := s.Scan(&c.ID, &c.Name)
		return c, err
	}, "SELECT id, name FROM customers ORDER BY name ASC")
	if err != nil {
		return nil, fetchErr("failed to fetch all customers", err)
	}
	return rows, nil
}

// FetchCustomerByID returns one customer or ErrCustomerNotFound.
func (r *CustomerRepo) FetchCustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := database.QueryOne(ctx, r.db, func(s database.Scanner) (model.Customer, error) {
		var c model.Customer
		err := s.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL)
		return c, err
	}, "SELECT id, name, email, image_url FROM customers WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fetchErr("failed to fetch customer", err)
	}
	return &c, nil
}

// FetchFilteredCustomers returns the customers table: every customer whose
// name or email contains query (case-insensitive), with invoice count and
// pending/paid totals. An empty query returns every customer.
func (r *CustomerRepo) FetchFilteredCustomers(ctx context.Context, query string) ([]model.CustomerRow, error) {
	d := r.db.Dialect()
	where := ""
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		var cond string
		cond, args = d.MatchAny(likePattern(q), "customers.name", "customers.email")
		where = "WHERE " + cond
	}
	sqlText := `SELECT
			customers.id,
			customers.name,
			customers.email,
			customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0) AS total_paid
		FROM customers
		LEFT JOIN invoices ON customers.id = invoices.customer_id
		` + where + `
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC`

	rows, err := database.Query(ctx, r.db, func(s database.Scanner) (model.CustomerRow, error) {
		var c model.CustomerRow
		if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.TotalInvoices, &c.TotalPending, &c.TotalPaid); err != nil {
			return c, err
		}
		c.TotalPendingFormatted = utils.FormatCurrency(c.TotalPending)
		c.TotalPaidFormatted = utils.FormatCurrency(c.TotalPaid)
		return c, nil
	}, sqlText, args...)
	if err != nil {
		return nil, fetchErr("failed to fetch customer table", err)
	}
	return rows, nil
}
