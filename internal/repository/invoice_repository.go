package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// InvoiceRepo encapsulates all queries touching the invoices table,
// including the dashboard aggregates derived from it.
type InvoiceRepo struct {
	db *database.DB
}

func NewInvoiceRepo(db *database.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func scanInt64(s database.Scanner) (int64, error) {
	var n int64
	err := s.Scan(&n)
	return n, err
}

// FetchLatestInvoices returns the five most recent invoices with their
// customer, amounts formatted for display.
func (r *InvoiceRepo) FetchLatestInvoices(ctx context.Context) ([]model.LatestInvoice, error) {
	const q = `SELECT invoices.id, invoices.amount, customers.name, customers.image_url, customers.email
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		ORDER BY invoices.date DESC, invoices.id
		LIMIT 5`
	rows, err := database.Query(ctx, r.db, func(s database.Scanner) (model.LatestInvoice, error) {
		var (
			li    model.LatestInvoice
			cents int64
		)
		if err := s.Scan(&li.ID, &cents, &li.Name, &li.ImageURL, &li.Email); err != nil {
			return li, err
		}
		li.Amount = utils.FormatCurrency(cents)
		return li, nil
	}, q)
	if err != nil {
		return nil, fetchErr("failed to fetch the latest invoices", err)
	}
	return rows, nil
}

// FetchCardData computes the dashboard counters. The three aggregate queries
// run concurrently, each on its own pooled connection.
func (r *InvoiceRepo) FetchCardData(ctx context.Context) (model.CardData, error) {
	var (
		invoices, customers int64
		paid, pending       int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := database.QueryOne(gctx, r.db, scanInt64, "SELECT COUNT(*) FROM invoices")
		invoices = n
		return err
	})
	g.Go(func() error {
		n, err := database.QueryOne(gctx, r.db, scanInt64, "SELECT COUNT(*) FROM customers")
		customers = n
		return err
	})
	g.Go(func() error {
		type sums struct{ paid, pending int64 }
		s, err := database.QueryOne(gctx, r.db, func(s database.Scanner) (sums, error) {
			var v sums
			err := s.Scan(&v.paid, &v.pending)
			return v, err
		}, `SELECT
				COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0) AS paid,
				COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0) AS pending
			FROM invoices`)
		paid, pending = s.paid, s.pending
		return err
	})
	if err := g.Wait(); err != nil {
		return model.CardData{}, fetchErr("failed to fetch card data", err)
	}
	return model.CardData{
		NumberOfCustomers:    customers,
		NumberOfInvoices:     invoices,
		TotalPaidInvoices:    utils.FormatCurrency(paid),
		TotalPendingInvoices: utils.FormatCurrency(pending),
	}, nil
}

// invoiceFilter matches query against customer name/email and the invoice
// amount, date and status. An empty query adds no predicate.
func (r *InvoiceRepo) invoiceFilter(query string) (string, []any) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", nil
	}
	d := r.db.Dialect()
	cond, args := d.MatchAny(likePattern(q),
		"customers.name",
		"customers.email",
		d.Text("invoices.amount"),
		d.Text("invoices.date"),
		"invoices.status",
	)
	return "WHERE " + cond, args
}

// FetchFilteredInvoices returns one page (ItemsPerPage rows) of the invoices
// table, newest first.
func (r *InvoiceRepo) FetchFilteredInvoices(ctx context.Context, query string, page int) ([]model.InvoiceRow, error) {
	where, args := r.invoiceFilter(query)
	sqlText := `SELECT
			invoices.id,
			invoices.customer_id,
			invoices.amount,
			invoices.date,
			invoices.status,
			customers.name,
			customers.email,
			customers.image_url
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		` + where + `
		ORDER BY invoices.date DESC, invoices.id
		LIMIT ? OFFSET ?`
	args = append(args, ItemsPerPage, Offset(page))

	rows, err := database.Query(ctx, r.db, func(s database.Scanner) (model.InvoiceRow, error) {
		var row model.InvoiceRow
		err := s.Scan(&row.ID, &row.CustomerID, &row.Amount, &row.Date, &row.Status, &row.Name, &row.Email, &row.ImageURL)
		return row, err
	}, sqlText, args...)
	if err != nil {
		return nil, fetchErr("failed to fetch invoices", err)
	}
	return rows, nil
}

// FetchInvoicesPages returns the number of pages FetchFilteredInvoices can
// serve for query.
func (r *InvoiceRepo) FetchInvoicesPages(ctx context.Context, query string) (int, error) {
	where, args := r.invoiceFilter(query)
	sqlText := `SELECT COUNT(*)
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		` + where
	count, err := database.QueryOne(ctx, r.db, scanInt64, sqlText, args...)
	if err != nil {
		return 0, fetchErr("failed to fetch total number of invoices", err)
	}
	return TotalPages(count), nil
}

// FetchInvoiceByID loads an invoice for the edit form, amount in dollars.
func (r *InvoiceRepo) FetchInvoiceByID(ctx context.Context, id uuid.UUID) (*model.InvoiceForm, error) {
	const q = `SELECT invoices.id, invoices.customer_id, invoices.amount, invoices.status
		FROM invoices
		WHERE invoices.id = ?`
	inv, err := database.QueryOne(ctx, r.db, func(s database.Scanner) (model.InvoiceForm, error) {
		var (
			f     model.InvoiceForm
			cents int64
		)
		if err := s.Scan(&f.ID, &f.CustomerID, &cents, &f.Status); err != nil {
			return f, err
		}
		f.Amount = utils.CentsToDollars(cents)
		return f, nil
	}, q, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fetchErr("failed to fetch invoice", err)
	}
	return &inv, nil
}

// GetInvoice returns the stored invoice row as is (amount in cents).
func (r *InvoiceRepo) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, err := database.QueryOne(ctx, r.db, func(s database.Scanner) (model.Invoice, error) {
		var i model.Invoice
		err := s.Scan(&i.ID, &i.CustomerID, &i.Amount, &i.Status, &i.Date)
		return i, err
	}, "SELECT id, customer_id, amount, status, date FROM invoices WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fetchErr("failed to fetch invoice", err)
	}
	return &inv, nil
}

// CreateInvoice inserts inv. The caller assigns ID and Date.
func (r *InvoiceRepo) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	_, err := database.Exec(ctx, r.db,
		"INSERT INTO invoices (id, customer_id, amount, status, date) VALUES (?, ?, ?, ?, ?)",
		inv.ID, inv.CustomerID, inv.Amount, inv.Status, inv.Date)
	if err != nil {
		return fetchErr("failed to create invoice", err)
	}
	return nil
}

// UpdateInvoice changes customer, amount and status of invoice id. It
// returns ErrInvoiceNotFound when no row matched.
func (r *InvoiceRepo) UpdateInvoice(ctx context.Context, id, customerID uuid.UUID, amount int64, status model.InvoiceStatus) error {
	n, err := database.Exec(ctx, r.db,
		"UPDATE invoices SET customer_id = ?, amount = ?, status = ? WHERE id = ?",
		customerID, amount, status, id)
	if err != nil {
		return fetchErr("failed to update invoice", err)
	}
	if n == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// DeleteInvoice removes invoice id. Deleting an id that does not exist is
// not an error.
func (r *InvoiceRepo) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := database.Exec(ctx, r.db, "DELETE FROM invoices WHERE id = ?", id); err != nil {
		return fetchErr("failed to delete invoice", err)
	}
	return nil
}
