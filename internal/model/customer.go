package model

import "github.com/google/uuid"

// Customer mirrors a row of the `customers` table. Customers are read-only
// for the dashboard; they are created by the seeder.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	ImageURL string    `json:"image_url"`
}

// CustomerField is the id/name pair used to populate invoice form selects.
type CustomerField struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CustomerRow is one line of the customers table with per-customer invoice
// totals. Totals are in cents; the *Formatted fields carry display strings.
type CustomerRow struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	ImageURL              string    `json:"image_url"`
	TotalInvoices         int64     `json:"total_invoices"`
	TotalPending          int64     `json:"total_pending"`
	TotalPaid             int64     `json:"total_paid"`
	TotalPendingFormatted string    `json:"total_pending_formatted"`
	TotalPaidFormatted    string    `json:"total_paid_formatted"`
}
