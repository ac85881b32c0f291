// Package queue defines the invoice event payload and the background
// consumer that records those events.
package queue

// Invoice event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// InvoiceEvent is published after an invoice mutation has been committed.
// It carries enough for a consumer to log or audit the change without
// reading the database.
type InvoiceEvent struct {
	Action      string `json:"action"`
	InvoiceID   string `json:"invoice_id"`
	CustomerID  string `json:"customer_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Status      string `json:"status,omitempty"`
	Date        string `json:"date,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
