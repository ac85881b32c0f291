// Package repository defines the fixed catalog of queries the dashboard runs
// and the error types shared across them. Every storage failure is reported
// as a *FetchError naming what could not be fetched (or written), so higher
// layers can log the cause and show a generic message.
package repository

import (
	"errors"

	"github.com/iliyamo/invoice-dashboard/internal/database"
)

// FetchError wraps a failed query with a short description of the data
// involved, e.g. "failed to fetch revenue data".
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return e.Op }
func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(op string, err error) error {
	return &FetchError{Op: op, Err: err}
}

// ErrInvoiceNotFound is returned when an invoice id matches no row.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrCustomerNotFound is returned when a customer id matches no row.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrUserNotFound is returned when no user has the given email.
var ErrUserNotFound = errors.New("user not found")

// IsStorageError reports whether err came from the store rather than from a
// not-found lookup.
func IsStorageError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) || errors.Is(err, database.ErrQueryFailed)
}
