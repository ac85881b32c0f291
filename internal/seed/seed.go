// Package seed creates the dashboard schema and loads the placeholder data.
// Running it again is a no-op: tables are created only if missing and every
// insert is keyed so existing rows are left untouched.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

func schema(d database.Dialect) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password TEXT NOT NULL
		)`, d.UUIDType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS customers (
			id %s PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			image_url VARCHAR(255) NOT NULL
		)`, d.UUIDType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS invoices (
			id %[1]s PRIMARY KEY,
			customer_id %[1]s NOT NULL,
			amount INT NOT NULL,
			status VARCHAR(255) NOT NULL,
			date %[2]s NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES customers (id)
		)`, d.UUIDType, d.DateType),
		`CREATE TABLE IF NOT EXISTS revenue (
			month VARCHAR(4) NOT NULL UNIQUE,
			revenue INT NOT NULL
		)`,
	}
}

type execFunc func(ctx context.Context, query string, args ...any) (int64, error)

func createSchema(ctx context.Context, d database.Dialect, exec execFunc) error {
	for _, stmt := range schema(d) {
		if _, err := exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run seeds db inside a single transaction; any failure rolls the whole
// run back. Where DDL cannot be rolled back (MySQL) the tables are created
// first, outside the transaction, and only the data load is atomic.
// bcryptCost 0 selects bcrypt.DefaultCost.
func Run(ctx context.Context, db *database.DB, bcryptCost int) error {
	hash, err := utils.HashPassword(PlaceholderUser.Password, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash placeholder password: %w", err)
	}

	if !db.Dialect().TransactionalDDL {
		err := createSchema(ctx, db.Dialect(), func(ctx context.Context, q string, args ...any) (int64, error) {
			return database.Exec(ctx, db, q, args...)
		})
		if err != nil {
			log.Printf("seed: create schema: %v", err)
			return err
		}
	}

	err = db.WithTx(ctx, func(tx *database.Tx) error {
		d := tx.Dialect()
		if d.TransactionalDDL {
			if err := createSchema(ctx, d, tx.Exec); err != nil {
				return err
			}
		}

		insertUser := d.InsertIgnore("users", []string{"id", "name", "email", "password"}, "id")
		if _, err := tx.Exec(ctx, insertUser, PlaceholderUser.ID, PlaceholderUser.Name, PlaceholderUser.Email, hash); err != nil {
			return err
		}

		insertCustomer := d.InsertIgnore("customers", []string{"id", "name", "email", "image_url"}, "id")
		for _, c := range Customers {
			if _, err := tx.Exec(ctx, insertCustomer, c.ID, c.Name, c.Email, c.ImageURL); err != nil {
				return err
			}
		}

		insertInvoice := d.InsertIgnore("invoices", []string{"id", "customer_id", "amount", "status", "date"}, "id")
		for _, inv := range Invoices() {
			if _, err := tx.Exec(ctx, insertInvoice, inv.ID, inv.CustomerID, inv.Amount, inv.Status, inv.Date); err != nil {
				return err
			}
		}

		insertRevenue := d.InsertIgnore("revenue", []string{"month", "revenue"}, "month")
		for _, r := range Revenue {
			if _, err := tx.Exec(ctx, insertRevenue, r.Month, r.Revenue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("seed: %v", err)
		return err
	}
	log.Printf("seed: database seeded (%s)", db.Dialect().Name)
	return nil
}
