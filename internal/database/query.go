package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// ErrQueryFailed wraps every driver failure surfaced by the executor.
var ErrQueryFailed = errors.New("query failed")

// ErrNoRows is returned by QueryOne when the query matched nothing.
var ErrNoRows = errors.New("no rows in result set")

// Scanner is the part of *sql.Row / *sql.Rows a row mapper needs.
type Scanner interface {
	Scan(dest ...any) error
}

// RowScanner decodes one result row into T. Mappers should scan into typed
// destinations so malformed rows fail here rather than further up.
type RowScanner[T any] func(Scanner) (T, error)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func failed(query string, err error) error {
	log.Printf("database: query failed: %v (query=%q)", err, compact(query))
	return fmt.Errorf("%w: %w", ErrQueryFailed, err)
}

// Query acquires one pooled connection, runs query with positional args and
// maps each row through scan. The connection is released on every path.
func Query[T any](ctx context.Context, db *DB, scan RowScanner[T], query string, args ...any) ([]T, error) {
	conn, err := db.pool.Conn(ctx)
	if err != nil {
		return nil, failed(query, err)
	}
	defer conn.Close()
	return queryOn(ctx, conn, db.dialect, scan, query, args...)
}

// QueryOne is Query for lookups that expect a single row. An empty result
// yields ErrNoRows (not wrapped in ErrQueryFailed).
func QueryOne[T any](ctx context.Context, db *DB, scan RowScanner[T], query string, args ...any) (T, error) {
	var zero T
	rows, err := Query(ctx, db, scan, query, args...)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNoRows
	}
	return rows[0], nil
}

// Exec runs a statement on its own pooled connection and returns the number
// of affected rows.
func Exec(ctx context.Context, db *DB, query string, args ...any) (int64, error) {
	conn, err := db.pool.Conn(ctx)
	if err != nil {
		return 0, failed(query, err)
	}
	defer conn.Close()
	return execOn(ctx, conn, db.dialect, query, args...)
}

func queryOn[T any](ctx context.Context, q querier, d Dialect, scan RowScanner[T], query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, failed(query, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, failed(query, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, failed(query, err)
	}
	return out, nil
}

func execOn(ctx context.Context, q querier, d Dialect, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, failed(query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report it; the statement itself succeeded
		return -1, nil
	}
	return n, nil
}

// Tx is a transaction bound to one connection for its whole lifetime.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// Dialect reports the SQL flavour of the transaction's store.
func (t *Tx) Dialect() Dialect { return t.dialect }

// Exec runs a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execOn(ctx, t.tx, t.dialect, query, args...)
}

// QueryTx runs a query inside tx.
func QueryTx[T any](ctx context.Context, t *Tx, scan RowScanner[T], query string, args ...any) ([]T, error) {
	return queryOn(ctx, t.tx, t.dialect, scan, query, args...)
}

// WithTx runs fn in a transaction. Any error (or panic) from fn rolls the
// transaction back; otherwise it is committed.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.pool.BeginTx(ctx, nil)
	if err != nil {
		return failed("BEGIN", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("database: rollback failed: %v", rbErr)
			}
			return
		}
		if cErr := sqlTx.Commit(); cErr != nil {
			err = failed("COMMIT", cErr)
		}
	}()
	return fn(&Tx{tx: sqlTx, dialect: db.dialect})
}

// compact squeezes whitespace so multi-line SQL stays on one log line.
func compact(query string) string {
	out := make([]byte, 0, len(query))
	space := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			if !space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = true
			continue
		}
		space = false
		out = append(out, c)
	}
	return string(out)
}
