// Package database owns the connection pool and the generic query runner used
// by every repository. A DB is constructed explicitly with Open and handed to
// the repositories; nothing in this package keeps process-wide state.
package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Options describes how to reach the store and how large the pool may grow.
type Options struct {
	Driver          string // postgres | mysql | sqlite
	DSN             string
	InsecureTLS     bool // encrypt but skip certificate verification (hosted Postgres providers)
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DB is the connection provider: a bounded pool plus the SQL dialect of the
// store behind it.
type DB struct {
	pool    *sql.DB
	dialect Dialect
}

// ErrUnknownDriver is returned by Open for an unsupported Options.Driver.
var ErrUnknownDriver = errors.New("unknown database driver")

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	switch dialect.Name {
	case DriverPostgres:
		cfg, err := pgx.ParseConfig(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		if opts.InsecureTLS {
			relaxPostgresTLS(cfg)
		}
		pool = stdlib.OpenDB(*cfg)
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// parseTime -> DATE -> time.Time | clientFoundRows -> UPDATE reports matched rows
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		cfg.Loc = time.UTC
		if opts.InsecureTLS {
			cfg.TLS = skipVerify(cfg.TLS)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		pool = sql.OpenDB(connector)
	case DriverSQLite:
		pool, err = sql.Open("sqlite3", sqliteDSN(opts.DSN))
		if err != nil {
			return nil, err
		}
	}

	// Pool settings
	if opts.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	// Ping with timeout
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return &DB{pool: pool, dialect: dialect}, nil
}

// skipVerify returns a copy of c that no longer verifies the server
// certificate. ServerName (SNI) is kept; a nil config means plaintext and
// stays nil.
func skipVerify(c *tls.Config) *tls.Config {
	if c == nil {
		return nil
	}
	c = c.Clone()
	c.InsecureSkipVerify = true
	return c
}

// relaxPostgresTLS disables certificate verification on the primary and on
// every fallback pgx derived from sslmode.
func relaxPostgresTLS(cfg *pgx.ConnConfig) {
	cfg.TLSConfig = skipVerify(cfg.TLSConfig)
	for _, fb := range cfg.Fallbacks {
		fb.TLSConfig = skipVerify(fb.TLSConfig)
	}
}

// sqliteDSN turns on foreign keys and a busy timeout so concurrent readers in
// tests wait for the writer instead of failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on&_busy_timeout=5000"
	}
	return dsn + "?_foreign_keys=on&_busy_timeout=5000"
}

// Dialect reports the SQL flavour of the underlying store.
func (db *DB) Dialect() Dialect { return db.dialect }

// Ping checks that a connection to the store can be established.
func (db *DB) Ping(ctx context.Context) error { return db.pool.PingContext(ctx) }

// Stats exposes pool statistics.
func (db *DB) Stats() sql.DBStats { return db.pool.Stats() }

// Close releases every pooled connection.
func (db *DB) Close() error {
	if db == nil || db.pool == nil {
		return nil
	}
	return db.pool.Close()
}
