package database

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Dialect renders the handful of constructs that differ between the
// supported stores. Queries are written with '?' placeholders and rebound
// for the active dialect right before execution.
type Dialect struct {
	Name     string
	UUIDType string
	DateType string
	// TransactionalDDL is false where CREATE TABLE commits the open
	// transaction (MySQL).
	TransactionalDDL bool
}

// DialectFor resolves a driver name (with a few common aliases).
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pgx":
		return Dialect{Name: DriverPostgres, UUIDType: "UUID", DateType: "DATE", TransactionalDDL: true}, nil
	case "mysql", "mariadb":
		return Dialect{Name: DriverMySQL, UUIDType: "CHAR(36)", DateType: "DATE"}, nil
	case "sqlite", "sqlite3":
		return Dialect{Name: DriverSQLite, UUIDType: "TEXT", DateType: "DATE", TransactionalDDL: true}, nil
	}
	return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// Rebind rewrites '?' placeholders to $1..$n on Postgres. Question marks
// inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d.Name != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// ILike renders a case-insensitive substring predicate "expr matches ?".
func (d Dialect) ILike(expr string) string {
	switch d.Name {
	case DriverPostgres:
		return expr + " ILIKE ?"
	case DriverMySQL:
		return "LOWER(" + expr + ") LIKE LOWER(?)"
	default:
		// SQLite LIKE is case-insensitive for ASCII.
		return expr + " LIKE ?"
	}
}

// Text casts expr to text so numbers and dates can be matched with ILike.
func (d Dialect) Text(expr string) string {
	switch d.Name {
	case DriverPostgres:
		return expr + "::text"
	case DriverMySQL:
		return "CAST(" + expr + " AS CHAR)"
	default:
		return "CAST(" + expr + " AS TEXT)"
	}
}

// InsertIgnore renders an INSERT that is a no-op when conflictKey already
// exists.
func (d Dialect) InsertIgnore(table string, columns []string, conflictKey string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")
	if d.Name == DriverMySQL {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", table, cols, marks)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING", table, cols, marks, conflictKey)
}

// MatchAny joins ILike predicates over exprs with OR and returns the
// argument list that binds pattern once per predicate.
func (d Dialect) MatchAny(pattern string, exprs ...string) (string, []any) {
	preds := make([]string, len(exprs))
	args := make([]any, len(exprs))
	for i, e := range exprs {
		preds[i] = d.ILike(e)
		args[i] = pattern
	}
	return "(" + strings.Join(preds, " OR ") + ")", args
}
