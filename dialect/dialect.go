package dialect

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
)

// Dialect names for the supported databases.
const (
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLite    = "sqlite"
	Oracle    = "oracle"
	SQLServer = "sqlserver"
	DB2       = "db2"
)

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for statement execution.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}

// Returning describes how a dialect hands modified rows back to the caller.
type Returning uint8

const (
	// ReturningNone means modified values can only be re-read or obtained
	// through LastInsertId.
	ReturningNone Returning = iota
	// ReturningClause appends RETURNING to INSERT, UPDATE and DELETE.
	ReturningClause
	// ReturningOutput inserts OUTPUT INSERTED.<col> before VALUES or WHERE.
	ReturningOutput
	// ReturningFinalTable wraps the statement in SELECT ... FROM FINAL TABLE (...).
	ReturningFinalTable
)

// Dialect describes the capabilities of one database and generates the
// fragments of SQL that differ between databases.
type Dialect interface {
	// Name returns the dialect name, one of the constants above.
	Name() string
	// Placeholder returns the placeholder of the n-th (1-based) bound parameter.
	Placeholder(n int) string
	// NumberedPlaceholders reports whether a placeholder may be repeated to
	// reference the same argument. Positional dialects ("?") return false.
	NumberedPlaceholders() bool
	// Quote quotes an identifier. Dotted names are quoted per part.
	Quote(ident string) string
	// SupportsSequence reports whether the database has a native
	// next-value primitive for sequences.
	SupportsSequence() bool
	// SupportsIdentity reports whether generated keys are retrieved after an
	// insert through a rowid-style LastInsertId.
	SupportsIdentity() bool
	// SupportsFinalTable reports whether a data-change statement can be
	// selected from (DB2 FINAL TABLE).
	SupportsFinalTable() bool
	// Returning reports how modified rows are handed back.
	Returning() Returning
	// SequenceNextSQL returns a query selecting the next value of seq.
	SequenceNextSQL(seq string) string
	// PaddedSequenceNextSQL returns a query selecting the next value of seq,
	// left padded with zeros to width digits and prefixed by prefix.
	PaddedSequenceNextSQL(seq, prefix string, width int) string
	// BoolLiteral returns the literal SQL for b.
	BoolLiteral(b bool) string
	// Literal renders v as a SQL literal for debug output.
	Literal(v any) string
}

// Open returns the dialect registered under name. Driver names that start
// with a dialect name (e.g. "sqlite3", "postgres-otel") resolve to it.
func Open(name string) (Dialect, error) {
	if d, ok := variants[name]; ok {
		return d, nil
	}
	if alias, ok := aliases[name]; ok {
		return variants[alias], nil
	}
	for _, n := range []string{MySQL, SQLite, Postgres, Oracle, SQLServer, DB2} {
		if strings.HasPrefix(name, n) {
			return variants[n], nil
		}
	}
	return nil, fmt.Errorf("dialect: unsupported dialect %q", name)
}

// MustOpen is like Open but panics on unknown names.
func MustOpen(name string) Dialect {
	d, err := Open(name)
	if err != nil {
		panic(err)
	}
	return d
}

var aliases = map[string]string{
	"pgx":       Postgres,
	"pq":        Postgres,
	"mssql":     SQLServer,
	"go_ibm_db": DB2,
	"godror":    Oracle,
	"ora":       Oracle,
}
