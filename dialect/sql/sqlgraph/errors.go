// Package sqlgraph classifies errors returned by the supported database
// drivers. The engine does not retry or translate driver errors; these
// helpers let callers tell a constraint violation apart from a fault.
package sqlgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintError wraps a driver error caused by a constraint violation.
type ConstraintError struct {
	Kind string // "unique", "foreign key" or "check"
	Err  error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("strata: %s constraint failed: %v", e.Kind, e.Err)
}

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error { return e.Err }

// Classify wraps err in a ConstraintError when it is a constraint
// violation and returns it unchanged otherwise.
func Classify(err error) error {
	var kind string
	switch {
	case err == nil:
		return nil
	case IsUniqueConstraintError(err):
		kind = "unique"
	case IsForeignKeyConstraintError(err):
		kind = "foreign key"
	case IsCheckConstraintError(err):
		kind = "check"
	default:
		return err
	}
	return &ConstraintError{Kind: kind, Err: err}
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// violation describes how each driver reports one kind of violation.
type violation struct {
	pg       pq.ErrorCode
	mysql    []uint16
	sqlite   []int
	messages []string // fallback for drivers without typed errors (Oracle, SQL Server, DB2)
}

var (
	unique = violation{
		pg:     pgUniqueViolation,
		mysql:  []uint16{mysqlDuplicateEntry},
		sqlite: []int{sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY},
		messages: []string{
			"violates unique constraint",
			"UNIQUE constraint failed",
			"ORA-00001",
			"Violation of UNIQUE KEY constraint",
			"Violation of PRIMARY KEY constraint",
			"SQLSTATE=23505",
		},
	}
	foreignKey = violation{
		pg:     pgForeignKeyViolation,
		mysql:  []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		sqlite: []int{sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY},
		messages: []string{
			"violates foreign key constraint",
			"FOREIGN KEY constraint failed",
			"ORA-02291",
			"ORA-02292",
			"conflicted with the FOREIGN KEY constraint",
			"SQLSTATE=23503",
		},
	}
	check = violation{
		pg:     pgCheckViolation,
		mysql:  []uint16{mysqlCheckConstraintViolate},
		sqlite: []int{sqlite3.SQLITE_CONSTRAINT_CHECK},
		messages: []string{
			"violates check constraint",
			"CHECK constraint failed",
			"ORA-02290",
			"conflicted with the CHECK constraint",
			"SQLSTATE=23513",
		},
	}
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool { return unique.match(err) }

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool { return foreignKey.match(err) }

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool { return check.match(err) }

func (v violation) match(err error) bool {
	if err == nil {
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == v.pg
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return contains(v.mysql, me.Number)
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return contains(v.sqlite, se.Code())
	}
	msg := err.Error()
	for _, m := range v.messages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
