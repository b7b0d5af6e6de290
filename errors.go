package strata

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failures.
var (
	// ErrLockConflict is matched by every LockConflictError. A versioned write
	// affected no row, or the row read back carried an unexpected version.
	ErrLockConflict = errors.New("strata: optimistic lock conflict")

	// ErrConfig is matched by every ConfigError.
	ErrConfig = errors.New("strata: invalid configuration")

	// ErrUnknownStrategy is returned when an execution strategy is not one of
	// NonQuery, Reader, Scalar or Auto.
	ErrUnknownStrategy = errors.New("strata: unknown execution strategy")

	// ErrUnsupportedKind is returned when a version column is declared with a
	// kind that cannot be defaulted or incremented.
	ErrUnsupportedKind = errors.New("strata: unsupported version kind")
)

// LockConflictError is returned when an optimistic lock check fails.
// It carries both renderings of the statement that lost the race.
type LockConflictError struct {
	Source   string // Identifies the caller or operation that issued the write.
	Entity   string // Entity type name.
	SQL      string // Parameterized statement.
	DebugSQL string // Statement with literal values substituted.
}

// Error returns the error string.
func (e *LockConflictError) Error() string {
	var sb strings.Builder
	sb.WriteString("strata: optimistic lock conflict")
	if e.Entity != "" {
		fmt.Fprintf(&sb, " on %s", e.Entity)
	}
	if e.Source != "" {
		fmt.Fprintf(&sb, " (source: %s)", e.Source)
	}
	if e.DebugSQL != "" {
		fmt.Fprintf(&sb, ": %s", e.DebugSQL)
	}
	return sb.String()
}

// Is reports whether the target error matches ErrLockConflict.
func (e *LockConflictError) Is(err error) bool {
	return err == ErrLockConflict
}

// NewLockConflictError returns a new LockConflictError.
func NewLockConflictError(source, entity, sql, debugSQL string) *LockConflictError {
	return &LockConflictError{Source: source, Entity: entity, SQL: sql, DebugSQL: debugSQL}
}

// IsLockConflict returns true if the error is a LockConflictError.
func IsLockConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *LockConflictError
	return errors.As(err, &e) || errors.Is(err, ErrLockConflict)
}

// ConfigError represents an unrecoverable programming or configuration
// error, such as an unknown execution strategy.
type ConfigError struct {
	Name string // Offending option, column or strategy.
	Msg  string
	Err  error // Optional underlying sentinel.
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("strata: invalid configuration for %q: %s", e.Name, e.Msg)
	}
	return fmt.Sprintf("strata: invalid configuration: %s", e.Msg)
}

// Is reports whether the target error matches ErrConfig.
func (e *ConfigError) Is(err error) bool {
	return err == ErrConfig
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError returns a new ConfigError.
func NewConfigError(name, format string, args ...any) *ConfigError {
	return &ConfigError{Name: name, Msg: fmt.Sprintf(format, args...)}
}

// WrapConfigError returns a new ConfigError wrapping a sentinel.
func WrapConfigError(name string, err error, format string, args ...any) *ConfigError {
	return &ConfigError{Name: name, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("strata: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// MutationError wraps a driver error with the entity and command it
// occurred in. The driver error stays reachable through errors.Is/As.
type MutationError struct {
	Entity string // Entity type being mutated
	Op     string // Operation (e.g., "insert", "update", "delete")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("strata: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
