package engine

import (
	"fmt"
	"time"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// Command is the intent of an operation.
type Command uint8

// Supported commands.
const (
	OpInsert Command = iota + 1
	OpUpdate
	OpDelete
	OpSelect
)

var commandNames = [...]string{
	OpInsert: "insert",
	OpUpdate: "update",
	OpDelete: "delete",
	OpSelect: "select",
}

// String returns the lower-case name of the command.
func (c Command) String() string {
	if int(c) < len(commandNames) && commandNames[c] != "" {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", c)
}

// ParseCommand parses a command name as returned by String.
func ParseCommand(s string) (Command, bool) {
	for i, n := range commandNames {
		if n != "" && n == s {
			return Command(i), true
		}
	}
	return 0, false
}

// versioned reports whether the command takes part in optimistic locking.
func (c Command) versioned() bool { return c == OpUpdate || c == OpDelete }

// Strategy selects how a statement is executed and how its outcome is turned
// into an affected-row count.
type Strategy uint8

// Execution strategies.
const (
	// Auto picks NonQuery or Reader from the command and the dialect.
	Auto Strategy = iota
	// NonQuery executes the statement and reads the driver's affected count.
	NonQuery
	// Reader reads back a single returned row and copies it onto the entity.
	Reader
	// Scalar reads a single count value produced by the statement.
	Scalar
)

var strategyNames = [...]string{
	Auto:     "auto",
	NonQuery: "nonquery",
	Reader:   "reader",
	Scalar:   "scalar",
}

// String returns the lower-case name of the strategy.
func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy parses a strategy name as returned by String.
func ParseStrategy(s string) (Strategy, bool) {
	for i, n := range strategyNames {
		if n == s {
			return Strategy(i), true
		}
	}
	return 0, false
}

// Operation is the unit of work of a single call. It is created per call and
// discarded afterwards; the engine records the values it resolves while
// building the statement on it.
type Operation struct {
	// Entity is a pointer to the entity, or a *schema.Record.
	Entity any
	// Info describes the entity. It is resolved from the registry when nil.
	Info    *schema.TypeInfo
	Command Command
	// IgnoreVersion neither increments nor checks the version column.
	IgnoreVersion bool
	// SuppressLockError reports conflicts through the Outcome only.
	SuppressLockError bool
	// Force hard deletes entities that have a soft-delete column, and
	// includes soft-deleted rows in Select.
	Force bool
	// Timeout bounds the round-trips of the call. Zero selects the
	// engine's command timeout.
	Timeout  time.Duration
	Strategy Strategy
	// Source identifies the caller in lock conflicts and log records.
	Source string
	// Tx is a caller owned transaction, may be nil.
	Tx dialect.Tx
	// Predicates filter Select.
	Predicates []sql.Predicate

	dialect   dialect.Dialect
	expected  any                  // version snapshot taken before execution
	version   *schema.ColumnInfo   // set when the increment fragment is emitted
	identity  *schema.ColumnInfo   // identity omitted from INSERT, read back afterwards
	returning []*schema.ColumnInfo // columns the statement hands back
	initial   any                  // version value bound by INSERT
	deletedAt any                  // value written by a soft delete
}

// OpOption configures an Operation.
type OpOption func(*Operation)

// WithSource names the caller in lock conflicts and log records.
func WithSource(source string) OpOption {
	return func(op *Operation) { op.Source = source }
}

// IgnoreVersion disables version increment and conflict detection.
func IgnoreVersion() OpOption {
	return func(op *Operation) { op.IgnoreVersion = true }
}

// SuppressLockError reports lock conflicts as StatusConflict without an error.
func SuppressLockError() OpOption {
	return func(op *Operation) { op.SuppressLockError = true }
}

// ForceDelete removes rows of soft-deletable entities instead of flagging them.
func ForceDelete() OpOption {
	return func(op *Operation) { op.Force = true }
}

// WithDeleted includes soft-deleted rows in Select.
func WithDeleted() OpOption {
	return func(op *Operation) { op.Force = true }
}

// Where adds Select filters.
func Where(preds ...sql.Predicate) OpOption {
	return func(op *Operation) { op.Predicates = append(op.Predicates, preds...) }
}

// WithTimeout bounds the database round-trips of the operation.
func WithTimeout(d time.Duration) OpOption {
	return func(op *Operation) { op.Timeout = d }
}

// WithStrategy forces an execution strategy.
func WithStrategy(s Strategy) OpOption {
	return func(op *Operation) { op.Strategy = s }
}

// WithTx runs the operation on a caller owned transaction. The caller
// commits; the engine only rolls back on failure.
func WithTx(tx dialect.Tx) OpOption {
	return func(op *Operation) { op.Tx = tx }
}

// WithInfo sets the entity descriptor, bypassing the registry.
func WithInfo(info *schema.TypeInfo) OpOption {
	return func(op *Operation) { op.Info = info }
}

// NewOperation returns an operation for entity.
func NewOperation(cmd Command, entity any, opts ...OpOption) *Operation {
	op := &Operation{Command: cmd, Entity: entity}
	for _, opt := range opts {
		opt(op)
	}
	return op
}

// checkVersion reports whether a conflict check applies to the operation.
func (op *Operation) checkVersion() bool {
	return op.Command.versioned() && !op.IgnoreVersion && op.Info.Version() != nil
}

// softDelete reports whether a Delete flags the row instead of removing it.
func (op *Operation) softDelete() bool {
	return op.Command == OpDelete && !op.Force && op.Info.HasSoftDelete()
}

// expectedAfter returns the version a returned row must carry.
func (op *Operation) expectedAfter() (any, error) {
	if op.version == nil {
		return op.expected, nil
	}
	return schema.IncrementVersion(op.version.Kind, op.expected)
}
