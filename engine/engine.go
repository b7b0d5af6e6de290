package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/dialect/sql/sqlgraph"
	"github.com/syssam/strata/schema"
)

// Status tags the outcome of a call.
type Status uint8

// Outcome statuses.
const (
	StatusSuccess Status = iota
	StatusConflict
	StatusError
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusConflict:
		return "conflict"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Outcome is the result of Run. A conflict carries a *strata.LockConflictError
// unless the operation suppresses it; an error outcome always carries Err.
type Outcome struct {
	Status    Status
	Affected  int64
	Statement *sql.Statement // nil when the call failed before assembly
	Err       error
}

// Engine executes operations against one database.
type Engine struct {
	drv         dialect.Driver
	dialect     dialect.Dialect
	dialectName string
	registry    *schema.Registry
	logger      *slog.Logger
	hook        LogHook
	policy      Policy
	pretty      bool
	timeout     time.Duration
	slow        time.Duration
	now         func() time.Time
}

// New returns an engine executing statements on drv.
//
//	drv, err := sql.Open("sqlite", "file:app.db")
//	if err != nil {
//		return err
//	}
//	eng, err := engine.New(drv, engine.WithRegistry(reg))
func New(drv dialect.Driver, opts ...Option) (*Engine, error) {
	e := &Engine{
		drv:      drv,
		registry: schema.NewRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	name := e.dialectName
	if name == "" {
		name = drv.Dialect()
	}
	d, err := dialect.Open(name)
	if err != nil {
		return nil, strata.WrapConfigError("dialect", err, "unsupported dialect %q", name)
	}
	e.dialect = d
	if e.slow > 0 {
		e.drv = sql.NewStatsDriver(drv, sql.WithSlowThreshold(e.slow), sql.WithSlowQueryLog(e.logger))
	}
	return e, nil
}

// Dialect returns the dialect statements are rendered for.
func (e *Engine) Dialect() dialect.Dialect { return e.dialect }

// Driver returns the driver statements are executed on.
func (e *Engine) Driver() dialect.Driver { return e.drv }

// Registry returns the registry entity descriptors are resolved from.
func (e *Engine) Registry() *schema.Registry { return e.registry }

// Insert inserts entity and returns the number of affected rows.
func (e *Engine) Insert(ctx context.Context, entity any, opts ...OpOption) (int64, error) {
	out := e.Run(ctx, NewOperation(OpInsert, entity, opts...))
	return out.Affected, out.Err
}

// Update updates entity by key. Versioned entities are checked against the
// version they carry and move to the next version on success.
func (e *Engine) Update(ctx context.Context, entity any, opts ...OpOption) (int64, error) {
	out := e.Run(ctx, NewOperation(OpUpdate, entity, opts...))
	return out.Affected, out.Err
}

// Delete deletes entity by key. Entities with a soft-delete column are
// flagged instead, unless ForceDelete is given.
func (e *Engine) Delete(ctx context.Context, entity any, opts ...OpOption) (int64, error) {
	out := e.Run(ctx, NewOperation(OpDelete, entity, opts...))
	return out.Affected, out.Err
}

// Build renders the statement of op without touching the database.
// Sequence values are not fetched; unset sequence columns are rendered
// with their current value.
func (e *Engine) Build(op *Operation) (*sql.Statement, error) {
	if err := e.prepare(op); err != nil {
		return nil, err
	}
	snapshot(op)
	return build(op, e.pretty, nil)
}

// Run executes op. Resolution, assembly, execution and validation happen
// in this order within the call. The entity is then patched with the
// returned values and the next version, and the transaction committed; a
// failed commit restores the entity.
func (e *Engine) Run(ctx context.Context, op *Operation) Outcome {
	if op.Command == OpSelect {
		return Outcome{Status: StatusError, Err: strata.NewConfigError(op.Command.String(), "use Select to read entities")}
	}
	if err := e.prepare(op); err != nil {
		return Outcome{Status: StatusError, Err: err}
	}
	if err := e.authorize(ctx, op); err != nil {
		return Outcome{Status: StatusError, Err: err}
	}
	ctx, cancel := e.withTimeout(ctx, op)
	defer cancel()
	logger := e.logger.With(
		"source", op.Source,
		"command", op.Command.String(),
		"entity", op.Info.Name,
		"call_id", uuid.NewString(),
	)

	tx, local := op.Tx, false
	if tx == nil {
		t, err := e.drv.Tx(ctx)
		if err != nil {
			return e.fail(ctx, logger, op, nil, fmt.Errorf("begin transaction: %w", err))
		}
		tx, local = t, true
	}

	values, err := e.resolveSequences(ctx, tx, op)
	if err != nil {
		return e.fail(ctx, logger, op, nil, rollback(tx, err))
	}
	snapshot(op)
	st, err := build(op, e.pretty, values)
	if err != nil {
		return e.fail(ctx, logger, op, nil, rollback(tx, err))
	}
	if e.hook != nil {
		e.hook(ctx, st.DebugSQL)
	}
	logger.DebugContext(ctx, "execute", "strategy", op.Strategy.String(), "sql", st.DebugSQL)

	res, err := dispatch(ctx, tx, op, st)
	if err != nil {
		return e.fail(ctx, logger, op, st, rollback(tx, err))
	}
	if conflicted(op, res) {
		if err := tx.Rollback(); err != nil {
			return e.fail(ctx, logger, op, st, &strata.RollbackError{Err: err})
		}
		logger.WarnContext(ctx, "optimistic lock conflict", "sql", st.DebugSQL, "expected_version", op.expected)
		return Outcome{Status: StatusConflict, Statement: st, Err: conflictError(op, st)}
	}
	if op.deletedAt != nil {
		if values == nil {
			values = make(map[*schema.ColumnInfo]any)
		}
		values[op.Info.SoftDelete()] = op.deletedAt
	}
	for c, v := range res.values {
		if values == nil {
			values = make(map[*schema.ColumnInfo]any)
		}
		values[c] = v
	}
	restore, err := apply(op, values)
	if err != nil {
		return e.fail(ctx, logger, op, st, rollback(tx, err))
	}
	if local {
		if err := tx.Commit(); err != nil {
			restore()
			return e.fail(ctx, logger, op, st, fmt.Errorf("commit transaction: %w", err))
		}
	}
	return Outcome{Status: StatusSuccess, Affected: res.affected, Statement: st}
}

// prepare resolves the descriptor, identity handling and strategy of op.
// Every configuration error is reported here, before any database work.
func (e *Engine) prepare(op *Operation) error {
	if op.Entity == nil {
		return strata.NewConfigError(op.Command.String(), "entity is required")
	}
	if op.Info == nil {
		info, err := e.registry.For(op.Entity)
		if err != nil {
			return err
		}
		op.Info = info
	}
	op.dialect = e.dialect
	switch op.Command {
	case OpInsert, OpSelect:
	case OpUpdate, OpDelete:
		if len(op.Info.Keys()) == 0 {
			return strata.NewConfigError(op.Info.Name, "%s requires key columns", op.Command)
		}
	default:
		return strata.NewConfigError(op.Command.String(), "unknown command")
	}
	if op.softDelete() {
		op.deletedAt = true
		if op.Info.SoftDelete().Kind == schema.KindTime {
			op.deletedAt = e.now()
		}
	}
	resolveIdentity(op)
	if op.Command == OpSelect {
		return nil
	}
	return resolveStrategy(op)
}

func (e *Engine) withTimeout(ctx context.Context, op *Operation) (context.Context, context.CancelFunc) {
	d := op.Timeout
	if d == 0 {
		d = e.timeout
	}
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// fail logs and wraps a failed call. Driver errors are classified so that
// constraint violations can be told apart; the version is never touched.
func (e *Engine) fail(ctx context.Context, logger *slog.Logger, op *Operation, st *sql.Statement, err error) Outcome {
	if !strata.IsConfigError(err) {
		err = strata.NewMutationError(op.Info.Name, op.Command.String(), sqlgraph.Classify(err))
	}
	attrs := []any{"error", err}
	if st != nil {
		attrs = append(attrs, "sql", st.DebugSQL)
	}
	logger.ErrorContext(ctx, "operation failed", attrs...)
	return Outcome{Status: StatusError, Statement: st, Err: err}
}

// rollback rolls tx back after err. A failed rollback is joined to err.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return errors.Join(err, &strata.RollbackError{Err: rerr})
	}
	return err
}

// Select returns a cursor over the entities of type E matching preds.
// Soft-deleted rows are excluded.
func Select[E any](ctx context.Context, e *Engine, preds ...sql.Predicate) (*Cursor[E], error) {
	return Query[E](ctx, e, NewOperation(OpSelect, new(E), Where(preds...)))
}

// Query runs a Select operation. The operation's Entity is only used to
// resolve the descriptor when Info is nil.
func Query[E any](ctx context.Context, e *Engine, op *Operation) (*Cursor[E], error) {
	op.Command = OpSelect
	if op.Entity == nil {
		op.Entity = new(E)
	}
	if err := e.prepare(op); err != nil {
		return nil, err
	}
	if err := e.authorize(ctx, op); err != nil {
		return nil, err
	}
	st, err := build(op, e.pretty, nil)
	if err != nil {
		return nil, err
	}
	if e.hook != nil {
		e.hook(ctx, st.DebugSQL)
	}
	e.logger.DebugContext(ctx, "query", "source", op.Source, "entity", op.Info.Name, "sql", st.DebugSQL)
	ctx, cancel := e.withTimeout(ctx, op)
	var conn dialect.ExecQuerier = e.drv
	if op.Tx != nil {
		conn = op.Tx
	}
	rows := &sql.Rows{}
	if err := conn.Query(ctx, st.SQL, st.Args(), rows); err != nil {
		cancel()
		return nil, fmt.Errorf("strata: select %s: %w", op.Info.Name, err)
	}
	return newCursor[E](rows, op.Info, cancel)
}
