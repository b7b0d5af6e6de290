package engine

import (
	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// snapshot records the version an UPDATE or DELETE expects to find.
func snapshot(op *Operation) {
	if v := op.Info.Version(); v != nil && op.Command.versioned() {
		op.expected = v.Get(op.Entity)
	}
}

// conflicted reports whether a versioned write lost the race: it affected
// no row, or the row read back carried another version.
func conflicted(op *Operation, res result) bool {
	return op.checkVersion() && res.affected == 0
}

// conflictError returns the error surfaced for a conflict, nil when the
// operation suppresses it.
func conflictError(op *Operation, st *sql.Statement) error {
	if op.SuppressLockError {
		return nil
	}
	return strata.NewLockConflictError(op.Source, op.Info.Name, st.SQL, st.DebugSQL)
}

// apply writes the outcome of a call onto the entity: generated and
// returned values first, then the version. The version moves forward
// exactly once, and only when the increment fragment was executed. It runs
// before commit so that a value the entity cannot hold fails the call
// while it can still be rolled back. On error the entity is left as it
// was; otherwise the returned func restores it if the commit fails.
func apply(op *Operation, values map[*schema.ColumnInfo]any) (func(), error) {
	var undo []func()
	restore := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
	set := func(c *schema.ColumnInfo, v any) error {
		prev := c.Get(op.Entity)
		if err := c.Set(op.Entity, v); err != nil {
			return err
		}
		undo = append(undo, func() { _ = c.Set(op.Entity, prev) })
		return nil
	}
	version := op.Info.Version()
	for c, v := range values {
		if c == version {
			continue
		}
		if err := set(c, v); err != nil {
			restore()
			return nil, err
		}
	}
	var err error
	switch {
	case op.Command == OpInsert && version != nil:
		err = set(version, op.initial)
	case op.version != nil:
		var next any
		if next, err = schema.IncrementVersion(op.version.Kind, op.expected); err == nil {
			err = set(op.version, next)
		}
	}
	if err != nil {
		restore()
		return nil, err
	}
	return restore, nil
}
