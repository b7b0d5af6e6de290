package engine

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// resolveIdentity decides whether the identity column of an INSERT is left
// to the database. The column is omitted only on dialects without native
// sequences that hand the assigned value back through LastInsertId, and
// only when its value is unset. Sequence dialects always send the column.
func resolveIdentity(op *Operation) {
	c := op.Info.Identity()
	if op.Command != OpInsert || c == nil || c.IsSequence() || !op.dialect.SupportsIdentity() {
		return
	}
	if unset(c, c.Get(op.Entity)) {
		op.identity = c
	}
}

// resolveSequences fetches the next value of every sequence-backed column
// whose value is unset, one round-trip per column. Dialects without native
// sequences are skipped.
func (e *Engine) resolveSequences(ctx context.Context, conn dialect.ExecQuerier, op *Operation) (map[*schema.ColumnInfo]any, error) {
	if op.Command != OpInsert || !op.dialect.SupportsSequence() {
		return nil, nil
	}
	var values map[*schema.ColumnInfo]any
	for _, c := range op.Info.Sequences() {
		if !unset(c, c.Get(op.Entity)) {
			continue
		}
		v, err := e.nextval(ctx, conn, op.dialect, c.Sequence)
		if err != nil {
			return nil, fmt.Errorf("sequence %s of column %q: %w", c.Sequence.Name, c.Name, err)
		}
		if values == nil {
			values = make(map[*schema.ColumnInfo]any)
		}
		values[c] = v
	}
	return values, nil
}

func (e *Engine) nextval(ctx context.Context, conn dialect.ExecQuerier, d dialect.Dialect, seq *schema.Sequence) (any, error) {
	query := d.SequenceNextSQL(seq.Name)
	prefix, width := "", 0
	if seq.Padded() {
		query = d.PaddedSequenceNextSQL(seq.Name, seq.Prefix, seq.Padding)
		prefix, width = seq.Prefix, seq.Padding
	}
	if e.hook != nil {
		e.hook(ctx, query)
	}
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, []any{}, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no value returned by %q", query)
	}
	var v any
	if err := rows.Scan(&v); err != nil {
		return nil, err
	}
	return dialect.NormalizeSequence(v, prefix, width)
}

// unset reports whether a column value is absent: nil, empty for strings and
// non-positive for numbers.
func unset(c *schema.ColumnInfo, v any) bool {
	if v == nil {
		return true
	}
	switch c.Kind {
	case schema.KindString:
		switch x := v.(type) {
		case string:
			return x == ""
		case *string:
			return x == nil || *x == ""
		}
		return false
	case schema.KindInt, schema.KindInt32, schema.KindInt64, schema.KindDecimal:
		return !schema.Positive(v)
	}
	return false
}
