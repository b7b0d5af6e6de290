package engine

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// result is the normalized outcome of a statement: the affected-row count
// and the column values the database handed back.
type result struct {
	affected int64
	values   map[*schema.ColumnInfo]any
}

// resolveStrategy replaces Auto with a concrete strategy and rejects
// strategies the dialect cannot serve. It runs before any database work.
func resolveStrategy(op *Operation) error {
	d := op.dialect
	switch op.Strategy {
	case Auto:
		op.Strategy = NonQuery
		if d.Returning() == dialect.ReturningNone {
			break
		}
		if (op.Command == OpInsert && op.identity != nil) || (op.Command == OpUpdate && op.checkVersion()) {
			op.Strategy = Reader
		}
	case NonQuery:
	case Reader:
		if d.Returning() == dialect.ReturningNone {
			return strata.NewConfigError(op.Strategy.String(), "dialect %s cannot return modified rows", d.Name())
		}
	case Scalar:
		switch d.Name() {
		case dialect.Postgres, dialect.SQLServer, dialect.DB2:
		default:
			return strata.NewConfigError(op.Strategy.String(), "dialect %s cannot count modified rows in a single statement", d.Name())
		}
	default:
		return strata.WrapConfigError(op.Strategy.String(), strata.ErrUnknownStrategy, "unknown execution strategy")
	}
	if op.Strategy == Reader {
		op.returning = returningColumns(op.Info, op.identity)
		if len(op.returning) == 0 {
			return strata.NewConfigError(op.Info.Name, "no columns to return")
		}
	}
	return nil
}

// returningColumns lists the keys, the omitted identity and the version.
func returningColumns(info *schema.TypeInfo, identity *schema.ColumnInfo) []*schema.ColumnInfo {
	var cols []*schema.ColumnInfo
	for _, c := range info.Columns {
		if c.IsKey || c == identity || c.IsVersion {
			cols = append(cols, c)
		}
	}
	return cols
}

// dispatch executes st with the operation's strategy.
func dispatch(ctx context.Context, conn dialect.ExecQuerier, op *Operation, st *sql.Statement) (result, error) {
	switch op.Strategy {
	case NonQuery:
		return nonQuery(ctx, conn, op, st)
	case Reader:
		return reader(ctx, conn, op, st)
	case Scalar:
		return scalar(ctx, conn, st)
	}
	return result{}, strata.WrapConfigError(op.Strategy.String(), strata.ErrUnknownStrategy, "unknown execution strategy")
}

func nonQuery(ctx context.Context, conn dialect.ExecQuerier, op *Operation, st *sql.Statement) (result, error) {
	var res sql.Result
	if err := conn.Exec(ctx, st.SQL, st.Args(), &res); err != nil {
		return result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return result{}, err
	}
	r := result{affected: n}
	if op.identity != nil && op.dialect.SupportsIdentity() && n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return result{}, err
		}
		r.values = map[*schema.ColumnInfo]any{op.identity: id}
	}
	return r, nil
}

// reader reads the single row handed back by the statement. No row means
// nothing was affected; a row with another version than the expected one
// counts as not affected either.
func reader(ctx context.Context, conn dialect.ExecQuerier, op *Operation, st *sql.Statement) (result, error) {
	rows := &sql.Rows{}
	if err := conn.Query(ctx, st.SQL, st.Args(), rows); err != nil {
		return result{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return result{}, rows.Err()
	}
	dest := make([]any, len(op.returning))
	ptrs := make([]any, len(dest))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return result{}, err
	}
	r := result{affected: 1, values: make(map[*schema.ColumnInfo]any, len(dest))}
	for i, c := range op.returning {
		if dest[i] == nil {
			continue
		}
		r.values[c] = dest[i]
		if c.IsVersion && op.checkVersion() {
			want, err := op.expectedAfter()
			if err != nil {
				return result{}, err
			}
			if !schema.VersionEqual(dest[i], want) {
				r.affected = 0
			}
		}
	}
	return r, rows.Err()
}

func scalar(ctx context.Context, conn dialect.ExecQuerier, st *sql.Statement) (result, error) {
	rows := &sql.Rows{}
	if err := conn.Query(ctx, st.SQL, st.Args(), rows); err != nil {
		return result{}, err
	}
	defer rows.Close()
	var v any
	if rows.Next() {
		if err := rows.Scan(&v); err != nil {
			return result{}, err
		}
	}
	return result{affected: count(v)}, rows.Err()
}

// count interprets a scalar as an affected-row count. Values that are not
// numbers count as zero.
func count(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(x)
	case uint32:
		return int64(x)
	case uint16:
		return int64(x)
	case uint8:
		return int64(x)
	case float64:
		return int64(x)
	case float32:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case decimal.Decimal:
		return x.IntPart()
	case []byte:
		return parseCount(string(x))
	case string:
		return parseCount(x)
	}
	return 0
}

func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.IntPart()
	}
	return 0
}
