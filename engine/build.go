package engine

import (
	"strings"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// assembly renders the statement of one operation.
type assembly struct {
	op *Operation
	d  dialect.Dialect
	b  *sql.Builder
}

// build renders the statement of op. Values resolved earlier in the call
// (sequence values) take precedence over the entity's fields.
func build(op *Operation, pretty bool, values map[*schema.ColumnInfo]any) (*sql.Statement, error) {
	a := &assembly{op: op, d: op.dialect, b: sql.NewBuilder(op.dialect, pretty)}
	value := func(c *schema.ColumnInfo) any {
		if v, ok := values[c]; ok {
			return v
		}
		return c.Get(op.Entity)
	}
	var err error
	switch {
	case op.Command == OpInsert:
		err = a.insert(value)
	case op.Command == OpUpdate:
		err = a.update(value)
	case op.softDelete():
		err = a.softDelete(value)
	case op.Command == OpDelete:
		err = a.delete(value)
	case op.Command == OpSelect:
		a.query()
	default:
		err = strata.NewConfigError(op.Command.String(), "unknown command")
	}
	if err != nil {
		return nil, err
	}
	return a.b.Statement(), nil
}

func (a *assembly) insert(value func(*schema.ColumnInfo) any) error {
	info := a.op.Info
	var (
		names []string
		cols  []*schema.ColumnInfo
	)
	for _, c := range info.Columns {
		if c == a.op.identity {
			continue
		}
		names = append(names, a.d.Quote(c.Name))
		cols = append(cols, c)
	}
	a.begin()
	a.b.Append("INSERT INTO " + a.d.Quote(info.QualifiedTable()))
	switch {
	case len(cols) == 0 && a.d.Name() == dialect.MySQL:
		a.b.AppendLine(" () VALUES ()")
	case len(cols) == 0:
		a.b.NewLine()
		a.output("INSERTED")
		a.b.AppendLine("DEFAULT VALUES")
	default:
		a.b.AppendLine(" (" + strings.Join(names, ", ") + ")")
		a.output("INSERTED")
		a.b.Append("VALUES (")
		for i, c := range cols {
			if i > 0 {
				a.b.Append(", ")
			}
			v := value(c)
			if c.IsVersion {
				initial, err := schema.DefaultVersion(c.Kind, v)
				if err != nil {
					return err
				}
				a.op.initial, v = initial, initial
			}
			a.b.AppendParam(c.Name, v)
		}
		a.b.AppendLine(")")
	}
	a.end()
	return nil
}

func (a *assembly) update(value func(*schema.ColumnInfo) any) error {
	info := a.op.Info
	version := info.Version()
	var set []*schema.ColumnInfo
	for _, c := range info.Columns {
		if c.IsKey || c.IsIdentity || c == version {
			continue
		}
		set = append(set, c)
	}
	if len(set) == 0 && version == nil {
		return strata.NewConfigError(info.Name, "no columns to update")
	}
	a.begin()
	a.b.AppendLine("UPDATE " + a.d.Quote(info.QualifiedTable()))
	a.b.AppendLine("SET")
	for i, c := range set {
		a.b.AppendComma(i)
		a.b.Append(a.d.Quote(c.Name) + " = ")
		a.b.AppendParam(c.Name, value(c))
	}
	if version != nil {
		a.b.AppendComma(len(set))
		a.b.Append(a.d.Quote(version.Name) + " = " + a.d.Quote(version.Name) + a.versionSuffix(version))
	}
	a.b.NewLine()
	a.output("INSERTED")
	a.where(value)
	a.end()
	return nil
}

// versionSuffix returns the increment fragment of the version assignment
// and records the version column for the increment after commit.
func (a *assembly) versionSuffix(c *schema.ColumnInfo) string {
	if a.op.IgnoreVersion {
		return " "
	}
	a.op.version = c
	return " + 1 "
}

func (a *assembly) softDelete(value func(*schema.ColumnInfo) any) error {
	c := a.op.Info.SoftDelete()
	a.begin()
	a.b.AppendLine("UPDATE " + a.d.Quote(a.op.Info.QualifiedTable()))
	a.b.AppendLine("SET")
	a.b.AppendComma(0)
	a.b.Append(a.d.Quote(c.Name) + " = ")
	a.b.AppendParam(c.Name, a.op.deletedAt)
	// The version moves so that flagging an already flagged row still
	// changes it; MySQL counts changed rows, not matched ones.
	if a.op.checkVersion() {
		v := a.op.Info.Version()
		a.b.AppendComma(1)
		a.b.Append(a.d.Quote(v.Name) + " = " + a.d.Quote(v.Name) + a.versionSuffix(v))
	}
	a.b.NewLine()
	a.output("INSERTED")
	a.where(value)
	a.end()
	return nil
}

func (a *assembly) delete(value func(*schema.ColumnInfo) any) error {
	a.begin()
	a.b.AppendLine("DELETE FROM " + a.d.Quote(a.op.Info.QualifiedTable()))
	a.output("DELETED")
	a.where(value)
	a.end()
	return nil
}

// where renders the key conditions and, when checked, the expected version.
func (a *assembly) where(value func(*schema.ColumnInfo) any) {
	a.b.AppendLine("WHERE")
	n := 0
	for _, k := range a.op.Info.Keys() {
		a.b.AppendAnd(n)
		a.b.Append(a.d.Quote(k.Name) + " = ")
		a.b.AppendParam(k.Name, value(k))
		n++
	}
	if a.op.checkVersion() {
		v := a.op.Info.Version()
		a.b.AppendAnd(n)
		a.b.Append(a.d.Quote(v.Name) + " = ")
		a.b.AppendParam(v.Name, a.op.expected)
	}
	a.b.NewLine()
}

func (a *assembly) query() {
	info := a.op.Info
	a.b.AppendLine("SELECT")
	for i, c := range info.Columns {
		a.b.AppendComma(i)
		a.b.AppendLine(a.d.Quote(c.Name))
	}
	a.b.AppendLine("FROM " + a.d.Quote(info.QualifiedTable()))
	preds := a.op.Predicates
	if info.HasSoftDelete() && !a.op.Force {
		preds = append(preds[:len(preds):len(preds)], notDeleted(info.SoftDelete()))
	}
	if len(preds) == 0 {
		return
	}
	a.b.AppendLine("WHERE")
	for i, p := range preds {
		a.b.AppendAnd(i)
		p(a.b)
		a.b.NewLine()
	}
}

// notDeleted filters out soft-deleted rows.
func notDeleted(c *schema.ColumnInfo) sql.Predicate {
	if c.Kind == schema.KindBool {
		return sql.Or(sql.FieldEQ(c.Name, false), sql.FieldIsNull(c.Name))
	}
	return sql.FieldIsNull(c.Name)
}

// begin opens the wrapper a strategy needs around the data-change statement.
func (a *assembly) begin() {
	switch {
	case a.op.Strategy == Scalar && a.d.Name() == dialect.Postgres:
		a.b.AppendLine("WITH affected AS (")
	case a.op.Strategy == Scalar && a.d.SupportsFinalTable():
		a.b.AppendLine("SELECT COUNT(*) FROM " + a.resultTable() + " TABLE (")
	case a.op.Strategy == Reader && a.d.Returning() == dialect.ReturningFinalTable:
		a.b.AppendLine("SELECT " + a.returned("") + " FROM " + a.resultTable() + " TABLE (")
	default:
		return
	}
	a.b.Indent()
}

// end closes what begin opened and appends trailing returning clauses.
func (a *assembly) end() {
	a.b.NewLine()
	switch {
	case a.op.Strategy == Scalar && a.d.Name() == dialect.Postgres:
		a.b.AppendLine("RETURNING 1")
		a.b.AppendLine(")")
		a.b.Append("SELECT COUNT(*) FROM affected")
	case a.op.Strategy == Scalar && a.d.Name() == dialect.SQLServer:
		a.b.AppendLine(";")
		a.b.Append("SELECT @@ROWCOUNT")
	case a.op.Strategy == Scalar && a.d.SupportsFinalTable(),
		a.op.Strategy == Reader && a.d.Returning() == dialect.ReturningFinalTable:
		a.b.Unindent()
		a.b.Append(")")
	case a.op.Strategy == Reader && a.d.Returning() == dialect.ReturningClause:
		a.b.Append("RETURNING " + a.returned(""))
	}
}

// output renders the OUTPUT clause of dialects that return rows through it.
func (a *assembly) output(prefix string) {
	if a.op.Strategy == Reader && a.d.Returning() == dialect.ReturningOutput {
		a.b.AppendLine("OUTPUT " + a.returned(prefix+"."))
	}
}

func (a *assembly) returned(prefix string) string {
	names := make([]string, len(a.op.returning))
	for i, c := range a.op.returning {
		names[i] = prefix + a.d.Quote(c.Name)
	}
	return strings.Join(names, ", ")
}

// resultTable names the DB2 intermediate result table: deleted rows are
// only visible in OLD TABLE.
func (a *assembly) resultTable() string {
	if a.op.Command == OpDelete && !a.op.softDelete() {
		return "OLD"
	}
	return "FINAL"
}
