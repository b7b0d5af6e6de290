package sql

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
)

var allDialects = []string{dialect.Postgres, dialect.MySQL, dialect.SQLite, dialect.Oracle, dialect.SQLServer, dialect.DB2}

var placeholderRE = map[string]*regexp.Regexp{
	dialect.Postgres:  regexp.MustCompile(`\$(\d+)`),
	dialect.Oracle:    regexp.MustCompile(`:(\d+)`),
	dialect.SQLServer: regexp.MustCompile(`@p(\d+)`),
	dialect.MySQL:     regexp.MustCompile(`\?`),
	dialect.SQLite:    regexp.MustCompile(`\?`),
	dialect.DB2:       regexp.MustCompile(`\?`),
}

// substitute replaces every placeholder of the raw statement with the
// literal of its parameter.
func substitute(t *testing.T, name string, st *Statement) string {
	t.Helper()
	d := dialect.MustOpen(name)
	args := st.Args()
	i := 0
	return placeholderRE[name].ReplaceAllStringFunc(st.SQL, func(m string) string {
		if !d.NumberedPlaceholders() {
			v := args[i]
			i++
			return d.Literal(v)
		}
		n, err := strconv.Atoi(placeholderRE[name].FindStringSubmatch(m)[1])
		require.NoError(t, err)
		return d.Literal(st.Params[n-1].Value)
	})
}

func buildSample(b *Builder) {
	b.AppendLine("UPDATE " + b.Quote("users") + " SET")
	b.AppendComma(0)
	b.Append(b.Quote("name") + " = ")
	b.AppendParam("name", "O'Brien")
	b.AppendComma(1)
	b.Append(b.Quote("active") + " = ")
	b.AppendParam("active", true)
	b.AppendComma(2)
	b.Append(b.Quote("at") + " = ")
	b.AppendParam("at", time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))
	b.AppendComma(3)
	b.Append(b.Quote("price") + " = ")
	b.AppendParam("price", decimal.RequireFromString("12.50"))
	b.AppendComma(4)
	b.Append(b.Quote("version") + " = " + b.Quote("version") + " + 1 ")
	b.NewLine()
	b.AppendLine("WHERE")
	b.AppendAnd(0)
	b.Append(b.Quote("id") + " = ")
	b.AppendParam("id", int64(7))
	b.AppendAnd(1)
	b.Append(b.Quote("version") + " = ")
	b.AppendParam("version", 3)
	b.AppendAnd(2)
	b.Append(b.Quote("owner") + " = ")
	b.AppendParam("id", int64(99))
}

func TestBuilder_DualStream(t *testing.T) {
	for _, name := range allDialects {
		for _, pretty := range []bool{false, true} {
			t.Run(name+"/"+strconv.FormatBool(pretty), func(t *testing.T) {
				b := NewBuilder(dialect.MustOpen(name), pretty)
				buildSample(b)
				st := b.Statement()
				assert.Equal(t, st.DebugSQL, substitute(t, name, st))
				assert.Len(t, st.Params, 6)
			})
		}
	}
}

func TestBuilder_Compact(t *testing.T) {
	b := NewBuilder(dialect.MustOpen(dialect.Postgres), false)
	b.AppendLine("UPDATE t SET")
	b.AppendComma(0)
	b.Append(`"name" = `)
	b.AppendParam("name", "a8m")
	b.AppendComma(1)
	b.Append(`"version" = "version" + 1 `)
	b.NewLine()
	b.AppendLine("WHERE")
	b.AppendAnd(0)
	b.Append(`"id" = `)
	b.AppendParam("id", 1)
	b.AppendAnd(1)
	b.Append(`"version" = `)
	b.AppendParam("version", 2)
	st := b.Statement()
	assert.Equal(t, `UPDATE t SET "name" = $1, "version" = "version" + 1 WHERE "id" = $2 AND "version" = $3`, st.SQL)
	assert.Equal(t, `UPDATE t SET "name" = 'a8m', "version" = "version" + 1 WHERE "id" = 1 AND "version" = 2`, st.DebugSQL)
	assert.NotContains(t, st.SQL, "\n")
	assert.Equal(t, []any{"a8m", 1, 2}, st.Args())
}

func TestBuilder_Pretty(t *testing.T) {
	b := NewBuilder(dialect.MustOpen(dialect.SQLite), true)
	b.AppendLine("SELECT")
	b.AppendComma(0)
	b.AppendLine("`id`")
	b.AppendComma(1)
	b.AppendLine("`name`")
	b.AppendLine("FROM `users`")
	b.AppendLine("WHERE")
	b.AppendAnd(0)
	b.Append("`id` = ").Arg(1).NewLine()
	b.AppendAnd(1)
	b.Append("`name` = ").Arg("x").NewLine()
	st := b.Statement()
	assert.Equal(t, "SELECT\n    `id`\n  , `name`\nFROM `users`\nWHERE\n    `id` = ?\nAND `name` = ?", st.SQL)
	assert.Equal(t, "SELECT\n    `id`\n  , `name`\nFROM `users`\nWHERE\n    `id` = 1\nAND `name` = 'x'", st.DebugSQL)
}

func TestBuilder_DuplicateKey(t *testing.T) {
	for _, name := range allDialects {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder(dialect.MustOpen(name), false)
			b.Append("SELECT ")
			b.AppendParam("p0", 5)
			b.Append(", ")
			b.AppendParam("p0", 6)
			st := b.Statement()
			require.Len(t, st.Params, 1)
			assert.Equal(t, "p0", st.Params[0].Key)
			assert.Equal(t, 5, st.Params[0].Value)
			assert.Equal(t, In, st.Params[0].Direction)
			assert.Equal(t, "SELECT 5, 5", st.DebugSQL)
			p, ok := st.Param("p0")
			require.True(t, ok)
			assert.Equal(t, 5, p.Value)
			_, ok = st.Param("p1")
			assert.False(t, ok)
		})
	}
}

func TestBuilder_Args(t *testing.T) {
	tests := []struct {
		dialect string
		sql     string
		args    []any
	}{
		{dialect.Postgres, "a = $1 OR b = $1 OR c = $2", []any{1, 2}},
		{dialect.SQLServer, "a = @p1 OR b = @p1 OR c = @p2", []any{1, 2}},
		{dialect.Oracle, "a = :1 OR b = :1 OR c = :2", []any{1, 2}},
		{dialect.MySQL, "a = ? OR b = ? OR c = ?", []any{1, 1, 2}},
		{dialect.DB2, "a = ? OR b = ? OR c = ?", []any{1, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			b := NewBuilder(dialect.MustOpen(tt.dialect), false)
			b.Append("a = ").AppendParam("k", 1)
			b.Append(" OR b = ").AppendParam("k", 1)
			b.Append(" OR c = ").AppendParam("j", 2)
			st := b.Statement()
			assert.Equal(t, tt.sql, st.SQL)
			assert.Equal(t, tt.args, st.Args())
		})
	}
}

func TestBuilder_Indent(t *testing.T) {
	build := func(name string, pretty bool) string {
		b := NewBuilder(dialect.MustOpen(name), pretty)
		b.AppendLine("SELECT * FROM FINAL TABLE (")
		b.Indent()
		b.AppendLine("INSERT INTO t")
		b.AppendLine("VALUES (1)")
		b.Unindent()
		b.Append(")")
		return b.Statement().SQL
	}
	assert.Equal(t, "SELECT * FROM FINAL TABLE (\n    INSERT INTO t\n    VALUES (1)\n)", build(dialect.DB2, true))
	assert.Equal(t, "SELECT * FROM FINAL TABLE (\nINSERT INTO t\nVALUES (1)\n)", build(dialect.Postgres, true))
	assert.Equal(t, "SELECT * FROM FINAL TABLE ( INSERT INTO t VALUES (1) )", build(dialect.DB2, false))

	b := NewBuilder(dialect.MustOpen(dialect.DB2), true)
	b.Unindent().AppendLine("x")
	assert.Equal(t, "x", b.Statement().SQL)
}

func TestBuilder_Snapshot(t *testing.T) {
	b := NewBuilder(dialect.MustOpen(dialect.Postgres), false)
	b.Append("SELECT ").Arg(1)
	first := b.Statement()
	b.Append(", ").Arg(2)
	second := b.Statement()
	assert.Equal(t, "SELECT $1", first.SQL)
	assert.Len(t, first.Params, 1)
	assert.Equal(t, "SELECT $1, $2", second.SQL)
	assert.Equal(t, []any{1, 2}, second.Args())
	assert.Equal(t, len(second.SQL), b.Len())
}

func TestBuilder_ArgSkipsTakenKeys(t *testing.T) {
	b := NewBuilder(dialect.MustOpen(dialect.Postgres), false)
	b.AppendParam("p0", "named")
	b.Append(" ").Arg("auto")
	st := b.Statement()
	require.Len(t, st.Params, 2)
	assert.Equal(t, "p1", st.Params[1].Key)
	assert.Equal(t, "auto", st.Params[1].Value)
}

func TestBuilder_Join(t *testing.T) {
	b := NewBuilder(dialect.MustOpen(dialect.SQLServer), false)
	b.Append("SELECT ").Join(b.Quote("a"), b.Quote("dbo.b"))
	assert.Equal(t, "SELECT [a], [dbo].[b]", b.Statement().SQL)
	assert.Equal(t, dialect.SQLServer, b.Dialect().Name())
	assert.False(t, b.Pretty())
}
