package sql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/strata/dialect"
)

func render(name string, p Predicate) *Statement {
	b := NewBuilder(dialect.MustOpen(name), false)
	p(b)
	return b.Statement()
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		sql   string
		debug string
	}{
		{"eq", FieldEQ("name", "a8m"), `"name" = $1`, `"name" = 'a8m'`},
		{"neq", FieldNEQ("age", 30), `"age" <> $1`, `"age" <> 30`},
		{"gt", FieldGT("age", 30), `"age" > $1`, `"age" > 30`},
		{"gte", FieldGTE("age", 30), `"age" >= $1`, `"age" >= 30`},
		{"lt", FieldLT("age", 30), `"age" < $1`, `"age" < 30`},
		{"lte", FieldLTE("age", 30), `"age" <= $1`, `"age" <= 30`},
		{"contains", FieldContains("name", "a8"), `"name" LIKE $1`, `"name" LIKE '%a8%'`},
		{"prefix", FieldHasPrefix("name", "a8"), `"name" LIKE $1`, `"name" LIKE 'a8%'`},
		{"suffix", FieldHasSuffix("name", "8m"), `"name" LIKE $1`, `"name" LIKE '%8m'`},
		{"fold", FieldEqualFold("name", "A8M"), `LOWER("name") = LOWER($1)`, `LOWER("name") = LOWER('A8M')`},
		{"null", FieldIsNull("deleted_at"), `"deleted_at" IS NULL`, `"deleted_at" IS NULL`},
		{"notnull", FieldNotNull("deleted_at"), `"deleted_at" IS NOT NULL`, `"deleted_at" IS NOT NULL`},
		{"in", FieldIn("id", 1, 2, 3), `"id" IN ($1, $2, $3)`, `"id" IN (1, 2, 3)`},
		{"in empty", FieldIn[int]("id"), `1 = 0`, `1 = 0`},
		{"notin", FieldNotIn("id", 1), `"id" NOT IN ($1)`, `"id" NOT IN (1)`},
		{"notin empty", FieldNotIn[int]("id"), `1 = 1`, `1 = 1`},
		{
			"and or not",
			And(FieldEQ("a", 1), Or(FieldEQ("b", 2), Not(FieldIsNull("c")))),
			`("a" = $1 AND ("b" = $2 OR NOT ("c" IS NULL)))`,
			`("a" = 1 AND ("b" = 2 OR NOT ("c" IS NULL)))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := render(dialect.Postgres, tt.pred)
			assert.Equal(t, tt.sql, st.SQL)
			assert.Equal(t, tt.debug, st.DebugSQL)
		})
	}
}

func TestTypedFields(t *testing.T) {
	var (
		name    = StringField[Predicate]("name")
		age     = OrderedField[Predicate, int]("age")
		created = OrderedField[Predicate, time.Time]("created_at")
		active  = BoolField[Predicate]("active")
	)
	assert.Equal(t, "name", name.Name())
	assert.Equal(t, "age", age.Name())
	assert.Equal(t, "active", active.Name())

	st := render(dialect.MySQL, And(
		name.HasPrefix("a"),
		age.GTE(18),
		age.In(20, 30),
		active.EQ(true),
		created.NotNull(),
	))
	assert.Equal(t, "(`name` LIKE ? AND `age` >= ? AND `age` IN (?, ?) AND `active` = ? AND `created_at` IS NOT NULL)", st.SQL)
	assert.Equal(t, "(`name` LIKE 'a%' AND `age` >= 18 AND `age` IN (20, 30) AND `active` = TRUE AND `created_at` IS NOT NULL)", st.DebugSQL)
	assert.Equal(t, []any{"a%", 18, 20, 30, true}, st.Args())

	st = render(dialect.SQLite, active.NEQ(false))
	assert.Equal(t, "`active` <> 0", st.DebugSQL)

	st = render(dialect.SQLServer, name.EqualFold("X"))
	assert.Equal(t, "LOWER([name]) = LOWER(@p1)", st.SQL)
}
