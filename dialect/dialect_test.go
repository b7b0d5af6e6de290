package dialect_test

import (
	"database/sql"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{dialect.Postgres, dialect.Postgres},
		{dialect.MySQL, dialect.MySQL},
		{dialect.SQLite, dialect.SQLite},
		{dialect.Oracle, dialect.Oracle},
		{dialect.SQLServer, dialect.SQLServer},
		{dialect.DB2, dialect.DB2},
		{"sqlite3", dialect.SQLite},
		{"pgx", dialect.Postgres},
		{"mssql", dialect.SQLServer},
		{"postgres-traced", dialect.Postgres},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dialect.Open(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := dialect.Open("gremlin")
	require.Error(t, err)
	assert.Panics(t, func() { dialect.MustOpen("gremlin") })
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		sequence   bool
		identity   bool
		finalTable bool
		returning  dialect.Returning
	}{
		{dialect.Postgres, true, false, false, dialect.ReturningClause},
		{dialect.MySQL, false, true, false, dialect.ReturningNone},
		{dialect.SQLite, false, true, false, dialect.ReturningNone},
		{dialect.Oracle, true, false, false, dialect.ReturningNone},
		{dialect.SQLServer, true, false, false, dialect.ReturningOutput},
		{dialect.DB2, true, false, true, dialect.ReturningFinalTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dialect.MustOpen(tt.name)
			assert.Equal(t, tt.sequence, d.SupportsSequence())
			assert.Equal(t, tt.identity, d.SupportsIdentity())
			assert.Equal(t, tt.finalTable, d.SupportsFinalTable())
			assert.Equal(t, tt.returning, d.Returning())
			if !tt.sequence {
				assert.Empty(t, d.SequenceNextSQL("s"))
				assert.Empty(t, d.PaddedSequenceNextSQL("s", "P", 4))
			}
		})
	}
}

func TestPlaceholderAndQuote(t *testing.T) {
	assert.Equal(t, "$2", dialect.MustOpen(dialect.Postgres).Placeholder(2))
	assert.Equal(t, ":2", dialect.MustOpen(dialect.Oracle).Placeholder(2))
	assert.Equal(t, "@p2", dialect.MustOpen(dialect.SQLServer).Placeholder(2))
	assert.Equal(t, "?", dialect.MustOpen(dialect.MySQL).Placeholder(2))
	assert.True(t, dialect.MustOpen(dialect.Postgres).NumberedPlaceholders())
	assert.False(t, dialect.MustOpen(dialect.SQLite).NumberedPlaceholders())

	assert.Equal(t, `"public"."users"`, dialect.MustOpen(dialect.Postgres).Quote("public.users"))
	assert.Equal(t, "`users`", dialect.MustOpen(dialect.MySQL).Quote("users"))
	assert.Equal(t, "[a]]b]", dialect.MustOpen(dialect.SQLServer).Quote("a]b"))
	assert.Equal(t, `"we""ird"`, dialect.MustOpen(dialect.DB2).Quote(`we"ird`))
}

func TestSequenceSQL(t *testing.T) {
	pg := dialect.MustOpen(dialect.Postgres)
	assert.Equal(t, "SELECT nextval('order_seq')", pg.SequenceNextSQL("order_seq"))
	assert.Equal(t, "SELECT 'ORD' || LPAD(CAST(nextval('order_seq') AS VARCHAR), 6, '0')", pg.PaddedSequenceNextSQL("order_seq", "ORD", 6))
	assert.Equal(t, "SELECT nextval('order_seq')", pg.PaddedSequenceNextSQL("order_seq", "ORD", 0))

	ora := dialect.MustOpen(dialect.Oracle)
	assert.Equal(t, "SELECT order_seq.NEXTVAL FROM DUAL", ora.SequenceNextSQL("order_seq"))
	assert.Equal(t, "SELECT 'O''K' || LPAD(TO_CHAR(order_seq.NEXTVAL), 4, '0') FROM DUAL", ora.PaddedSequenceNextSQL("order_seq", "O'K", 4))

	mss := dialect.MustOpen(dialect.SQLServer)
	assert.Equal(t, "SELECT NEXT VALUE FOR order_seq", mss.SequenceNextSQL("order_seq"))
	assert.Equal(t, "SELECT 'A' + RIGHT(REPLICATE('0', 5) + CAST(NEXT VALUE FOR order_seq AS VARCHAR(20)), 5)", mss.PaddedSequenceNextSQL("order_seq", "A", 5))

	db2 := dialect.MustOpen(dialect.DB2)
	assert.Equal(t, "VALUES NEXT VALUE FOR order_seq", db2.SequenceNextSQL("order_seq"))
	assert.Equal(t, "VALUES 'A' || LPAD(VARCHAR(NEXT VALUE FOR order_seq), 3, '0')", db2.PaddedSequenceNextSQL("order_seq", "A", 3))
}

func TestPadSequence(t *testing.T) {
	assert.Equal(t, "ORD000042", dialect.PadSequence("ORD", 6, 42))
	assert.Equal(t, "42", dialect.PadSequence("", 0, 42))
	assert.Equal(t, "X7", dialect.PadSequence("X", 0, 7))

	// Every value that fits the width yields exactly width digits after the prefix.
	for width := 1; width <= 12; width++ {
		limit := int64(1)
		for i := 0; i < width && limit < 1e12; i++ {
			limit *= 10
		}
		for _, n := range []int64{0, 1, 9, limit / 3, limit - 1} {
			if n >= limit {
				continue
			}
			got := dialect.PadSequence("INV-", width, n)
			require.True(t, strings.HasPrefix(got, "INV-"), got)
			digits := strings.TrimPrefix(got, "INV-")
			require.Len(t, digits, width, "width=%d n=%d", width, n)
			parsed, err := strconv.ParseInt(digits, 10, 64)
			require.NoError(t, err)
			require.Equal(t, n, parsed)
		}
	}
}

func TestNormalizeSequence(t *testing.T) {
	v, err := dialect.NormalizeSequence([]byte("ORD000042"), "ORD", 6)
	require.NoError(t, err)
	assert.Equal(t, "ORD000042", v)

	v, err = dialect.NormalizeSequence(int64(42), "ORD", 6)
	require.NoError(t, err)
	assert.Equal(t, "ORD000042", v)

	v, err = dialect.NormalizeSequence([]byte("17"), "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(17), v)

	v, err = dialect.NormalizeSequence(int64(3), "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = dialect.NormalizeSequence(3.5, "P", 2)
	require.Error(t, err)
	_, err = dialect.NormalizeSequence("abc", "", 0)
	require.Error(t, err)
}

type status string

func TestLiteral(t *testing.T) {
	pg := dialect.MustOpen(dialect.Postgres)
	lite := dialect.MustOpen(dialect.SQLite)
	ora := dialect.MustOpen(dialect.Oracle)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	seven := int64(7)
	var nilPtr *int64

	tests := []struct {
		name string
		d    dialect.Dialect
		in   any
		want string
	}{
		{"nil", pg, nil, "NULL"},
		{"string", pg, "O'Brien", "'O''Brien'"},
		{"bool", pg, true, "TRUE"},
		{"sqlite bool", lite, true, "1"},
		{"int", pg, 5, "5"},
		{"int64", pg, int64(-9), "-9"},
		{"float", pg, 1.5, "1.5"},
		{"time", pg, ts, "'2024-01-02 03:04:05'"},
		{"oracle time", ora, ts, "TIMESTAMP '2024-01-02 03:04:05'"},
		{"decimal", pg, decimal.RequireFromString("12.5"), "12.5"},
		{"bytes", pg, []byte{0xab, 0x01}, `'\xab01'`},
		{"sqlite bytes", lite, []byte{0xab}, "X'AB'"},
		{"pointer", pg, &seven, "7"},
		{"nil pointer", pg, nilPtr, "NULL"},
		{"named string", pg, status("active"), "'active'"},
		{"null valuer", pg, sql.NullString{}, "NULL"},
		{"valuer", pg, sql.NullString{String: "x", Valid: true}, "'x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Literal(tt.in))
		})
	}
}
