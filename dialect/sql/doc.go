// Package sql provides the statement builder, predicates and the
// database/sql backed driver used by the engine.
//
// # Builder
//
// A Builder writes every fragment to two streams at once. The raw stream
// carries dialect placeholders and is sent to the database; the debug
// stream carries the literal rendering of each bound value and is only
// logged:
//
//	b := sql.NewBuilder(dialect.MustOpen(dialect.Postgres), false)
//	b.Append(`UPDATE "users" SET "name" = `).AppendParam("name", "a8m")
//	st := b.Statement()
//	// st.SQL      = UPDATE "users" SET "name" = $1
//	// st.DebugSQL = UPDATE "users" SET "name" = 'a8m'
//
// Parameters are unique by key. Appending a key twice references the first
// value again; Statement.Args expands the references for positional
// dialects.
//
// # Predicates
//
// Predicates append a condition and bind its values:
//
//	sql.FieldEQ("name", "john")          // "name" = $1
//	sql.FieldIn("status", "a", "b")      // "status" IN ($1, $2)
//	sql.And(sql.FieldGT("age", 18), sql.FieldNotNull("email"))
//
// Typed helpers (StringField, OrderedField, BoolField) are used by
// generated code.
//
// # Drivers
//
// Open and OpenDB adapt a *database/sql.DB to dialect.Driver. StatsDriver
// and DebugDriver wrap any dialect.Driver to collect statistics or log
// statements with log/slog.
package sql
