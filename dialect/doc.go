// Package dialect describes the databases supported by strata.
//
// A Dialect is a small, closed set of policy objects selected once through
// Open. Each one answers capability questions and generates the SQL
// fragments that differ between databases:
//
//	d, err := dialect.Open(dialect.Postgres)
//	d.Quote("public.users")                        // "public"."users"
//	d.Placeholder(2)                               // $2
//	d.SequenceNextSQL("order_seq")                 // SELECT nextval('order_seq')
//	d.PaddedSequenceNextSQL("order_seq", "ORD", 6) // SELECT 'ORD' || LPAD(...)
//
// # Capabilities
//
//   - Postgres: sequences, RETURNING, numbered placeholders ($n)
//   - MySQL: identity columns read back through LastInsertId
//   - SQLite: identity columns read back through LastInsertId (rowid)
//   - Oracle: sequences, numbered placeholders (:n)
//   - SQLServer: sequences, OUTPUT INSERTED, numbered placeholders (@pN)
//   - DB2: sequences, SELECT ... FROM FINAL TABLE (...)
//
// # Driver Interface
//
// The package also defines the Driver, Tx and ExecQuerier interfaces that
// the execution engine runs statements through. dialect/sql adapts
// database/sql to them.
package dialect
