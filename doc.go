// Package strata is a dialect-aware SQL generation and execution engine.
//
// It turns declarative entity descriptors, filter predicates and a command
// (insert, update, delete, select) into parameterized SQL together with a
// debug rendering that has every value substituted, and executes the result
// under optimistic concurrency control.
//
// # Packages
//
//   - dialect: database variants and the driver interfaces
//   - dialect/sql: the dual-stream statement builder, predicates and the database/sql driver
//   - schema: entity descriptors and the descriptor registry
//   - engine: sequence/identity resolution, lock orchestration and command dispatch
//   - compiler/gen: generates static descriptors from a YAML schema
//
// # Usage
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg := schema.NewRegistry()
//	reg.MustRegister(models.UserInfo)
//	eng, err := engine.New(drv, engine.WithRegistry(reg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := eng.Update(ctx, user, engine.WithSource("users.Rename"))
//	if strata.IsLockConflict(err) {
//	    // reload and retry
//	}
//
// This package holds the error taxonomy shared by the other packages.
package strata
