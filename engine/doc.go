// Package engine executes entity commands against a dialect.Driver.
//
// An Engine resolves the descriptor of an entity, fetches sequence values
// and omits identity columns on insert, renders the statement with the
// dual-stream builder and dispatches it with the strategy the command and
// dialect call for. Updates and deletes of versioned entities run under
// optimistic locking: the version column is compared in the WHERE clause
// and a statement that touches no rows is reported as a lock conflict.
//
// Commands run in their own transaction unless one is given with WithTx:
//
//	eng, err := engine.New(drv, engine.WithRegistry(reg))
//	if err != nil {
//		return err
//	}
//	if _, err := eng.Update(ctx, user); strata.IsLockConflict(err) {
//		// reload and retry
//	}
//
// Build renders an operation without touching the database, which is how
// the CLI prints the SQL of a command.
package engine
