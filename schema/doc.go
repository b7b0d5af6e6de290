// Package schema describes entities as plain data.
//
// A TypeInfo lists the table and the ordered columns of one entity type,
// and marks the key columns, the identity column, the optimistic lock
// version column, sequence-backed columns and the soft-delete column. Column
// accessors are closures over the entity's fields, so building statements
// and materializing rows never inspects types at runtime:
//
//	var UserType = schema.MustDescribe[User]("User", "users",
//	    schema.Column("id",
//	        func(u *User) int64 { return u.ID },
//	        func(u *User, v int64) { u.ID = v },
//	        schema.Key(), schema.Identity(),
//	    ),
//	    schema.Column("name",
//	        func(u *User) string { return u.Name },
//	        func(u *User, v string) { u.Name = v },
//	    ),
//	    schema.Column("version",
//	        func(u *User) int64 { return u.Version },
//	        func(u *User, v int64) { u.Version = v },
//	        schema.Version(),
//	    ),
//	)
//
// Descriptors are usually generated from a YAML schema by compiler/gen and
// collected in a Registry at startup.
package schema
