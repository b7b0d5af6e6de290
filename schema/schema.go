package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/strata"
)

// Sequence describes the database sequence feeding a column.
type Sequence struct {
	Name    string // Sequence name, optionally schema qualified.
	Prefix  string // Literal prepended to padded values.
	Padding int    // Zero-padded width. Zero selects the plain next-value form.
}

// Padded reports whether the padded, prefixed form is selected.
func (s *Sequence) Padded() bool { return s != nil && s.Padding > 0 }

// ColumnInfo describes one column of an entity. It is owned by its TypeInfo
// and immutable once the TypeInfo is built.
type ColumnInfo struct {
	Name         string    // Column name in the database.
	Field        string    // Go field name on the entity.
	Kind         Kind      // Storage kind.
	Nullable     bool      // The Go field is a pointer (or byte slice).
	IsKey        bool      // Part of the primary key.
	IsVersion    bool      // Optimistic lock version column.
	IsIdentity   bool      // Value may be assigned by the database on insert.
	IsSoftDelete bool      // Soft-delete flag or timestamp.
	Sequence     *Sequence // Non-nil for sequence-backed columns.

	get func(entity any) any
	set func(entity, value any) error
}

// Get returns the current value of the column on entity.
func (c *ColumnInfo) Get(entity any) any { return c.get(entity) }

// Set assigns a database value to the column on entity, converting it to
// the field type the way database/sql converts scan destinations.
func (c *ColumnInfo) Set(entity, value any) error { return c.set(entity, value) }

// IsSequence reports whether the column is sequence backed.
func (c *ColumnInfo) IsSequence() bool { return c.Sequence != nil }

// ColumnOption configures a ColumnInfo.
type ColumnOption func(*ColumnInfo)

// Key marks the column as part of the primary key.
func Key() ColumnOption { return func(c *ColumnInfo) { c.IsKey = true } }

// Version marks the column as the optimistic lock version.
func Version() ColumnOption { return func(c *ColumnInfo) { c.IsVersion = true } }

// Identity marks the column as database assigned on insert.
func Identity() ColumnOption { return func(c *ColumnInfo) { c.IsIdentity = true } }

// SoftDelete marks the column as the soft-delete flag.
func SoftDelete() ColumnOption { return func(c *ColumnInfo) { c.IsSoftDelete = true } }

// FieldName sets the Go field name reported by the column.
func FieldName(name string) ColumnOption { return func(c *ColumnInfo) { c.Field = name } }

// SequenceOf backs the column with a database sequence. A non-zero padding
// selects the zero-padded, prefixed form.
func SequenceOf(name, prefix string, padding int) ColumnOption {
	return func(c *ColumnInfo) {
		c.Sequence = &Sequence{Name: name, Prefix: prefix, Padding: padding}
	}
}

// Column describes a column of entity type E whose Go field has type V.
// The accessors are plain closures; no reflection runs when statements
// are built or rows are materialized.
//
//	schema.Column("version",
//	    func(u *User) int64 { return u.Version },
//	    func(u *User, v int64) { u.Version = v },
//	    schema.Version(),
//	)
func Column[E, V any](name string, get func(*E) V, set func(*E, V), opts ...ColumnOption) *ColumnInfo {
	kind, nullable := kindOf[V]()
	c := &ColumnInfo{
		Name:     name,
		Field:    name,
		Kind:     kind,
		Nullable: nullable,
		get:      func(e any) any { return get(e.(*E)) },
	}
	c.set = func(e, v any) error {
		if x, ok := v.(V); ok {
			set(e.(*E), x)
			return nil
		}
		var n sql.Null[V]
		if err := n.Scan(v); err != nil {
			return fmt.Errorf("schema: set column %q: %w", name, err)
		}
		set(e.(*E), n.V)
		return nil
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TypeInfo describes one entity type: its table and ordered columns.
// It is built once per type and never mutated afterwards.
type TypeInfo struct {
	Name    string        // Entity name.
	Schema  string        // Database schema, may be empty.
	Table   string        // Table name.
	Columns []*ColumnInfo // Columns in declaration order.

	typ        reflect.Type
	keys       []*ColumnInfo
	sequences  []*ColumnInfo
	identity   *ColumnInfo
	version    *ColumnInfo
	softDelete *ColumnInfo
	byName     map[string]*ColumnInfo
}

// Describe builds the TypeInfo of entity type E. The table may be schema
// qualified ("sales.orders").
func Describe[E any](name, table string, cols ...*ColumnInfo) (*TypeInfo, error) {
	return build(reflect.TypeFor[*E](), name, table, cols)
}

// MustDescribe is like Describe but panics if the description is invalid.
func MustDescribe[E any](name, table string, cols ...*ColumnInfo) *TypeInfo {
	t, err := Describe[E](name, table, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func build(typ reflect.Type, name, table string, cols []*ColumnInfo) (*TypeInfo, error) {
	if name == "" {
		return nil, strata.NewConfigError("name", "entity name is required")
	}
	if table == "" {
		return nil, strata.NewConfigError(name, "table name is required")
	}
	if len(cols) == 0 {
		return nil, strata.NewConfigError(name, "entity has no columns")
	}
	t := &TypeInfo{
		Name:    name,
		Table:   table,
		Columns: cols,
		typ:     typ,
		byName:  make(map[string]*ColumnInfo, len(cols)),
	}
	if i := strings.LastIndex(table, "."); i > 0 {
		t.Schema, t.Table = table[:i], table[i+1:]
	}
	for _, c := range cols {
		lower := strings.ToLower(c.Name)
		if _, ok := t.byName[lower]; ok {
			return nil, strata.NewConfigError(name, "duplicate column %q", c.Name)
		}
		t.byName[lower] = c
		if c.IsKey {
			t.keys = append(t.keys, c)
		}
		if c.IsSequence() {
			t.sequences = append(t.sequences, c)
		}
		if c.IsIdentity {
			if t.identity != nil {
				return nil, strata.NewConfigError(name, "more than one identity column (%q, %q)", t.identity.Name, c.Name)
			}
			t.identity = c
		}
		if c.IsVersion {
			if t.version != nil {
				return nil, strata.NewConfigError(name, "more than one version column (%q, %q)", t.version.Name, c.Name)
			}
			if !c.Kind.Versionable() {
				return nil, strata.WrapConfigError(c.Name, strata.ErrUnsupportedKind, "version column of kind %s", c.Kind)
			}
			t.version = c
		}
		if c.IsSoftDelete {
			if t.softDelete != nil {
				return nil, strata.NewConfigError(name, "more than one soft-delete column (%q, %q)", t.softDelete.Name, c.Name)
			}
			if c.Kind != KindBool && c.Kind != KindTime {
				return nil, strata.NewConfigError(c.Name, "soft-delete column must be bool or time, got %s", c.Kind)
			}
			t.softDelete = c
		}
	}
	return t, nil
}

// Keys returns the primary key columns.
func (t *TypeInfo) Keys() []*ColumnInfo { return t.keys }

// Identity returns the identity column, or nil.
func (t *TypeInfo) Identity() *ColumnInfo { return t.identity }

// Version returns the version column, or nil.
func (t *TypeInfo) Version() *ColumnInfo { return t.version }

// Sequences returns the sequence-backed columns.
func (t *TypeInfo) Sequences() []*ColumnInfo { return t.sequences }

// SoftDelete returns the soft-delete column, or nil.
func (t *TypeInfo) SoftDelete() *ColumnInfo { return t.softDelete }

// HasSoftDelete reports whether the entity has a soft-delete column.
func (t *TypeInfo) HasSoftDelete() bool { return t.softDelete != nil }

// Column returns the column with the given name, matched case-insensitively.
func (t *TypeInfo) Column(name string) (*ColumnInfo, bool) {
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

// QualifiedTable returns the table name prefixed by its schema, if any.
func (t *TypeInfo) QualifiedTable() string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

// Type returns the pointer type of entities described by t.
func (t *TypeInfo) Type() reflect.Type { return t.typ }
