package schema

import "reflect"

// Record is an entity without a Go type of its own: column values keyed by
// column name. It backs descriptors loaded at runtime, such as the ones the
// code generator renders statements for.
type Record map[string]any

// RecordColumn describes a column of a Record entity.
func RecordColumn(name string, kind Kind, opts ...ColumnOption) *ColumnInfo {
	c := &ColumnInfo{
		Name:     name,
		Field:    name,
		Kind:     kind,
		Nullable: true,
		get: func(e any) any {
			return (*e.(*Record))[name]
		},
		set: func(e, v any) error {
			r := e.(*Record)
			if *r == nil {
				*r = make(Record)
			}
			if b, ok := v.([]byte); ok && kind == KindString {
				v = string(b)
			}
			(*r)[name] = v
			return nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DescribeRecord builds the TypeInfo of a Record entity. Record descriptors
// are not resolvable through Registry.For since they share one Go type.
func DescribeRecord(name, table string, cols ...*ColumnInfo) (*TypeInfo, error) {
	return build(recordType, name, table, cols)
}

var recordType = reflect.TypeFor[*Record]()
