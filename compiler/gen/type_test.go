package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/compiler/load"
)

func TestPascal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"id", "ID"},
		{"user_id", "UserID"},
		{"name", "Name"},
		{"deleted_at", "DeletedAt"},
		{"homepage_url", "HomepageURL"},
		{"firstName", "FirstName"},
		{"order-line", "OrderLine"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, pascal(tt.input))
		})
	}
}

func TestNewGraph(t *testing.T) {
	s := &load.Schema{
		Package: "models",
		Entities: []*load.Entity{{
			Name:  "OrderLine",
			Table: "order_lines",
			Columns: []*load.Column{
				{Name: "id", Type: "int64", Key: true},
				{Name: "note", Type: "string", Nullable: true},
				{Name: "payload", Type: "bytes", Nullable: true},
				{Name: "code", Type: "string", Field: "Reference"},
			},
		}},
	}
	g, err := NewGraph(&Config{Target: t.TempDir()}, s)
	require.NoError(t, err)
	assert.Equal(t, "models", g.Package)
	require.Len(t, g.Nodes, 1)

	typ := g.Nodes[0]
	assert.Equal(t, "order_line.go", typ.FileName())
	assert.Equal(t, "OrderLineInfo", typ.InfoName())
	require.Len(t, typ.Fields, 4)
	assert.Equal(t, "ID", typ.Fields[0].StructField)
	assert.Equal(t, "OrderLineID", typ.PredicateName(typ.Fields[0]))
	assert.True(t, typ.Fields[1].Optional())
	assert.False(t, typ.Fields[2].Optional(), "byte slices are nullable without a pointer")
	assert.Equal(t, "Reference", typ.Fields[3].StructField)
	assert.Len(t, typ.Info.Keys(), 1)
}

func TestNewGraphErrors(t *testing.T) {
	entity := func(name string, cols ...*load.Column) *load.Schema {
		return &load.Schema{Entities: []*load.Entity{{Name: name, Table: "t", Columns: cols}}}
	}
	tests := []struct {
		name      string
		schema    *load.Schema
		schemaErr bool
	}{
		{"no entities", &load.Schema{}, true},
		{"unexported entity", entity("user", &load.Column{Name: "id", Type: "int"}), true},
		{"unknown type", entity("User", &load.Column{Name: "id", Type: "uuid"}), true},
		{"field clash", entity("User", &load.Column{Name: "user_id", Type: "int"}, &load.Column{Name: "user-id", Type: "int"}), true},
		{"bad field name", entity("User", &load.Column{Name: "id", Type: "int", Field: "id"}), true},
		{"bad package", &load.Schema{Package: "my-models", Entities: entity("User", &load.Column{Name: "id", Type: "int"}).Entities}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(&Config{Target: "out"}, tt.schema)
			require.Error(t, err)
			assert.Equal(t, tt.schemaErr, IsSchemaError(err))
		})
	}
}
