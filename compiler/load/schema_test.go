package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/schema"
)

func TestLoad(t *testing.T) {
	s, err := Load("testdata/schema.yaml")
	require.NoError(t, err)
	assert.Equal(t, "models", s.Package)
	require.Len(t, s.Entities, 2)

	user, ok := s.Entity("User")
	require.True(t, ok)
	assert.Equal(t, "users", user.Table)
	info, err := user.TypeInfo()
	require.NoError(t, err)
	assert.Equal(t, "id", info.Identity().Name)
	assert.Equal(t, "version", info.Version().Name)
	assert.Len(t, info.Keys(), 1)

	line, ok := s.Entity("OrderLine")
	require.True(t, ok)
	info, err = line.TypeInfo()
	require.NoError(t, err)
	assert.Equal(t, "sales", info.Schema)
	assert.Equal(t, "order_lines", info.Table)
	require.Len(t, info.Sequences(), 2)
	code := info.Sequences()[1]
	assert.Equal(t, "order_code_seq", code.Sequence.Name)
	assert.Equal(t, "ORD", code.Sequence.Prefix)
	assert.Equal(t, 6, code.Sequence.Padding)
	assert.Equal(t, schema.KindDecimal, info.Version().Kind)
	assert.Equal(t, schema.KindTime, info.SoftDelete().Kind)

	_, ok = s.Entity("Missing")
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	s, err := Load("testdata/split")
	require.NoError(t, err)
	assert.Equal(t, "models", s.Package)
	require.Len(t, s.Entities, 2)
	assert.Equal(t, "User", s.Entities[0].Name)
	assert.Equal(t, "Category", s.Entities[1].Name)
	assert.Equal(t, "categories", s.Entities[1].Table)

	_, err = Load("testdata/missing")
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "no entities"},
		{"unknown field", "entities:\n  - name: A\n    colums: []\n", "decode schema"},
		{"no name", "entities:\n  - columns: [{name: id, type: int}]\n", "entity without name"},
		{"duplicate", "entities:\n  - {name: A, columns: [{name: id, type: int}]}\n  - {name: A, columns: [{name: id, type: int}]}\n", "duplicate entity"},
		{"unknown type", "entities:\n  - {name: A, columns: [{name: id, type: uuid}]}\n", "unknown type"},
		{"no columns", "entities:\n  - {name: A}\n", "no columns"},
		{"two versions", "entities:\n  - {name: A, columns: [{name: v1, type: int, version: true}, {name: v2, type: int, version: true}]}\n", "more than one version"},
		{"string version", "entities:\n  - {name: A, columns: [{name: v, type: string, version: true}]}\n", "version column of kind string"},
		{"unnamed sequence", "entities:\n  - {name: A, columns: [{name: id, type: int, sequence: {prefix: X}}]}\n", "sequence without name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTableName(t *testing.T) {
	tests := map[string]string{
		"User":      "users",
		"Category":  "categories",
		"OrderLine": "order_lines",
	}
	for in, want := range tests {
		assert.Equal(t, want, TableName(in), in)
	}
}
