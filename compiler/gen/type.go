package gen

import (
	"go/token"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/schema"
)

// Graph holds the entities of one generated package.
type Graph struct {
	*Config
	// Package is the resolved name of the generated package.
	Package string
	// Nodes are the entities in schema order.
	Nodes []*Type
}

// Type is an entity to generate.
type Type struct {
	*load.Entity
	// Info is the descriptor the generated code reproduces.
	Info   *schema.TypeInfo
	Fields []*Field
}

// Field is a column of a generated entity.
type Field struct {
	*load.Column
	Kind schema.Kind
	// StructField is the Go field name.
	StructField string
}

// NewGraph validates s and prepares it for generation.
func NewGraph(c *Config, s *load.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config is required")
	}
	if s == nil || len(s.Entities) == 0 {
		return nil, NewSchemaError("", "", "schema declares no entities", nil)
	}
	g := &Graph{Config: c, Package: c.pkg(s.Package)}
	if !token.IsIdentifier(g.Package) {
		return nil, NewConfigError("Package", g.Package, "not a valid package name")
	}
	for _, e := range s.Entities {
		t, err := newType(e)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, t)
	}
	return g, nil
}

func newType(e *load.Entity) (*Type, error) {
	if !token.IsExported(e.Name) || !token.IsIdentifier(e.Name) {
		return nil, NewSchemaError(e.Name, "", "entity name must be an exported Go identifier", nil)
	}
	info, err := e.TypeInfo()
	if err != nil {
		return nil, NewSchemaError(e.Name, "", "invalid entity", err)
	}
	t := &Type{Entity: e, Info: info}
	seen := make(map[string]string, len(e.Columns))
	for _, c := range e.Columns {
		kind, err := c.Kind()
		if err != nil {
			return nil, NewSchemaError(e.Name, c.Name, "", err)
		}
		f := &Field{Column: c, Kind: kind, StructField: c.Field}
		if f.StructField == "" {
			f.StructField = pascal(c.Name)
		}
		if !token.IsExported(f.StructField) || !token.IsIdentifier(f.StructField) {
			return nil, NewSchemaError(e.Name, c.Name, "cannot derive an exported Go field name", nil)
		}
		if prev, ok := seen[f.StructField]; ok {
			return nil, NewSchemaError(e.Name, c.Name, "Go field "+f.StructField+" clashes with column "+prev, nil)
		}
		seen[f.StructField] = c.Name
		t.Fields = append(t.Fields, f)
	}
	return t, nil
}

// FileName returns the name of the file the entity is generated into.
func (t *Type) FileName() string {
	return inflect.Underscore(t.Name) + ".go"
}

// InfoName returns the name of the generated descriptor variable.
func (t *Type) InfoName() string { return t.Name + "Info" }

// PredicateName returns the name of the generated predicate field of f.
func (t *Type) PredicateName(f *Field) string { return t.Name + f.StructField }

// Optional reports whether the Go field is a pointer.
func (f *Field) Optional() bool {
	return f.Column.Nullable && f.Kind != schema.KindBytes
}

// acronyms are kept upper-case in Go names.
var acronyms = map[string]bool{
	"API":  true,
	"HTTP": true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"SQL":  true,
	"URL":  true,
	"UUID": true,
}

// pascal converts a column name such as "user_id" to a Go name ("UserID").
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	// A Caser is stateful and must not be shared between goroutines.
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		if u := strings.ToUpper(w); acronyms[u] {
			b.WriteString(u)
			continue
		}
		b.WriteString(caser.String(w))
	}
	return b.String()
}
