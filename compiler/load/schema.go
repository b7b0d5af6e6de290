// Package load reads entity schemas declared in YAML files.
//
//	package: models
//	entities:
//	  - name: User
//	    columns:
//	      - {name: id, type: int64, key: true, identity: true}
//	      - {name: name, type: string}
//	      - {name: version, type: int64, version: true}
package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/schema"
)

// Schema is the content of one or more schema files.
type Schema struct {
	Package  string    `yaml:"package,omitempty"`
	Entities []*Entity `yaml:"entities"`
}

// Entity describes one entity type.
type Entity struct {
	Name    string    `yaml:"name"`
	Table   string    `yaml:"table,omitempty"` // Defaults to the snake-cased plural of Name.
	Comment string    `yaml:"comment,omitempty"`
	Columns []*Column `yaml:"columns"`
}

// Column describes one column of an entity.
type Column struct {
	Name       string    `yaml:"name"`
	Field      string    `yaml:"field,omitempty"` // Go field name, derived from Name when empty.
	Type       string    `yaml:"type"`            // Kind name, see schema.ParseKind.
	Nullable   bool      `yaml:"nullable,omitempty"`
	Key        bool      `yaml:"key,omitempty"`
	Identity   bool      `yaml:"identity,omitempty"`
	Version    bool      `yaml:"version,omitempty"`
	SoftDelete bool      `yaml:"soft_delete,omitempty"`
	Sequence   *Sequence `yaml:"sequence,omitempty"`
	Comment    string    `yaml:"comment,omitempty"`
}

// Sequence backs a column with a database sequence.
type Sequence struct {
	Name    string `yaml:"name"`
	Prefix  string `yaml:"prefix,omitempty"`
	Padding int    `yaml:"padding,omitempty"`
}

// Load reads the schema file at path, or every .yaml and .yml file of the
// directory at path, in lexical order.
func Load(path string) (*Schema, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	files := []string{path}
	if fi.IsDir() {
		if files, err = schemaFiles(path); err != nil {
			return nil, err
		}
	}
	s := &Schema{}
	for _, name := range files {
		part, err := parseFile(name)
		if err != nil {
			return nil, err
		}
		if err := s.merge(part); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func schemaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if ext := filepath.Ext(e.Name()); !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load: no schema files in %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

func parseFile(name string) (*Schema, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Parse decodes and validates a single schema document.
func Parse(r io.Reader) (*Schema, error) {
	s, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(r io.Reader) (*Schema, error) {
	s := &Schema{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: decode schema: %w", err)
	}
	return s, nil
}

func (s *Schema) merge(o *Schema) error {
	if o.Package != "" {
		if s.Package != "" && s.Package != o.Package {
			return fmt.Errorf("load: conflicting packages %q and %q", s.Package, o.Package)
		}
		s.Package = o.Package
	}
	s.Entities = append(s.Entities, o.Entities...)
	return nil
}

// Validate checks every entity and fills in defaulted names.
func (s *Schema) Validate() error {
	if len(s.Entities) == 0 {
		return errors.New("load: schema declares no entities")
	}
	seen := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return errors.New("load: entity without name")
		}
		if seen[e.Name] {
			return fmt.Errorf("load: duplicate entity %q", e.Name)
		}
		seen[e.Name] = true
		if e.Table == "" {
			e.Table = TableName(e.Name)
		}
		if _, err := e.TypeInfo(); err != nil {
			return fmt.Errorf("load: entity %q: %w", e.Name, err)
		}
	}
	return nil
}

// Entity returns the entity with the given name.
func (s *Schema) Entity(name string) (*Entity, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// TableName returns the default table of an entity: its snake-cased plural.
func TableName(entity string) string {
	return inflect.Pluralize(inflect.Underscore(entity))
}

// Kind returns the storage kind of the column.
func (c *Column) Kind() (schema.Kind, error) {
	k, ok := schema.ParseKind(strings.ToLower(c.Type))
	if !ok || k == schema.KindOther {
		return schema.KindOther, fmt.Errorf("column %q: unknown type %q", c.Name, c.Type)
	}
	return k, nil
}

// Options returns the column options matching the declared flags.
func (c *Column) Options() []schema.ColumnOption {
	var opts []schema.ColumnOption
	if c.Key {
		opts = append(opts, schema.Key())
	}
	if c.Identity {
		opts = append(opts, schema.Identity())
	}
	if c.Version {
		opts = append(opts, schema.Version())
	}
	if c.SoftDelete {
		opts = append(opts, schema.SoftDelete())
	}
	if c.Sequence != nil {
		opts = append(opts, schema.SequenceOf(c.Sequence.Name, c.Sequence.Prefix, c.Sequence.Padding))
	}
	if c.Field != "" {
		opts = append(opts, schema.FieldName(c.Field))
	}
	return opts
}

// TypeInfo builds the descriptor of the entity over schema.Record values,
// for rendering statements without generated Go types.
func (e *Entity) TypeInfo() (*schema.TypeInfo, error) {
	cols := make([]*schema.ColumnInfo, 0, len(e.Columns))
	for _, c := range e.Columns {
		if c.Name == "" {
			return nil, errors.New("column without name")
		}
		if c.Sequence != nil && c.Sequence.Name == "" {
			return nil, fmt.Errorf("column %q: sequence without name", c.Name)
		}
		kind, err := c.Kind()
		if err != nil {
			return nil, err
		}
		cols = append(cols, schema.RecordColumn(c.Name, kind, c.Options()...))
	}
	table := e.Table
	if table == "" {
		table = TableName(e.Name)
	}
	return schema.DescribeRecord(e.Name, table, cols...)
}
