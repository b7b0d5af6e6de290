package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/engine"
	"github.com/syssam/strata/schema"
)

// GenCmd generates Go code from a schema.
type GenCmd struct {
	Schema  string `arg:"" help:"Schema file or directory" type:"path"`
	Target  string `short:"o" required:"" help:"Output directory" type:"path"`
	Package string `help:"Package name of the generated code"`
	Header  string `help:"Header comment of generated files"`
	Runtime string `help:"Import path of the strata runtime"`
	Workers int    `help:"Files generated in parallel" default:"0"`
}

func (c *GenCmd) Run(ctx context.Context, out io.Writer) error {
	s, err := load.Load(c.Schema)
	if err != nil {
		return err
	}
	opts := []gen.Option{gen.WithTarget(c.Target)}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.Header != "" {
		opts = append(opts, gen.WithHeader(c.Header))
	}
	if c.Runtime != "" {
		opts = append(opts, gen.WithRuntime(c.Runtime))
	}
	if c.Workers > 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	if err := gen.Generate(ctx, s, opts...); err != nil {
		return err
	}
	fmt.Fprintf(out, "generated %d entities in %s\n", len(s.Entities), c.Target)
	return nil
}

// commandArgs are the arguments shared by render and exec.
type commandArgs struct {
	Command       string            `arg:"" enum:"insert,update,delete,select" help:"Command to run (${enum})"`
	Schema        string            `arg:"" help:"Schema file or directory" type:"path"`
	Entity        string            `short:"e" required:"" help:"Entity name"`
	Set           map[string]string `short:"s" help:"Column values as column=value, null for NULL"`
	Where         map[string]string `short:"w" help:"Select filters as column=value"`
	Strategy      string            `default:"auto" enum:"auto,nonquery,reader,scalar" help:"Execution strategy (${enum})"`
	Source        string            `help:"Caller name reported in lock conflicts"`
	IgnoreVersion bool              `help:"Neither check nor increment the version column"`
	Force         bool              `help:"Hard delete soft-deletable rows, or include them in select"`
}

// operation builds the operation of the arguments over a schema.Record.
func (a *commandArgs) operation() (*engine.Operation, error) {
	s, err := load.Load(a.Schema)
	if err != nil {
		return nil, err
	}
	ent, ok := s.Entity(a.Entity)
	if !ok {
		return nil, fmt.Errorf("entity %q not found in %s", a.Entity, a.Schema)
	}
	info, err := ent.TypeInfo()
	if err != nil {
		return nil, err
	}
	cmd, ok := engine.ParseCommand(a.Command)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", a.Command)
	}
	strategy, ok := engine.ParseStrategy(a.Strategy)
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", a.Strategy)
	}
	rec := schema.Record{}
	for name, raw := range a.Set {
		v, err := columnValue(ent, name, raw)
		if err != nil {
			return nil, err
		}
		rec[name] = v
	}
	opts := []engine.OpOption{
		engine.WithInfo(info),
		engine.WithStrategy(strategy),
		engine.WithSource(a.Source),
	}
	if a.IgnoreVersion {
		opts = append(opts, engine.IgnoreVersion())
	}
	if a.Force {
		opts = append(opts, engine.ForceDelete())
	}
	// Map order is random; filters are rendered by column name.
	names := make([]string, 0, len(a.Where))
	for name := range a.Where {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := columnValue(ent, name, a.Where[name])
		if err != nil {
			return nil, err
		}
		if v == nil {
			opts = append(opts, engine.Where(sql.FieldIsNull(name)))
			continue
		}
		opts = append(opts, engine.Where(sql.FieldEQ(name, v)))
	}
	return engine.NewOperation(cmd, &rec, opts...), nil
}

// columnValue parses raw as a value of the named column.
func columnValue(ent *load.Entity, name, raw string) (any, error) {
	var col *load.Column
	for _, c := range ent.Columns {
		if c.Name == name {
			col = c
			break
		}
	}
	if col == nil {
		return nil, fmt.Errorf("entity %s has no column %q", ent.Name, name)
	}
	if raw == "null" {
		return nil, nil
	}
	kind, err := col.Kind()
	if err != nil {
		return nil, err
	}
	v, err := parseValue(kind, raw)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	return v, nil
}

func parseValue(kind schema.Kind, raw string) (any, error) {
	switch kind {
	case schema.KindBool:
		return strconv.ParseBool(raw)
	case schema.KindInt:
		n, err := strconv.Atoi(raw)
		return n, err
	case schema.KindInt32:
		n, err := strconv.ParseInt(raw, 10, 32)
		return int32(n), err
	case schema.KindInt64:
		return strconv.ParseInt(raw, 10, 64)
	case schema.KindFloat64:
		return strconv.ParseFloat(raw, 64)
	case schema.KindDecimal:
		return decimal.NewFromString(raw)
	case schema.KindTime:
		return time.Parse(time.RFC3339, raw)
	case schema.KindBytes:
		return []byte(raw), nil
	case schema.KindString:
		return raw, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

// RenderCmd prints the statement of a command for a dialect.
type RenderCmd struct {
	Args    commandArgs `embed:""`
	Dialect string      `short:"d" default:"postgres" help:"Dialect to render for"`
	Pretty  bool        `help:"Render one clause per line"`
}

func (c *RenderCmd) Run(out io.Writer) error {
	// Build never touches the connection.
	drv := sql.NewDriver(c.Dialect, sql.Conn{})
	eng, err := engine.New(drv, engine.WithPretty(c.Pretty))
	if err != nil {
		return err
	}
	op, err := c.Args.operation()
	if err != nil {
		return err
	}
	st, err := eng.Build(op)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, st.SQL)
	for _, p := range st.Params {
		fmt.Fprintf(out, "-- %s = %s\n", p.Key, eng.Dialect().Literal(p.Value))
	}
	fmt.Fprintln(out, "-- debug:")
	fmt.Fprintln(out, st.DebugSQL)
	return nil
}

// ExecCmd executes a command and prints the resulting entity.
type ExecCmd struct {
	Args   commandArgs `embed:""`
	Driver string      `default:"sqlite" help:"database/sql driver name (postgres, mysql, sqlite)"`
	DSN    string      `required:"" help:"Data source name"`
	Config string      `type:"existingfile" help:"Engine configuration file"`
}

// result is the printed outcome of a write.
type result struct {
	Status   string         `yaml:"status"`
	Affected int64          `yaml:"affected"`
	Entity   map[string]any `yaml:"entity"`
}

func (c *ExecCmd) Run(ctx context.Context, out io.Writer) error {
	var opts []engine.Option
	if c.Config != "" {
		cfg, err := engine.LoadConfig(c.Config)
		if err != nil {
			return err
		}
		opts = cfg.Options(os.Stderr)
	}
	drv, err := sql.Open(c.Driver, c.DSN)
	if err != nil {
		return err
	}
	defer drv.Close()
	eng, err := engine.New(drv, opts...)
	if err != nil {
		return err
	}
	op, err := c.Args.operation()
	if err != nil {
		return err
	}
	if op.Command == engine.OpSelect {
		cur, err := engine.Query[schema.Record](ctx, eng, op)
		if err != nil {
			return err
		}
		rows := []map[string]any{}
		for rec, err := range cur.All() {
			if err != nil {
				return err
			}
			rows = append(rows, display(*rec))
		}
		return encode(out, rows)
	}
	o := eng.Run(ctx, op)
	if o.Err != nil {
		return o.Err
	}
	rec := op.Entity.(*schema.Record)
	return encode(out, result{
		Status:   o.Status.String(),
		Affected: o.Affected,
		Entity:   display(*rec),
	})
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// display renders byte slices of r as text.
func display(r schema.Record) map[string]any {
	m := make(map[string]any, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			v = strings.ToValidUTF8(string(b), "?")
		}
		m[k] = v
	}
	return m
}
