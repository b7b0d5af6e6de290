package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/strata/dialect"
)

// indentUnit is the text written per indentation level in pretty mode.
const indentUnit = "    "

// Direction is the direction of a bound parameter.
type Direction uint8

// Parameter directions.
const (
	In Direction = iota
	Out
	InOut
)

// Param is a bound parameter of a statement.
type Param struct {
	Key       string    // Unique key within the statement.
	Value     any       // Bound value.
	Direction Direction // In unless stated otherwise.
	Size      int       // Optional size hint for variable-length types.
}

// Statement is the output of a Builder: the parameterized statement, its
// debug rendering and the bound parameters in registration order. A
// Statement is a snapshot and is never modified after it is produced.
type Statement struct {
	SQL      string  // Parameterized SQL, sent to the database.
	DebugSQL string  // SQL with literal values in place of placeholders, for humans.
	Params   []Param // Bound parameters, unique by key.

	// refs holds, for every placeholder in SQL, the index of its parameter.
	refs     []int
	numbered bool
}

// Args returns the driver arguments of the statement. Dialects with
// numbered placeholders receive one argument per parameter; positional
// dialects receive one argument per placeholder occurrence.
func (s *Statement) Args() []any {
	if s.numbered {
		args := make([]any, len(s.Params))
		for i, p := range s.Params {
			args[i] = p.Value
		}
		return args
	}
	args := make([]any, len(s.refs))
	for i, ref := range s.refs {
		args[i] = s.Params[ref].Value
	}
	return args
}

// Param returns the parameter registered under key.
func (s *Statement) Param(key string) (Param, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}

// Builder accumulates a statement in two synchronized streams: the raw
// stream holds placeholders, the debug stream holds the literal rendering of
// each bound value at the same position. Apart from that substitution the
// two streams are always identical.
//
// In pretty mode lines are broken and indented. Otherwise line breaks are
// suppressed and consecutive lines are joined by a single space.
type Builder struct {
	dialect   dialect.Dialect
	pretty    bool
	raw       strings.Builder
	debug     strings.Builder
	params    []Param
	index     map[string]int
	refs      []int
	indent    int
	lineStart bool
	auto      int
}

// NewBuilder returns a Builder for the given dialect.
func NewBuilder(d dialect.Dialect, pretty bool) *Builder {
	return &Builder{
		dialect: d,
		pretty:  pretty,
		index:   make(map[string]int),
	}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() dialect.Dialect { return b.dialect }

// Pretty reports whether the builder breaks and indents lines.
func (b *Builder) Pretty() bool { return b.pretty }

// Quote quotes an identifier for the builder's dialect.
func (b *Builder) Quote(ident string) string { return b.dialect.Quote(ident) }

// Append appends a raw SQL fragment to both streams.
func (b *Builder) Append(s string) *Builder {
	if s == "" {
		return b
	}
	b.startLine()
	b.write(s)
	return b
}

// AppendLine appends s and ends the current line.
func (b *Builder) AppendLine(s string) *Builder {
	b.Append(s)
	return b.NewLine()
}

// NewLine ends the current line. In compact mode the next fragment is
// separated from the previous one by a single space instead.
func (b *Builder) NewLine() *Builder {
	if b.lineStart {
		return b
	}
	if b.pretty {
		b.write("\n")
	}
	b.lineStart = true
	return b
}

// AppendParam registers a parameter under key and appends its placeholder
// to the raw stream and its literal to the debug stream. A key is
// registered once; appending an existing key references the first value.
func (b *Builder) AppendParam(key string, value any) *Builder {
	i, ok := b.index[key]
	if !ok {
		i = len(b.params)
		b.params = append(b.params, Param{Key: key, Value: value})
		b.index[key] = i
	}
	b.refs = append(b.refs, i)
	b.startLine()
	b.raw.WriteString(b.placeholder(i))
	b.debug.WriteString(b.dialect.Literal(b.params[i].Value))
	return b
}

// Arg appends a parameter under a generated key.
func (b *Builder) Arg(value any) *Builder {
	key := "p" + strconv.Itoa(b.auto)
	for {
		if _, ok := b.index[key]; !ok {
			break
		}
		b.auto++
		key = "p" + strconv.Itoa(b.auto)
	}
	b.auto++
	return b.AppendParam(key, value)
}

// AppendComma starts the n-th (0-based) element of a comma separated list
// on a new line. The first element gets a leading spacer instead of a
// comma so that the elements line up in pretty mode.
func (b *Builder) AppendComma(n int) *Builder {
	b.NewLine()
	if b.pretty {
		if n == 0 {
			return b.Append("    ")
		}
		return b.Append("  , ")
	}
	if n > 0 {
		b.write(",")
	}
	return b
}

// AppendAnd starts the n-th (0-based) condition of a conjunction on a new
// line, with the same alignment rules as AppendComma.
func (b *Builder) AppendAnd(n int) *Builder {
	b.NewLine()
	if b.pretty {
		if n == 0 {
			return b.Append("    ")
		}
		return b.Append("AND ")
	}
	if n > 0 {
		b.Append("AND")
		b.lineStart = true
	}
	return b
}

// Indent increases the indentation level. It only has an effect in pretty
// mode on dialects that nest data-change statements (FINAL TABLE).
func (b *Builder) Indent() *Builder {
	if b.pretty && b.dialect.SupportsFinalTable() {
		b.indent++
	}
	return b
}

// Unindent decreases the indentation level set by Indent.
func (b *Builder) Unindent() *Builder {
	if b.pretty && b.dialect.SupportsFinalTable() && b.indent > 0 {
		b.indent--
	}
	return b
}

// Join appends the fragments separated by ", " on the current line.
func (b *Builder) Join(parts ...string) *Builder {
	return b.Append(strings.Join(parts, ", "))
}

// Len returns the number of bytes in the raw stream.
func (b *Builder) Len() int { return b.raw.Len() }

// Statement returns a snapshot of the statement built so far. It can be
// called at any time; later appends do not affect returned snapshots.
func (b *Builder) Statement() *Statement {
	params := make([]Param, len(b.params))
	copy(params, b.params)
	refs := make([]int, len(b.refs))
	copy(refs, b.refs)
	return &Statement{
		SQL:      strings.TrimRight(b.raw.String(), " \n"),
		DebugSQL: strings.TrimRight(b.debug.String(), " \n"),
		Params:   params,
		refs:     refs,
		numbered: b.dialect.NumberedPlaceholders(),
	}
}

func (b *Builder) placeholder(i int) string {
	if b.dialect.NumberedPlaceholders() {
		return b.dialect.Placeholder(i + 1)
	}
	return b.dialect.Placeholder(len(b.refs))
}

// startLine writes the indentation (pretty) or the joining space (compact)
// owed by a preceding line break.
func (b *Builder) startLine() {
	if !b.lineStart {
		return
	}
	b.lineStart = false
	if b.pretty {
		if b.indent > 0 {
			b.write(strings.Repeat(indentUnit, b.indent))
		}
		return
	}
	if s := b.raw.String(); s != "" && !strings.HasSuffix(s, " ") {
		b.write(" ")
	}
}

func (b *Builder) write(s string) {
	b.raw.WriteString(s)
	b.debug.WriteString(s)
}
