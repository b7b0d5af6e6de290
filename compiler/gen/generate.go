package gen

import (
	"context"
	"os"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/schema"
)

// RegistryFile is the name of the file holding the package registration.
const RegistryFile = "strata.go"

// Generate writes the Go code of the entities of s: one file per entity with
// its struct, descriptor and predicate fields, and a registration file.
func Generate(ctx context.Context, s *load.Schema, opts ...Option) error {
	c, err := NewConfig(opts...)
	if err != nil {
		return err
	}
	g, err := NewGraph(c, s)
	if err != nil {
		return err
	}
	return g.Gen(ctx)
}

// Gen renders and writes every file of the graph in parallel.
func (g *Graph) Gen(ctx context.Context) error {
	if err := os.MkdirAll(g.Target, 0o755); err != nil {
		return NewGenerationError("write", g.Target, "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Workers)
	for _, t := range g.Nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(g.genEntity(t), t.FileName())
		})
	}
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return g.writeFile(g.genRegistry(), RegistryFile)
	})
	return eg.Wait()
}

func (g *Graph) schemaPkg() string  { return g.Runtime + "/schema" }
func (g *Graph) sqlPkg() string     { return g.Runtime + "/dialect/sql" }
func (g *Graph) decimalPkg() string { return "github.com/shopspring/decimal" }

// genEntity generates the entity file ({entity}.go).
func (g *Graph) genEntity(t *Type) *jen.File {
	f := g.newFile()
	f.ImportName(g.schemaPkg(), "schema")
	f.ImportName(g.sqlPkg(), "sql")
	f.ImportName(g.decimalPkg(), "decimal")
	g.genStruct(f, t)
	g.genDescriptor(f, t)
	g.genPredicates(f, t)
	return f
}

func (g *Graph) genStruct(f *jen.File, t *Type) {
	if t.Comment != "" {
		f.Comment(t.Comment)
	} else {
		f.Commentf("%s is the model entity for the %s schema.", t.Name, t.Name)
	}
	f.Type().Id(t.Name).StructFunc(func(group *jen.Group) {
		for _, fd := range t.Fields {
			tag := fd.Name
			if fd.Optional() {
				tag += ",omitempty"
			}
			field := group.Id(fd.StructField).Add(g.goType(fd)).Tag(map[string]string{"json": tag})
			if fd.Comment != "" {
				field.Comment(fd.Comment)
			}
		}
	})
}

// genDescriptor generates the schema.TypeInfo variable. Accessors are plain
// closures over the struct fields.
func (g *Graph) genDescriptor(f *jen.File, t *Type) {
	items := []jen.Code{jen.Lit(t.Name), jen.Lit(t.Table)}
	for _, fd := range t.Fields {
		args := []jen.Code{
			jen.Lit(fd.Name),
			jen.Func().Params(jen.Id("e").Op("*").Id(t.Name)).Add(g.goType(fd)).Block(
				jen.Return(jen.Id("e").Dot(fd.StructField)),
			),
			jen.Func().Params(jen.Id("e").Op("*").Id(t.Name), jen.Id("v").Add(g.goType(fd))).Block(
				jen.Id("e").Dot(fd.StructField).Op("=").Id("v"),
			),
		}
		args = append(args, g.columnOptions(fd)...)
		items = append(items, jen.Qual(g.schemaPkg(), "Column").Call(args...))
	}
	f.Commentf("%s describes the %s entity.", t.InfoName(), t.Name)
	f.Var().Id(t.InfoName()).Op("=").Qual(g.schemaPkg(), "MustDescribe").Types(jen.Id(t.Name)).Custom(jen.Options{
		Open:      "(",
		Close:     ")",
		Separator: ",",
		Multi:     true,
	}, items...)
}

func (g *Graph) columnOptions(fd *Field) []jen.Code {
	var opts []jen.Code
	opt := func(name string, args ...jen.Code) {
		opts = append(opts, jen.Qual(g.schemaPkg(), name).Call(args...))
	}
	if fd.Key {
		opt("Key")
	}
	if fd.Identity {
		opt("Identity")
	}
	if fd.Version {
		opt("Version")
	}
	if fd.SoftDelete {
		opt("SoftDelete")
	}
	if s := fd.Sequence; s != nil {
		opt("SequenceOf", jen.Lit(s.Name), jen.Lit(s.Prefix), jen.Lit(s.Padding))
	}
	opt("FieldName", jen.Lit(fd.StructField))
	return opts
}

// genPredicates generates the typed predicate fields of the entity.
// Binary columns have none.
func (g *Graph) genPredicates(f *jen.File, t *Type) {
	pred := jen.Qual(g.sqlPkg(), "Predicate")
	f.Commentf("Predicate fields of %s.", t.Name)
	f.Var().DefsFunc(func(group *jen.Group) {
		for _, fd := range t.Fields {
			var typ *jen.Statement
			switch fd.Kind {
			case schema.KindString:
				typ = jen.Qual(g.sqlPkg(), "StringField").Types(pred)
			case schema.KindBool:
				typ = jen.Qual(g.sqlPkg(), "BoolField").Types(pred)
			case schema.KindBytes:
				continue
			default:
				typ = jen.Qual(g.sqlPkg(), "OrderedField").Types(pred, g.baseType(fd))
			}
			group.Id(t.PredicateName(fd)).Op("=").Add(typ).Call(jen.Lit(fd.Name))
		}
	})
}

// genRegistry generates the package registration file.
func (g *Graph) genRegistry() *jen.File {
	f := g.newFile()
	f.ImportName(g.schemaPkg(), "schema")
	info := jen.Op("*").Qual(g.schemaPkg(), "TypeInfo")
	f.Comment("Descriptors returns the descriptors of every entity of the package.")
	f.Func().Id("Descriptors").Params().Index().Add(info).Block(
		jen.Return(jen.Index().Add(info).ValuesFunc(func(group *jen.Group) {
			for _, t := range g.Nodes {
				group.Id(t.InfoName())
			}
		})),
	)
	f.Comment("Register adds the descriptors of every entity of the package to reg.")
	f.Func().Id("Register").Params(jen.Id("reg").Op("*").Qual(g.schemaPkg(), "Registry")).Error().Block(
		jen.Return(jen.Id("reg").Dot("Register").Call(jen.Id("Descriptors").Call().Op("..."))),
	)
	return f
}

// goType returns the Jennifer code for a field's Go type.
func (g *Graph) goType(fd *Field) jen.Code {
	if fd.Optional() {
		return jen.Op("*").Add(g.baseType(fd))
	}
	return g.baseType(fd)
}

// baseType returns the Jennifer code for a field's type without pointer.
func (g *Graph) baseType(fd *Field) jen.Code {
	switch fd.Kind {
	case schema.KindBool:
		return jen.Bool()
	case schema.KindInt:
		return jen.Int()
	case schema.KindInt32:
		return jen.Int32()
	case schema.KindInt64:
		return jen.Int64()
	case schema.KindFloat64:
		return jen.Float64()
	case schema.KindDecimal:
		return jen.Qual(g.decimalPkg(), "Decimal")
	case schema.KindString:
		return jen.String()
	case schema.KindBytes:
		return jen.Index().Byte()
	case schema.KindTime:
		return jen.Qual("time", "Time")
	}
	return jen.Any()
}
