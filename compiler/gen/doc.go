// Package gen generates static entity descriptors from YAML schemas.
//
// For every entity the generator writes one file holding the entity
// struct, its schema.TypeInfo built with schema.Column accessor closures,
// and typed predicate fields for engine.Select. A registration file exposes
// the descriptors of the package:
//
//	s, err := load.Load("schema/")
//	if err != nil {
//		return err
//	}
//	err = gen.Generate(ctx, s, gen.WithTarget("models"))
//
// The generated code reproduces what schema.Describe builds by hand, so
// engine code works the same with either.
package gen
