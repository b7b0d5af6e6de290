package sql

// Predicate appends a boolean condition to a Builder. Predicates are the
// contract between the expression translator and the statement assembly:
// a predicate writes SQL through Append and binds values through Arg.
type Predicate func(*Builder)

// PredicateFunc is a constraint type for predicate functions.
// It allows generic field types to work with any predicate type that is
// based on func(*Builder).
type PredicateFunc interface {
	~func(*Builder)
}

func binary(name, op string, v any) Predicate {
	return func(b *Builder) {
		b.Append(b.Quote(name) + " " + op + " ")
		b.Arg(v)
	}
}

// FieldEQ returns a predicate comparing the column to v.
func FieldEQ(name string, v any) Predicate { return binary(name, "=", v) }

// FieldNEQ returns a predicate checking the column differs from v.
func FieldNEQ(name string, v any) Predicate { return binary(name, "<>", v) }

// FieldGT returns a predicate checking the column is greater than v.
func FieldGT(name string, v any) Predicate { return binary(name, ">", v) }

// FieldGTE returns a predicate checking the column is greater than or equal to v.
func FieldGTE(name string, v any) Predicate { return binary(name, ">=", v) }

// FieldLT returns a predicate checking the column is less than v.
func FieldLT(name string, v any) Predicate { return binary(name, "<", v) }

// FieldLTE returns a predicate checking the column is less than or equal to v.
func FieldLTE(name string, v any) Predicate { return binary(name, "<=", v) }

// FieldContains returns a predicate checking the column contains the substring.
func FieldContains(name, sub string) Predicate { return binary(name, "LIKE", "%"+sub+"%") }

// FieldHasPrefix returns a predicate checking the column starts with prefix.
func FieldHasPrefix(name, prefix string) Predicate { return binary(name, "LIKE", prefix+"%") }

// FieldHasSuffix returns a predicate checking the column ends with suffix.
func FieldHasSuffix(name, suffix string) Predicate { return binary(name, "LIKE", "%"+suffix) }

// FieldEqualFold returns a predicate comparing the column to v, case-insensitively.
func FieldEqualFold(name, v string) Predicate {
	return func(b *Builder) {
		b.Append("LOWER(" + b.Quote(name) + ") = LOWER(")
		b.Arg(v)
		b.Append(")")
	}
}

// FieldIsNull returns a predicate checking the column is NULL.
func FieldIsNull(name string) Predicate {
	return func(b *Builder) { b.Append(b.Quote(name) + " IS NULL") }
}

// FieldNotNull returns a predicate checking the column is not NULL.
func FieldNotNull(name string) Predicate {
	return func(b *Builder) { b.Append(b.Quote(name) + " IS NOT NULL") }
}

// FieldIn returns a predicate checking the column is one of vs. An empty
// list matches nothing.
func FieldIn[T any](name string, vs ...T) Predicate {
	return in(name, "IN", "1 = 0", vs)
}

// FieldNotIn returns a predicate checking the column is none of vs. An
// empty list matches everything.
func FieldNotIn[T any](name string, vs ...T) Predicate {
	return in(name, "NOT IN", "1 = 1", vs)
}

func in[T any](name, op, empty string, vs []T) Predicate {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.Append(empty)
			return
		}
		b.Append(b.Quote(name) + " " + op + " (")
		for i, v := range vs {
			if i > 0 {
				b.Append(", ")
			}
			b.Arg(v)
		}
		b.Append(")")
	}
}

// And groups predicates with AND.
func And(preds ...Predicate) Predicate { return group(" AND ", preds) }

// Or groups predicates with OR.
func Or(preds ...Predicate) Predicate { return group(" OR ", preds) }

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(b *Builder) {
		b.Append("NOT (")
		p(b)
		b.Append(")")
	}
}

func group(sep string, preds []Predicate) Predicate {
	return func(b *Builder) {
		b.Append("(")
		for i, p := range preds {
			if i > 0 {
				b.Append(sep)
			}
			p(b)
		}
		b.Append(")")
	}
}

// StringField is a generic string field that provides type-safe predicate methods.
//
// Usage:
//
//	var Email = sql.StringField[sql.Predicate]("email")
//	engine.Select[User](ctx, eng, Email.HasSuffix("@example.com"))
type StringField[P PredicateFunc] string

// Name returns the field name.
func (f StringField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f StringField[P]) EQ(v string) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f StringField[P]) NEQ(v string) P { return P(FieldNEQ(string(f), v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f StringField[P]) In(vs ...string) P { return P(FieldIn(string(f), vs...)) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f StringField[P]) NotIn(vs ...string) P { return P(FieldNotIn(string(f), vs...)) }

// Contains returns a predicate that checks if the field contains the given substring.
func (f StringField[P]) Contains(v string) P { return P(FieldContains(string(f), v)) }

// HasPrefix returns a predicate that checks if the field has the given prefix.
func (f StringField[P]) HasPrefix(v string) P { return P(FieldHasPrefix(string(f), v)) }

// HasSuffix returns a predicate that checks if the field has the given suffix.
func (f StringField[P]) HasSuffix(v string) P { return P(FieldHasSuffix(string(f), v)) }

// EqualFold returns a predicate that checks if the field equals the given value (case-insensitive).
func (f StringField[P]) EqualFold(v string) P { return P(FieldEqualFold(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f StringField[P]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f StringField[P]) NotNull() P { return P(FieldNotNull(string(f))) }

// OrderedField is a generic field over an ordered value type (integers,
// floats, decimals, times).
type OrderedField[P PredicateFunc, T any] string

// Name returns the field name.
func (f OrderedField[P, T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f OrderedField[P, T]) EQ(v T) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f OrderedField[P, T]) NEQ(v T) P { return P(FieldNEQ(string(f), v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f OrderedField[P, T]) In(vs ...T) P { return P(FieldIn(string(f), vs...)) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f OrderedField[P, T]) NotIn(vs ...T) P { return P(FieldNotIn(string(f), vs...)) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f OrderedField[P, T]) GT(v T) P { return P(FieldGT(string(f), v)) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f OrderedField[P, T]) GTE(v T) P { return P(FieldGTE(string(f), v)) }

// LT returns a predicate that checks if the field is less than the given value.
func (f OrderedField[P, T]) LT(v T) P { return P(FieldLT(string(f), v)) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f OrderedField[P, T]) LTE(v T) P { return P(FieldLTE(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f OrderedField[P, T]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f OrderedField[P, T]) NotNull() P { return P(FieldNotNull(string(f))) }

// BoolField is a generic bool field that provides type-safe predicate methods.
type BoolField[P PredicateFunc] string

// Name returns the field name.
func (f BoolField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f BoolField[P]) EQ(v bool) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f BoolField[P]) NEQ(v bool) P { return P(FieldNEQ(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f BoolField[P]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f BoolField[P]) NotNull() P { return P(FieldNotNull(string(f))) }
