package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/syssam/strata"
)

// Kind is the storage kind of a column.
type Kind uint8

// Column kinds.
const (
	KindOther Kind = iota
	KindBool
	KindInt
	KindInt32
	KindInt64
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindTime
)

var kindNames = [...]string{
	KindOther:   "other",
	KindBool:    "bool",
	KindInt:     "int",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat64: "float64",
	KindDecimal: "decimal",
	KindString:  "string",
	KindBytes:   "bytes",
	KindTime:    "time",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return KindOther, false
}

// Versionable reports whether a column of this kind can act as a version column.
func (k Kind) Versionable() bool {
	switch k {
	case KindInt, KindInt32, KindInt64, KindDecimal:
		return true
	}
	return false
}

// kindOf returns the kind of V and whether V is a pointer (nullable) type.
func kindOf[V any]() (Kind, bool) {
	switch any(*new(V)).(type) {
	case bool:
		return KindBool, false
	case *bool:
		return KindBool, true
	case int:
		return KindInt, false
	case *int:
		return KindInt, true
	case int32:
		return KindInt32, false
	case *int32:
		return KindInt32, true
	case int64:
		return KindInt64, false
	case *int64:
		return KindInt64, true
	case float64:
		return KindFloat64, false
	case *float64:
		return KindFloat64, true
	case decimal.Decimal:
		return KindDecimal, false
	case *decimal.Decimal:
		return KindDecimal, true
	case string:
		return KindString, false
	case *string:
		return KindString, true
	case []byte:
		return KindBytes, true
	case time.Time:
		return KindTime, false
	case *time.Time:
		return KindTime, true
	}
	return KindOther, false
}

// DefaultVersion returns the initial value of a version column. Absent or
// non-positive values yield one unit of the kind (1, int32 1, int64 1 or
// decimal 1); any other value is returned unchanged.
func DefaultVersion(kind Kind, current any) (any, error) {
	if !kind.Versionable() {
		return nil, strata.WrapConfigError(kind.String(), strata.ErrUnsupportedKind, "no default version for kind")
	}
	if Positive(current) {
		return current, nil
	}
	return one(kind), nil
}

// IncrementVersion returns current plus exactly one unit, of the same kind.
// An absent value is treated as zero.
func IncrementVersion(kind Kind, current any) (any, error) {
	if !kind.Versionable() {
		return nil, strata.WrapConfigError(kind.String(), strata.ErrUnsupportedKind, "cannot increment version of kind")
	}
	if d, ok := asDecimal(current); ok {
		return convertKind(kind, d.Add(decimal.NewFromInt(1))), nil
	}
	n, ok := asInt64(current)
	if !ok && current != nil {
		return nil, strata.WrapConfigError(kind.String(), strata.ErrUnsupportedKind, "cannot increment version value of type %T", current)
	}
	return convertKind(kind, decimal.NewFromInt(n+1)), nil
}

// VersionEqual reports whether two version values denote the same number,
// regardless of the Go type each was materialized as.
func VersionEqual(a, b any) bool {
	da, ok := asDecimal(a)
	if !ok {
		n, ok := asInt64(a)
		if !ok || a == nil {
			return false
		}
		da = decimal.NewFromInt(n)
	}
	db, ok := asDecimal(b)
	if !ok {
		n, ok := asInt64(b)
		if !ok || b == nil {
			return false
		}
		db = decimal.NewFromInt(n)
	}
	return da.Equal(db)
}

// Positive reports whether v holds a number greater than zero. Absent values,
// nil pointers and non-numeric values are not positive.
func Positive(v any) bool {
	if d, ok := asDecimal(v); ok {
		return d.IsPositive()
	}
	n, ok := asInt64(v)
	return ok && n > 0
}

func one(kind Kind) any {
	return convertKind(kind, decimal.NewFromInt(1))
}

func convertKind(kind Kind, d decimal.Decimal) any {
	switch kind {
	case KindInt:
		return int(d.IntPart())
	case KindInt32:
		return int32(d.IntPart())
	case KindInt64:
		return d.IntPart()
	}
	return d
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	case *int:
		if x != nil {
			return int64(*x), true
		}
	case *int32:
		if x != nil {
			return int64(*x), true
		}
	case *int64:
		if x != nil {
			return *x, true
		}
	case float64:
		return int64(x), true
	case []byte:
		d, err := decimal.NewFromString(string(x))
		if err == nil {
			return d.IntPart(), true
		}
	case string:
		d, err := decimal.NewFromString(x)
		if err == nil {
			return d.IntPart(), true
		}
	case nil:
		return 0, false
	}
	return 0, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x != nil {
			return *x, true
		}
	case decimal.NullDecimal:
		if x.Valid {
			return x.Decimal, true
		}
	}
	return decimal.Decimal{}, false
}
