package dialect

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayout is the layout used for time.Time literals.
const timestampLayout = "2006-01-02 15:04:05.999999"

// Literal renders a value as a SQL literal of the dialect. The output is
// meant for humans reading the debug rendering of a statement and is never
// executed.
func (v *variant) Literal(val any) string {
	switch x := val.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(x)
	case []byte:
		if x == nil {
			return "NULL"
		}
		return v.bytes(hex.EncodeToString(x))
	case bool:
		return v.BoolLiteral(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return v.timestamp(x.Format(timestampLayout))
	case decimal.Decimal:
		return x.String()
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		return v.Literal(rv.Elem().Interface())
	}
	if x, ok := val.(driver.Valuer); ok {
		dv, err := x.Value()
		if err != nil {
			return "NULL"
		}
		return v.Literal(dv)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Bool:
		return v.BoolLiteral(rv.Bool())
	case reflect.String:
		return quoteString(rv.String())
	}
	if x, ok := val.(fmt.Stringer); ok {
		return quoteString(x.String())
	}
	return quoteString(fmt.Sprint(val))
}

// quoteString quotes s as a SQL string literal, doubling single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
