package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// PadSequence formats a sequence value the way PaddedSequenceNextSQL does on
// the database side: n is left padded with zeros to width digits and prefix
// is prepended. A width of zero leaves n unpadded.
func PadSequence(prefix string, width int, n int64) string {
	if width <= 0 {
		return prefix + strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// NormalizeSequence converts a value returned by a sequence query into the
// representation stored on the entity. Padded sequences yield strings; a
// numeric result is padded in process, so drivers that return the bare
// number for a padded query still produce the same text.
func NormalizeSequence(v any, prefix string, width int) (any, error) {
	if width <= 0 && prefix == "" {
		switch x := v.(type) {
		case []byte:
			n, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("dialect: parse sequence value %q: %w", x, err)
			}
			return n, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("dialect: parse sequence value %q: %w", x, err)
			}
			return n, nil
		}
		return v, nil
	}
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case string:
		return x, nil
	case int64:
		return PadSequence(prefix, width, x), nil
	case int32:
		return PadSequence(prefix, width, int64(x)), nil
	case int:
		return PadSequence(prefix, width, int64(x)), nil
	}
	return nil, fmt.Errorf("dialect: unexpected sequence value %T", v)
}
