package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// variant is the single implementation of Dialect. The set of variants is
// closed and selected once through Open.
type variant struct {
	name        string
	placeholder func(n int) string
	numbered    bool
	quote       [2]string
	sequence    bool
	identity    bool
	finalTable  bool
	returning   Returning
	bools       [2]string // false, true
	nextval     func(seq string) string
	padded      func(seq, prefix string, width int) string
	timestamp   func(ts string) string
	bytes       func(hex string) string
}

var variants = map[string]*variant{
	Postgres: {
		name:        Postgres,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		numbered:    true,
		quote:       [2]string{`"`, `"`},
		sequence:    true,
		returning:   ReturningClause,
		bools:       [2]string{"FALSE", "TRUE"},
		nextval: func(seq string) string {
			return fmt.Sprintf("SELECT nextval(%s)", quoteString(seq))
		},
		padded: func(seq, prefix string, width int) string {
			return fmt.Sprintf("SELECT %s || LPAD(CAST(nextval(%s) AS VARCHAR), %d, '0')", quoteString(prefix), quoteString(seq), width)
		},
		timestamp: quoteString,
		bytes:     func(hex string) string { return `'\x` + hex + `'` },
	},
	MySQL: {
		name:        MySQL,
		placeholder: func(int) string { return "?" },
		quote:       [2]string{"`", "`"},
		identity:    true,
		bools:       [2]string{"FALSE", "TRUE"},
		timestamp:   quoteString,
		bytes:       func(hex string) string { return "X'" + strings.ToUpper(hex) + "'" },
	},
	SQLite: {
		name:        SQLite,
		placeholder: func(int) string { return "?" },
		quote:       [2]string{"`", "`"},
		identity:    true,
		bools:       [2]string{"0", "1"},
		timestamp:   quoteString,
		bytes:       func(hex string) string { return "X'" + strings.ToUpper(hex) + "'" },
	},
	Oracle: {
		name:        Oracle,
		placeholder: func(n int) string { return ":" + strconv.Itoa(n) },
		numbered:    true,
		quote:       [2]string{`"`, `"`},
		sequence:    true,
		bools:       [2]string{"0", "1"},
		nextval: func(seq string) string {
			return fmt.Sprintf("SELECT %s.NEXTVAL FROM DUAL", seq)
		},
		padded: func(seq, prefix string, width int) string {
			return fmt.Sprintf("SELECT %s || LPAD(TO_CHAR(%s.NEXTVAL), %d, '0') FROM DUAL", quoteString(prefix), seq, width)
		},
		timestamp: func(ts string) string { return "TIMESTAMP " + quoteString(ts) },
		bytes:     func(hex string) string { return "HEXTORAW('" + strings.ToUpper(hex) + "')" },
	},
	SQLServer: {
		name:        SQLServer,
		placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
		numbered:    true,
		quote:       [2]string{"[", "]"},
		sequence:    true,
		returning:   ReturningOutput,
		bools:       [2]string{"0", "1"},
		nextval: func(seq string) string {
			return fmt.Sprintf("SELECT NEXT VALUE FOR %s", seq)
		},
		padded: func(seq, prefix string, width int) string {
			return fmt.Sprintf("SELECT %s + RIGHT(REPLICATE('0', %d) + CAST(NEXT VALUE FOR %s AS VARCHAR(20)), %d)", quoteString(prefix), width, seq, width)
		},
		timestamp: quoteString,
		bytes:     func(hex string) string { return "0x" + strings.ToUpper(hex) },
	},
	DB2: {
		name:        DB2,
		placeholder: func(int) string { return "?" },
		quote:       [2]string{`"`, `"`},
		sequence:    true,
		finalTable:  true,
		returning:   ReturningFinalTable,
		bools:       [2]string{"FALSE", "TRUE"},
		nextval: func(seq string) string {
			return fmt.Sprintf("VALUES NEXT VALUE FOR %s", seq)
		},
		padded: func(seq, prefix string, width int) string {
			return fmt.Sprintf("VALUES %s || LPAD(VARCHAR(NEXT VALUE FOR %s), %d, '0')", quoteString(prefix), seq, width)
		},
		timestamp: func(ts string) string { return "TIMESTAMP " + quoteString(ts) },
		bytes:     func(hex string) string { return "BX'" + strings.ToUpper(hex) + "'" },
	},
}

func (v *variant) Name() string               { return v.name }
func (v *variant) Placeholder(n int) string   { return v.placeholder(n) }
func (v *variant) NumberedPlaceholders() bool { return v.numbered }
func (v *variant) SupportsSequence() bool     { return v.sequence }
func (v *variant) SupportsIdentity() bool     { return v.identity }
func (v *variant) SupportsFinalTable() bool   { return v.finalTable }
func (v *variant) Returning() Returning       { return v.returning }
func (v *variant) String() string             { return v.name }

func (v *variant) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		p = strings.ReplaceAll(p, v.quote[1], v.quote[1]+v.quote[1])
		parts[i] = v.quote[0] + p + v.quote[1]
	}
	return strings.Join(parts, ".")
}

func (v *variant) SequenceNextSQL(seq string) string {
	if !v.sequence {
		return ""
	}
	return v.nextval(seq)
}

func (v *variant) PaddedSequenceNextSQL(seq, prefix string, width int) string {
	if !v.sequence {
		return ""
	}
	if width <= 0 {
		return v.nextval(seq)
	}
	return v.padded(seq, prefix, width)
}

func (v *variant) BoolLiteral(b bool) string {
	if b {
		return v.bools[1]
	}
	return v.bools[0]
}
