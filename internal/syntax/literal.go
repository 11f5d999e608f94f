// Package syntax renders the PostgREST wire grammar: filter operator tokens,
// literal values, quoted list syntax, and the ordering/count/preference
// vocabulary shared by the query compiler and the request assembler.
package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderValue renders a Go value as a PostgREST literal. Rendering is
// deterministic: the same value always produces the same byte sequence.
func RenderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	case Range:
		return val.String()
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v)
	}
}

// NeedsQuoting reports whether a list item must be double-quoted to survive
// the PostgREST list grammar. Reserved characters are the list delimiters,
// parentheses, double quotes, and whitespace; the empty string also needs
// quotes to remain visible.
func NeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, ",()\" \t\n\r")
}

// QuoteListItem double-quotes a list item when the grammar requires it,
// backslash-escaping embedded quotes and backslashes.
func QuoteListItem(s string) string {
	if !NeedsQuoting(s) {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// ParenList renders values as the parenthesized list used by the in operator:
// (a,b,"c d").
func ParenList(items []string) string {
	return "(" + joinQuoted(items) + ")"
}

// BraceList renders values as the curly-brace array literal used by the array
// operators cs, cd, and ov: {a,b,"c d"}.
func BraceList(items []string) string {
	return "{" + joinQuoted(items) + "}"
}

func joinQuoted(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(QuoteListItem(item))
	}
	return b.String()
}

// RenderList renders each element of a Go slice as a quoted-as-needed literal,
// preserving element order.
func RenderList(values []interface{}) []string {
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = RenderValue(v)
	}
	return items
}

// TranslateWildcards rewrites the * wildcard of the builder's pattern syntax
// into the % wildcard understood by like and ilike.
func TranslateWildcards(pattern string) string {
	return strings.ReplaceAll(pattern, "*", "%")
}

// Range is a half-open or closed interval literal for the range-typed array
// operators, rendered in PostgreSQL range syntax such as [2,7) or (1,10].
type Range struct {
	Lower  interface{}
	Upper  interface{}
	Bounds string // one of "[]", "[)", "(]", "()"
}

// ValidBounds reports whether the bounds string is one of the four legal
// inclusive/exclusive combinations.
func (r Range) ValidBounds() bool {
	switch r.Bounds {
	case "[]", "[)", "(]", "()":
		return true
	}
	return false
}

// String renders the range literal. Unset bounds default to the half-open
// convention [lower,upper).
func (r Range) String() string {
	bounds := r.Bounds
	if bounds == "" {
		bounds = "[)"
	}
	return string(bounds[0]) + RenderValue(r.Lower) + "," + RenderValue(r.Upper) + string(bounds[1])
}
