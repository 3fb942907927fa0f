package mydb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/thapedict/mydb/internal/schema"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// escapeValue renders value as a SQL literal for col.
//
// The type keyword (declared type up to the first space) picks the rule:
// "int" anywhere in it (case-sensitive) renders a bare integer; time, date and
// year types and varchar, text and blob types render a quoted string escaped by
// the connection; float and double render a bare float. Any other type passes
// the value's string form through unquoted.
func escapeValue(conn Connection, col schema.Column, value any) string {
	keyword := col.TypeKeyword()
	lower := strings.ToLower(keyword)

	switch {
	case strings.Contains(keyword, "int"):
		return strconv.FormatInt(toInt(value), 10)
	case containsAny(lower, "time", "date", "year"),
		containsAny(lower, "varchar", "text", "blob"):
		return "'" + conn.EscapeString(toString(value)) + "'"
	case containsAny(lower, "float", "double"):
		return formatFloat(toFloat(value))
	}

	if value == nil {
		return "NULL"
	}
	return toString(value)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// toInt casts like PHP's (int): numeric strings are read up to the first
// non-numeric character, floats are truncated, anything unreadable is 0.
func toInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case time.Time:
		return x.Unix()
	}

	num := numericPrefix(toString(v))
	if num == "" {
		return 0
	}
	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(num, 64)
	return floatToInt(f)
}

func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// toFloat casts like PHP's (float)
func toFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float32:
		return float64(x)
	case float64:
		return x
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return float64(toInt(x))
	}

	f, _ := strconv.ParseFloat(numericPrefix(toString(v)), 64)
	return f
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numericPrefix returns the leading decimal number of s, ignoring leading
// whitespace: an optional sign, digits, an optional fraction and an optional
// exponent. It returns "" when s does not start with a number.
func numericPrefix(s string) string {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// toString renders v the way it would be written into a SQL string literal
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(dateTimeLayout)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
