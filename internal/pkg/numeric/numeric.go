// Package numeric parses human-formatted numbers such as "109K", "1,250.50" or "1.250,50".
package numeric

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrParse is returned when the text does not reduce to a numeric literal.
var ErrParse = errors.New("numeric: not a number")

var currencyPattern = regexp.MustCompile(`USDT|USD|[\s$€£]+`)

var suffixExponent = map[byte]int32{
	'K': 3,
	'M': 6,
	'B': 9,
	'T': 12,
}

// Parse normalizes raw into a float64.
//
// Separator policy:
//   - "," and "." both present: the later one is the decimal point unless exactly
//     three characters follow it, in which case it groups thousands and the earlier
//     separator is the decimal point.
//   - only ".": a single dot followed by exactly three digits groups thousands.
//   - only ",": same rule, otherwise the comma is a decimal point.
//
// The rule is a heuristic: "109.000" reads as 109000, never 109.0.
func Parse(raw string) (float64, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseDecimal is Parse without the final float conversion.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = currencyPattern.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	var exp int32
	if e, ok := suffixExponent[s[len(s)-1]]; ok {
		exp = e
		s = s[:len(s)-1]
	}

	s = strings.TrimSuffix(normalizeSeparators(s), ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	if exp != 0 {
		d = d.Shift(exp)
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		lastComma := strings.LastIndex(s, ",")
		lastDot := strings.LastIndex(s, ".")
		if lastComma > lastDot {
			if len(s[lastComma+1:]) != 3 {
				s = strings.ReplaceAll(s, ".", "")
				return strings.ReplaceAll(s, ",", ".")
			}
			return strings.ReplaceAll(s, ",", "")
		}
		if len(s[lastDot+1:]) == 3 {
			s = strings.ReplaceAll(s, ".", "")
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case hasDot:
		if joined, ok := joinThousands(s, "."); ok {
			return joined
		}
		return s
	case hasComma:
		if joined, ok := joinThousands(s, ","); ok {
			return joined
		}
		return strings.ReplaceAll(s, ",", ".")
	default:
		return s
	}
}

// joinThousands concatenates "123<sep>456" into "123456" when the separator is
// the only one and exactly three digits follow it.
func joinThousands(s, sep string) (string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 || len(parts[1]) != 3 {
		return "", false
	}
	if !isDigits(parts[0]) || !isDigits(parts[1]) {
		return "", false
	}
	return parts[0] + parts[1], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
