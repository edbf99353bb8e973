package types

import (
	"math"
	"strconv"
	"strings"
)

const numeralSpace = " \t\n\v\f\r"

// ParseNumber converts a string to a number using the numeral grammar:
// optional surrounding space, an optional sign, then either a decimal
// literal with fraction and exponent or a 0x hexadecimal integer. Words
// like "inf" and "nan" are not numerals.
func ParseNumber(s string) (float64, bool) {
	s = strings.Trim(s, numeralSpace)
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(u)
		if neg {
			f = -f
		}
		return f, true
	}
	if s == "" || (s[0] != '.' && (s[0] < '0' || s[0] > '9')) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// ParseNumberBase converts a string of digits in the given base (2..36),
// with optional surrounding space and sign. Letters count from 10 in
// either case.
func ParseNumberBase(s string, base int) (float64, bool) {
	if base < 2 || base > 36 {
		return 0, false
	}
	s = strings.Trim(s, numeralSpace)
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var f float64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = int(c-'A') + 10
		default:
			return 0, false
		}
		if d >= base {
			return 0, false
		}
		f = f*float64(base) + float64(d)
	}
	if neg {
		f = -f
	}
	return f, true
}

// ToNumber applies the arithmetic coercion rule: numbers pass through and
// strings parse by the numeral grammar. Everything else fails.
func ToNumber(v Value) (float64, bool) {
	switch v := v.(type) {
	case NumberValue:
		return float64(v), true
	case StrValue:
		return ParseNumber(string(v))
	}
	return 0, false
}

// NumberToString renders a number the way the runtime displays it, with 14
// significant digits and integral values without a decimal point.
func NumberToString(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}

// CoerceToString renders a number or passes a string through; used by
// concatenation. Other kinds fail.
func CoerceToString(v Value) (string, bool) {
	switch v := v.(type) {
	case StrValue:
		return string(v), true
	case NumberValue:
		return NumberToString(float64(v)), true
	}
	return "", false
}
