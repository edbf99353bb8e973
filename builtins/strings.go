package builtins

import (
	"fmt"
	"strings"

	"luax/types"
)

// maxStringRep bounds the size of a string.rep result
const maxStringRep = 1 << 26

// builtinStringLen returns the byte length
// string.len(s) -> number
func builtinStringLen(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "len", "string")
	}
	return types.Ok(types.NewNumber(float64(len(s))))
}

// builtinStringSub slices by byte positions; negative positions count
// from the end and out-of-range positions clamp.
// string.sub(s, i [, j]) -> str
func builtinStringSub(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "sub", "string")
	}
	i, ok := argInt(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "sub", "number")
	}
	j, ok := optInt(args, 3, -1)
	if !ok {
		return argFault(ctx, args, 3, "sub", "number")
	}
	l := len(s)
	start := posRelat(i, l)
	end := posRelat(j, l)
	if start < 1 {
		start = 1
	}
	if end > l {
		end = l
	}
	if start > end {
		return types.Ok(types.NewStr(""))
	}
	return types.Ok(types.NewStr(s[start-1 : end]))
}

// builtinStringUpper maps ASCII letters to upper case, byte-wise
// string.upper(s) -> str
func builtinStringUpper(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "upper", "string")
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return types.Ok(types.NewStr(string(b)))
}

// builtinStringLower maps ASCII letters to lower case, byte-wise
// string.lower(s) -> str
func builtinStringLower(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "lower", "string")
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return types.Ok(types.NewStr(string(b)))
}

// builtinStringRep concatenates n copies of s; n <= 0 gives ""
// string.rep(s, n) -> str
func builtinStringRep(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "rep", "string")
	}
	n, ok := argInt(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "rep", "number")
	}
	if n <= 0 || len(s) == 0 {
		return types.Ok(types.NewStr(""))
	}
	if n > maxStringRep/len(s) {
		return fault(ctx, "resulting string too large")
	}
	return types.Ok(types.NewStr(strings.Repeat(s, n)))
}

// builtinStringReverse reverses the bytes
// string.reverse(s) -> str
func builtinStringReverse(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "reverse", "string")
	}
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return types.Ok(types.NewStr(string(b)))
}

// builtinStringByte returns the numeric codes of the bytes i..j
// string.byte(s [, i [, j]]) -> number...
func builtinStringByte(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "byte", "string")
	}
	i, ok := optInt(args, 2, 1)
	if !ok {
		return argFault(ctx, args, 2, "byte", "number")
	}
	j, ok := optInt(args, 3, i)
	if !ok {
		return argFault(ctx, args, 3, "byte", "number")
	}
	l := len(s)
	start := posRelat(i, l)
	end := posRelat(j, l)
	if start < 1 {
		start = 1
	}
	if end > l {
		end = l
	}
	if start > end {
		return types.None()
	}
	vals := make([]types.Value, 0, end-start+1)
	for k := start; k <= end; k++ {
		vals = append(vals, types.NewNumber(float64(s[k-1])))
	}
	return types.OkMulti(vals)
}

// builtinStringChar builds a string from byte codes
// string.char(...) -> str
func builtinStringChar(ctx *types.Context, args []types.Value) types.Result {
	b := make([]byte, len(args))
	for i := range args {
		n, ok := argInt(args, i+1)
		if !ok {
			return argFault(ctx, args, i+1, "char", "number")
		}
		if n < 0 || n > 255 {
			return fault(ctx, "bad argument #%d to 'char' (invalid value)", i+1)
		}
		b[i] = byte(n)
	}
	return types.Ok(types.NewStr(string(b)))
}

// builtinStringFormat renders a C-style format string. Supported
// conversions are d i o u x X c f e E g G q s with the usual flags, a
// width and a precision of at most two digits each.
// string.format(fmt, ...) -> str
func builtinStringFormat(ctx *types.Context, args []types.Value) types.Result {
	f, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "format", "string")
	}
	var b strings.Builder
	argn := 1 // arguments consumed so far; the format string is #1
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			b.WriteByte(f[i])
			continue
		}
		i++
		if i < len(f) && f[i] == '%' {
			b.WriteByte('%')
			continue
		}
		spec, verb, at, errmsg := scanFormat(f, i)
		if errmsg != "" {
			return fault(ctx, "%s", errmsg)
		}
		i = at
		argn++
		switch verb {
		case 'd', 'i':
			n, ok := argNumber(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "number")
			}
			fmt.Fprintf(&b, spec+"d", int64(n))
		case 'o', 'u', 'x', 'X':
			n, ok := argNumber(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "number")
			}
			gv := verb
			if verb == 'u' {
				gv = 'd'
			}
			fmt.Fprintf(&b, spec+string(gv), uint64(int64(n)))
		case 'c':
			n, ok := argNumber(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "number")
			}
			fmt.Fprintf(&b, spec+"s", string([]byte{byte(int64(n))}))
		case 'f', 'e', 'E', 'g', 'G':
			n, ok := argNumber(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "number")
			}
			if (verb == 'g' || verb == 'G') && !strings.Contains(spec, ".") {
				// C %g defaults to 6 significant digits
				spec += ".6"
			}
			fmt.Fprintf(&b, spec+string(verb), n)
		case 's':
			s, ok := argStr(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "string")
			}
			fmt.Fprintf(&b, spec+"s", s)
		case 'q':
			s, ok := argStr(args, argn)
			if !ok {
				return argFault(ctx, args, argn, "format", "string")
			}
			writeQuoted(&b, s)
		default:
			return fault(ctx, "invalid option '%%%c' to 'format'", verb)
		}
	}
	return types.Ok(types.NewStr(b.String()))
}

// scanFormat reads one conversion spec after a '%'. It returns the spec
// with a leading '%' but without the verb, the verb byte, and the verb's
// index in f.
func scanFormat(f string, i int) (spec string, verb byte, at int, errmsg string) {
	start := i
	for i < len(f) && strings.IndexByte("-+ #0", f[i]) >= 0 {
		i++
	}
	if i-start > 5 {
		return "", 0, 0, "invalid format (repeated flags)"
	}
	digits := 0
	for i < len(f) && f[i] >= '0' && f[i] <= '9' {
		i++
		digits++
	}
	if digits > 2 {
		return "", 0, 0, "invalid format (width or precision too long)"
	}
	if i < len(f) && f[i] == '.' {
		i++
		digits = 0
		for i < len(f) && f[i] >= '0' && f[i] <= '9' {
			i++
			digits++
		}
		if digits > 2 {
			return "", 0, 0, "invalid format (width or precision too long)"
		}
	}
	if i >= len(f) {
		return "", 0, 0, "invalid format string to 'format'"
	}
	return "%" + f[start:i], f[i], i, ""
}

// writeQuoted renders a string in a quoted form the reader accepts back:
// double quotes with ", \, newline, CR and NUL escaped.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\', '\n':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\000`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
