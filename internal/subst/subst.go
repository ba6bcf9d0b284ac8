// Package subst implements the positional/named format substitution language
// used to assemble output fragments from template strings.
//
//	$$          literal '$'
//	$1 .. $N    value at 1-based position N (also moves the cursor to N+1)
//	$#          value at the implicit cursor, which then advances
//	$name       value looked up by style-insensitive name
//	${name}     same lookup, brace-delimited
package subst

import "fmt"

// Error reports a failed substitution. Format errors indicate a template
// authoring bug and are never silently swallowed.
type Error struct {
	Format string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid format string %q: %s", e.Format, e.Reason)
}

// Substitute expands format using the given name/value pairs. Positional
// references index values directly; named references resolve against names.
func Substitute(format string, names, values []string) (string, error) {
	var out []byte
	if err := Append(&out, format, names, values); err != nil {
		return "", err
	}
	return string(out), nil
}

// Append is Substitute writing into an existing buffer.
func Append(out *[]byte, format string, names, values []string) error {
	num := 0 // implicit cursor: index of the next positional value
	i := 0
	for i < len(format) {
		if format[i] != '$' || i+1 == len(format) {
			*out = append(*out, format[i])
			i++
			continue
		}
		switch c := format[i+1]; {
		case c == '$':
			*out = append(*out, '$')
			i += 2
		case c == '#':
			if num >= len(values) {
				return &Error{format, fmt.Sprintf("positional $# out of range (have %d values)", len(values))}
			}
			*out = append(*out, values[num]...)
			num++
			i += 2
		case c >= '0' && c <= '9':
			j := 0
			i++
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				j = j*10 + int(format[i]-'0')
				i++
			}
			if j < 1 || j > len(values) {
				return &Error{format, fmt.Sprintf("positional $%d out of range (have %d values)", j, len(values))}
			}
			*out = append(*out, values[j-1]...)
			num = j
		case isIdentChar(c):
			start := i + 1
			i++
			for i < len(format) && isIdentChar(format[i]) {
				i++
			}
			v, ok := lookup(format[start:i], names, values)
			if !ok {
				return &Error{format, fmt.Sprintf("unknown variable $%s", format[start:i])}
			}
			*out = append(*out, v...)
		case c == '{':
			start := i + 2
			i += 2
			for i < len(format) && format[i] != '}' {
				i++
			}
			if i == len(format) {
				return &Error{format, "unterminated ${...} group"}
			}
			v, ok := lookup(format[start:i], names, values)
			if !ok {
				return &Error{format, fmt.Sprintf("unknown variable ${%s}", format[start:i])}
			}
			*out = append(*out, v...)
			i++ // closing brace
		default:
			return &Error{format, fmt.Sprintf("unknown escape $%c", c)}
		}
	}
	return nil
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func lookup(id string, names, values []string) (string, bool) {
	for i, name := range names {
		if i < len(values) && EqIgnoreStyle(id, name) {
			return values[i], true
		}
	}
	return "", false
}

// EqIgnoreStyle compares identifiers ignoring case and underscores, so
// "chunkSize", "chunk_size" and "ChunkSize" all match.
func EqIgnoreStyle(a, b string) bool {
	i, j := 0, 0
	for {
		for i < len(a) && a[i] == '_' {
			i++
		}
		for j < len(b) && b[j] == '_' {
			j++
		}
		if i == len(a) || j == len(b) {
			return i == len(a) && j == len(b)
		}
		if lower(a[i]) != lower(b[j]) {
			return false
		}
		i++
		j++
	}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
