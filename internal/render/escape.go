package render

// Target selects the output format for one render call.
type Target int

const (
	TargetHTML Target = iota
	TargetLatex
)

func (t Target) String() string {
	if t == TargetLatex {
		return "latex"
	}
	return "html"
}

// splitter is the process-wide soft-wrap marker inserted between chunks of
// long identifiers. Effectively immutable after startup.
var splitter = " "

// SetSplitter configures the soft-wrap marker (for example "<wbr />").
func SetSplitter(s string) { splitter = s }

func escChar(target Target, out *[]byte, c byte) {
	switch target {
	case TargetHTML:
		switch c {
		case '&':
			*out = append(*out, "&amp;"...)
		case '<':
			*out = append(*out, "&lt;"...)
		case '>':
			*out = append(*out, "&gt;"...)
		case '"':
			*out = append(*out, "&quot;"...)
		default:
			*out = append(*out, c)
		}
	case TargetLatex:
		switch c {
		case '_', '{', '}', '$', '&', '#', '%':
			*out = append(*out, '\\', c)
		case '[':
			*out = append(*out, "{[}"...)
		case ']':
			*out = append(*out, "{]}"...)
		case '\\':
			*out = append(*out, "$\\backslash$"...)
		case '~':
			*out = append(*out, "\\textasciitilde{}"...)
		case '^':
			*out = append(*out, "\\textasciicircum{}"...)
		case '`':
			*out = append(*out, "\\textasciigrave{}"...)
		case '@':
			*out = append(*out, "\\symbol{64}"...)
		default:
			*out = append(*out, c)
		}
	}
}

// nextSplitPoint returns the last index of the chunk starting at start: the
// first position at or after start holding '_' or a lowercase letter directly
// followed by an uppercase one, or the final index when no boundary exists.
func nextSplitPoint(s string, start int) int {
	for i := start; i < len(s); i++ {
		switch {
		case s[i] == '_':
			return i
		case s[i] >= 'a' && s[i] <= 'z':
			if i+1 < len(s) && s[i+1] >= 'A' && s[i+1] <= 'Z' {
				return i
			}
		}
	}
	return len(s) - 1
}

// Escape escapes s for the target with no soft wrapping.
func Escape(target Target, s string) string {
	return EscapeWrap(target, s, -1)
}

// EscapeWrap escapes s for the target. When wrapAfter is non-negative the
// text is split into chunks at identifier boundaries and the wrap marker is
// inserted before a chunk whenever the marker is not a plain space or the
// accumulated chunk length exceeds wrapAfter. Wrapping never changes the
// escaped content itself.
func EscapeWrap(target Target, s string, wrapAfter int) string {
	var out []byte
	if wrapAfter < 0 {
		for i := 0; i < len(s); i++ {
			escChar(target, &out, s[i])
		}
		return string(out)
	}
	partLen := 0
	j := 0
	for j < len(s) {
		k := nextSplitPoint(s, j)
		if splitter != " " || partLen+k-j+1 > wrapAfter {
			partLen = 0
			out = append(out, splitter...)
		}
		for i := j; i <= k; i++ {
			escChar(target, &out, s[i])
		}
		partLen += k - j + 1
		j = k + 1
	}
	return string(out)
}
