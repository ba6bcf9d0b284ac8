package render

import (
	"strings"
	"testing"
)

func TestEscape_HTML(t *testing.T) {
	got := Escape(TargetHTML, "<a & b>")
	if got != "&lt;a &amp; b&gt;" {
		t.Errorf("expected %q, got %q", "&lt;a &amp; b&gt;", got)
	}
	if got := Escape(TargetHTML, `say "hi"`); got != "say &quot;hi&quot;" {
		t.Errorf("expected quote escaping, got %q", got)
	}
}

func TestEscape_Latex(t *testing.T) {
	got := Escape(TargetLatex, "50% & $5")
	if got != `50\% \& \$5` {
		t.Errorf("expected %q, got %q", `50\% \& \$5`, got)
	}
	cases := map[string]string{
		"_":  `\_`,
		"{":  `\{`,
		"}":  `\}`,
		"#":  `\#`,
		"[":  "{[}",
		"]":  "{]}",
		"\\": `$\backslash$`,
		"~":  `\textasciitilde{}`,
		"^":  `\textasciicircum{}`,
		"`":  `\textasciigrave{}`,
		"@":  `\symbol{64}`,
	}
	for in, want := range cases {
		if got := Escape(TargetLatex, in); got != want {
			t.Errorf("Escape(latex, %q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscape_PassThrough(t *testing.T) {
	if got := Escape(TargetHTML, "plain text"); got != "plain text" {
		t.Errorf("expected pass-through, got %q", got)
	}
	if got := Escape(TargetLatex, "plain text"); got != "plain text" {
		t.Errorf("expected pass-through, got %q", got)
	}
}

func TestEscapeWrap_NoSplitByDefault(t *testing.T) {
	s := "someVeryLongCamelCaseIdentifier"
	if got := EscapeWrap(TargetHTML, s, -1); got != s {
		t.Errorf("expected no wrapping, got %q", got)
	}
}

func TestEscapeWrap_SplitsLongIdentifiers(t *testing.T) {
	got := EscapeWrap(TargetHTML, "generateDocumentationIndex", 10)
	// A space marker must appear somewhere past the threshold.
	if !strings.Contains(got, " ") {
		t.Errorf("expected a wrap marker in %q", got)
	}
	if strings.ReplaceAll(got, " ", "") != "generateDocumentationIndex" {
		t.Errorf("wrapping changed the content: %q", got)
	}
}

func TestEscapeWrap_ShortStaysUnwrapped(t *testing.T) {
	if got := EscapeWrap(TargetHTML, "short", 20); got != "short" {
		t.Errorf("expected %q, got %q", "short", got)
	}
}

func TestNextSplitPoint(t *testing.T) {
	// '_' is a boundary.
	if got := nextSplitPoint("ab_cd", 0); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	// Lowercase followed by uppercase is a boundary.
	if got := nextSplitPoint("fooBar", 0); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	// No boundary: last index.
	if got := nextSplitPoint("abc", 0); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}
