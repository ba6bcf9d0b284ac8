package index

import (
	"io"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestCmpIgnoreStyle(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"foo", "Foo", 0},
		{"chunk_size", "chunkSize", 0},
		{"bar", "foo", -1},
		{"foo", "bar", 1},
		{"foo", "foobar", -1},
		{"_", "", 0},
	}
	for _, tc := range cases {
		got := cmpIgnoreStyle(tc.a, tc.b)
		switch {
		case tc.want == 0 && got != 0,
			tc.want < 0 && got >= 0,
			tc.want > 0 && got <= 0:
			t.Errorf("cmpIgnoreStyle(%q, %q) = %d, want sign %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSortIndex_StableAndTieBroken(t *testing.T) {
	entries := []Entry{
		{Keyword: "foo", Link: "b.html#foo"},
		{Keyword: "Foo", Link: "a.html#foo"},
		{Keyword: "bar", Link: "a.html#bar"},
	}
	sortIndex(entries)
	if entries[0].Keyword != "bar" {
		t.Errorf("expected bar first, got %q", entries[0].Keyword)
	}
	// Within the style-equal foo group, the link decides.
	if entries[1].Link != "a.html#foo" || entries[2].Link != "b.html#foo" {
		t.Errorf("unexpected order: %+v", entries)
	}
}

func TestEntryLevel(t *testing.T) {
	lvl, display, explicit := entryLevel(Entry{Keyword: "k", Title: "  Deep"}, 0)
	if lvl != 2 || display != "Deep" || !explicit {
		t.Errorf("got (%d, %q, %v)", lvl, display, explicit)
	}
	lvl, display, explicit = entryLevel(Entry{Keyword: "k", Title: ""}, 2)
	if lvl != 3 || display != "k" || explicit {
		t.Errorf("plain entry nests under the previous real level: (%d, %q, %v)", lvl, display, explicit)
	}
}

// checkBalanced tokenizes an HTML fragment and verifies every close tag
// matches a prior open of the same element, ending with everything closed.
func checkBalanced(t *testing.T, frag string) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(frag))
	depth := make(map[string]int)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				t.Fatalf("tokenizer error: %v", z.Err())
			}
			for tag, d := range depth {
				if d != 0 {
					t.Errorf("unclosed <%s> x%d", tag, d)
				}
			}
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			depth[string(name)]++
		case html.EndTagToken:
			name, _ := z.TagName()
			depth[string(name)]--
			if depth[string(name)] < 0 {
				t.Fatalf("stray </%s>", string(name))
			}
		}
	}
}

func TestAppendDocTOC_BalancedNesting(t *testing.T) {
	mk := func(level int, name string) Entry {
		return Entry{
			Keyword: name,
			Link:    "doc.html#" + name,
			Title:   strings.Repeat(" ", level) + name,
		}
	}
	entries := []Entry{
		mk(1, "a"), mk(2, "b"), mk(2, "c"), mk(3, "d"), mk(2, "e"), mk(1, "f"),
	}
	var b []byte
	appendDocTOC(&b, Entry{Keyword: "Doc", Link: "doc.html"}, entries)
	out := string(b)
	checkBalanced(t, out)
	if opens := strings.Count(out, "<ul"); opens != 3 {
		t.Errorf("expected 3 nested lists, got %d:\n%s", opens, out)
	}
	// The deepest entry sits inside the third list.
	d := strings.Index(out, `href="doc.html#d"`)
	if d < 0 || strings.Count(out[:d], "<ul")-strings.Count(out[:d], "</ul>") != 3 {
		t.Errorf("entry d must be nested three deep:\n%s", out)
	}
}

func TestMerge_EmptyDir(t *testing.T) {
	got, err := Merge(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestMerge_DocsAndSymbols(t *testing.T) {
	dir := t.TempDir()
	writeIdx(t, dir, "guide.idx",
		"User Guide\tguide.html\n"+
			"Intro\tguide.html#intro\t Intro\t\n"+
			"Details\tguide.html#details\t  Details\t\n"+
			"Usage\tguide.html#usage\t Usage\t\n")
	writeIdx(t, dir, "amod.idx",
		"foo\tamod.html#foo\nbar\tamod.html#bar\n")
	writeIdx(t, dir, "bmod.idx",
		"Foo\tbmod.html#foo\n")
	writeIdx(t, dir, "notes.txt", "ignored, wrong extension\n")

	got, err := Merge(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkBalanced(t, got)

	// Document link, then module links in name order.
	if !strings.Contains(got, `href="guide.html">User Guide</a>`) {
		t.Errorf("missing document link:\n%s", got)
	}
	aPos := strings.Index(got, `href="amod.html">amod</a>`)
	bPos := strings.Index(got, `href="bmod.html">bmod</a>`)
	if aPos < 0 || bPos < 0 || aPos > bPos {
		t.Errorf("module links missing or out of order:\n%s", got)
	}

	// The guide TOC nests Details one level under Intro.
	if !strings.Contains(got, "<h2>Documentation files</h2>") {
		t.Errorf("missing documentation section:\n%s", got)
	}
	intro := strings.Index(got, `href="guide.html#intro">Intro</a>`)
	details := strings.Index(got, `href="guide.html#details">Details</a>`)
	usage := strings.Index(got, `href="guide.html#usage">Usage</a>`)
	if intro < 0 || details < 0 || usage < 0 || !(intro < details && details < usage) {
		t.Errorf("TOC entries missing or out of order:\n%s", got)
	}

	// Symbols: bar group before the style-insensitive foo/Foo group, which
	// holds both links under one term.
	barGroup := strings.Index(got, "<dt><span>bar:</span></dt>")
	fooGroup := strings.Index(got, "<dt><span>foo:</span></dt>")
	if barGroup < 0 || fooGroup < 0 || barGroup > fooGroup {
		t.Errorf("symbol groups missing or out of order:\n%s", got)
	}
	fooSection := got[fooGroup:]
	if !strings.Contains(fooSection, `href="amod.html#foo"`) ||
		!strings.Contains(fooSection, `href="bmod.html#foo"`) {
		t.Errorf("foo group must hold both occurrences:\n%s", fooSection)
	}
}

func TestMerge_TOCOnlyEntriesAreNotSymbols(t *testing.T) {
	dir := t.TempDir()
	writeIdx(t, dir, "mod.idx",
		"Chapter\tmod.html#chapter\t Chapter\t\n"+
			"realSym\tmod.html#realsym\n")
	got, err := Merge(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<dt><span>Chapter:") {
		t.Errorf("leading-space entry leaked into the symbol index:\n%s", got)
	}
	if !strings.Contains(got, "<dt><span>realSym:") {
		t.Errorf("plain entry missing from the symbol index:\n%s", got)
	}
}

func TestMerge_DescriptionBecomesHoverTitle(t *testing.T) {
	dir := t.TempDir()
	writeIdx(t, dir, "mod.idx",
		"sym\tmod.html#sym\tAPI\topens a file\n")
	got, err := Merge(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `title="opens a file"`) {
		t.Errorf("expected a hover title:\n%s", got)
	}
}

func TestMerge_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	writeIdx(t, dir, "bad.idx", "foo\tmod.html#foo\textra\n")
	if _, err := Merge(dir); err == nil {
		t.Fatal("expected an error for a malformed index file")
	}
}
