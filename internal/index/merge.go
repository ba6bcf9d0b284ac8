package index

import (
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// cmpIgnoreStyle compares identifiers ignoring case and underscores,
// returning <0, 0 or >0.
func cmpIgnoreStyle(a, b string) int {
	i, j := 0, 0
	for {
		for i < len(a) && a[i] == '_' {
			i++
		}
		for j < len(b) && b[j] == '_' {
			j++
		}
		switch {
		case i == len(a) && j == len(b):
			return 0
		case i == len(a):
			return -1
		case j == len(b):
			return 1
		}
		ca, cb := lower(a[i]), lower(b[j])
		if ca != cb {
			return int(ca) - int(cb)
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

// entryLess orders entries by style-insensitive keyword, then
// style-insensitive link, with literal comparison breaking remaining ties so
// only identical entries compare equal.
func entryLess(a, b Entry) bool {
	if c := cmpIgnoreStyle(a.Keyword, b.Keyword); c != 0 {
		return c < 0
	}
	if c := cmpIgnoreStyle(a.Link, b.Link); c != 0 {
		return c < 0
	}
	if a.Keyword != b.Keyword {
		return a.Keyword < b.Keyword
	}
	return a.Link < b.Link
}

// sortIndex sorts entries stably; the grouping pass below depends on equal
// keywords ending up in one consecutive run.
func sortIndex(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
}

// Merge reads every index file in dir and produces the combined HTML
// fragment: document links, module links, per-document tables of contents and
// the grouped API symbol index. An empty input yields an empty string.
func Merge(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		symbols []Entry
		titles  []Entry
		modules []string
		docs    = make(map[string][]Entry) // keyed by title link
	)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), Ext) {
			continue
		}
		title, body, err := ParseFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return "", err
		}
		if title != nil {
			titles = append(titles, *title)
			docs[title.Link] = body
		} else {
			for _, e := range body {
				// Leading space marks a TOC-only entry; it is not a symbol.
				if !strings.HasPrefix(e.Title, " ") {
					symbols = append(symbols, e)
				}
			}
			modules = append(modules, strings.TrimSuffix(f.Name(), Ext))
		}
	}

	sortIndex(symbols)
	sort.SliceStable(titles, func(i, j int) bool { return entryLess(titles[i], titles[j]) })
	sort.Strings(modules)

	var b []byte
	if len(titles) > 0 {
		b = append(b, "<ul class=\"simple\">\n"...)
		for _, t := range titles {
			appendLink(&b, t.Link, t.Keyword, "")
		}
		b = append(b, "</ul>\n"...)
	}
	if len(modules) > 0 {
		b = append(b, "<ul class=\"simple\">\n"...)
		for _, m := range modules {
			appendLink(&b, m+".html", m, "")
		}
		b = append(b, "</ul>\n"...)
	}
	if len(titles) > 0 {
		b = append(b, "<h2>Documentation files</h2>\n<ul class=\"simple\">\n"...)
		for _, t := range titles {
			appendDocTOC(&b, t, docs[t.Link])
		}
		b = append(b, "</ul>\n"...)
	}
	if len(symbols) > 0 {
		b = append(b, "<h2>API symbols</h2>\n"...)
		appendSymbolIndex(&b, symbols)
	}
	return string(b), nil
}

// entryLevel extracts the TOC nesting level of an entry: the run of leading
// spaces in its display title, or prevReal+1 for entries without one.
func entryLevel(e Entry, prevReal int) (level int, display string, explicit bool) {
	if strings.HasPrefix(e.Title, " ") {
		n := 0
		for n < len(e.Title) && e.Title[n] == ' ' {
			n++
		}
		return n, e.Title[n:], true
	}
	display = e.Title
	if display == "" {
		display = e.Keyword
	}
	return prevReal + 1, display, false
}

// appendDocTOC rebuilds one document's nested table of contents from its flat
// leveled entries. An open-list marker is emitted whenever the level grows
// and a close marker for every level dropped, so the produced lists nest
// without overlapping and always close back to the top.
func appendDocTOC(b *[]byte, title Entry, entries []Entry) {
	*b = append(*b, "<li><a class=\"reference external\" href=\""...)
	*b = append(*b, html.EscapeString(title.Link)...)
	*b = append(*b, "\">"...)
	*b = append(*b, html.EscapeString(title.Keyword)...)
	*b = append(*b, "</a>\n"...)

	level := 0
	prevReal := 0
	for _, e := range entries {
		lvl, display, explicit := entryLevel(e, prevReal)
		if explicit {
			prevReal = lvl
		}
		for level < lvl {
			*b = append(*b, "<ul class=\"simple\">\n"...)
			level++
		}
		for level > lvl {
			*b = append(*b, "</ul>\n"...)
			level--
		}
		appendLink(b, e.Link, display, e.Desc)
	}
	for level > 0 {
		*b = append(*b, "</ul>\n"...)
		level--
	}
	*b = append(*b, "</li>\n"...)
}

// appendSymbolIndex emits the sorted symbols grouped by keyword. Equality of
// keywords is style-insensitive, matching the sort.
func appendSymbolIndex(b *[]byte, symbols []Entry) {
	*b = append(*b, "<dl>\n"...)
	for i := 0; i < len(symbols); {
		keyword := symbols[i].Keyword
		*b = append(*b, "<dt><span>"...)
		*b = append(*b, html.EscapeString(keyword)...)
		*b = append(*b, ":</span></dt><dd><ul class=\"simple\">\n"...)
		j := i
		for j < len(symbols) && cmpIgnoreStyle(keyword, symbols[j].Keyword) == 0 {
			e := symbols[j]
			text := e.Title
			if text == "" {
				text = e.Link
			}
			appendLink(b, e.Link, text, e.Desc)
			j++
		}
		*b = append(*b, "</ul></dd>\n"...)
		i = j
	}
	*b = append(*b, "</dl>\n"...)
}

// appendLink emits one list-item hyperlink, with the description as a hover
// title when present.
func appendLink(b *[]byte, href, text, desc string) {
	*b = append(*b, "<li><a class=\"reference external\""...)
	if desc != "" {
		*b = append(*b, " title=\""...)
		*b = append(*b, html.EscapeString(desc)...)
		*b = append(*b, '"')
	}
	*b = append(*b, " href=\""...)
	*b = append(*b, html.EscapeString(href)...)
	*b = append(*b, "\">"...)
	*b = append(*b, html.EscapeString(text)...)
	*b = append(*b, "</a></li>\n"...)
}
