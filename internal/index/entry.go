// Package index implements the persistent tab-separated index file format and
// the cross-document merge that builds one navigable index out of many
// per-document index files.
package index

import (
	"fmt"
	"os"
	"strings"
)

// Ext is the file extension of on-disk index files.
const Ext = ".idx"

// Entry is one recorded index term. Link is "file#anchor", or just "file" for
// a title entry marking a whole document. Title and Desc are optional display
// columns.
type Entry struct {
	Keyword string
	Link    string
	Title   string
	Desc    string
}

// IsTitle reports whether the entry marks a whole document rather than a
// point within it.
func (e Entry) IsTitle() bool {
	return !strings.Contains(e.Link, "#")
}

// QuoteColumn escapes a title/description column so embedded separators
// cannot corrupt the line structure.
func QuoteColumn(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// UnquoteColumn reverses QuoteColumn exactly.
func UnquoteColumn(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Line serializes the entry as one index file line (without the newline).
func (e Entry) Line() string {
	if e.Title == "" && e.Desc == "" {
		return e.Keyword + "\t" + e.Link
	}
	return e.Keyword + "\t" + e.Link + "\t" + QuoteColumn(e.Title) + "\t" + QuoteColumn(e.Desc)
}

// ParseFile reads one index file. The returned title is non-nil when the
// file's first entry is a title entry; body holds the remaining entries in
// file order. Lines without a tab separator are dropped silently; a link
// segment with embedded tabs must split into exactly link, title and
// description columns or the file is malformed.
func ParseFile(path string) (title *Entry, body []Entry, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	first := true
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		keyword, rest, ok := strings.Cut(line, "\t")
		if !ok {
			// Index files are regenerated artifacts; a corrupt line
			// degrades gracefully instead of failing the merge.
			continue
		}
		entry := Entry{Keyword: keyword}
		if strings.Contains(rest, "\t") {
			cols := strings.Split(rest, "\t")
			if len(cols) != 3 {
				return nil, nil, fmt.Errorf("%s: expected 4 columns, found %d: %q", path, len(cols)+1, line)
			}
			entry.Link = cols[0]
			entry.Title = UnquoteColumn(cols[1])
			entry.Desc = UnquoteColumn(cols[2])
		} else {
			entry.Link = rest
		}
		if first && entry.IsTitle() {
			t := entry
			title = &t
		} else {
			body = append(body, entry)
		}
		first = false
	}
	return title, body, nil
}
