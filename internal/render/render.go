// Package render walks a parsed document tree and emits HTML or LaTeX,
// recording table-of-contents entries and index terms as it goes.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/rstdoc/internal/highlight"
	"github.com/dgallion1/rstdoc/internal/index"
	"github.com/dgallion1/rstdoc/internal/rst"
	"github.com/dgallion1/rstdoc/internal/subst"
)

// DefaultLanguage is assumed for code blocks that do not name one.
const DefaultLanguage = "go"

// MsgKind classifies renderer diagnostics.
type MsgKind int

const (
	// UnknownLanguage reports a code block naming a language with no lexer.
	UnknownLanguage MsgKind = iota
)

func (k MsgKind) String() string {
	if k == UnknownLanguage {
		return "unknown language"
	}
	return "diagnostic"
}

// MsgHandler receives non-fatal diagnostics with enough location context to
// be actionable. Rendering continues with a safe fallback after the call.
type MsgHandler func(filename string, line, col int, kind MsgKind, arg string)

// MetaKind names the write-once metadata slots of a document.
type MetaKind int

const (
	MetaTitle MetaKind = iota
	MetaSubtitle
	MetaAuthor
	MetaVersion
	metaCount
)

// TocEntry is one recorded table-of-contents entry, in document order.
type TocEntry struct {
	Refname string
	Node    *rst.Node
	Header  string
}

// Config supplies named per-document settings. Key lookup ignores case and
// underscores.
type Config map[string]string

// Get returns the value for a style-insensitive key match, or "".
func (c Config) Get(key string) string {
	for k, v := range c {
		if subst.EqIgnoreStyle(k, key) {
			return v
		}
	}
	return ""
}

// Generator holds the state of one document render. A Generator must not be
// shared between concurrent renders; independent documents render
// concurrently with independent Generators.
type Generator struct {
	Target   Target
	Filename string

	Toc []TocEntry

	config     Config
	splitAfter int
	hasToc     bool
	meta       [metaCount]string
	section    string // most recent headline text, annotates index entries
	seenTerms  map[string]int
	theIndex   []byte
	msg        MsgHandler
}

// New returns a Generator for one document. filename identifies the source
// document; its base name with the .html extension becomes the link target
// of recorded index entries. A nil msg handler logs through slog.
func New(target Target, filename string, cfg Config, msg MsgHandler) *Generator {
	if msg == nil {
		msg = func(filename string, line, col int, kind MsgKind, arg string) {
			slog.Warn("render diagnostic",
				"file", filename, "line", line, "col", col,
				"kind", kind.String(), "arg", arg)
		}
	}
	g := &Generator{
		Target:     target,
		Filename:   filename,
		config:     cfg,
		splitAfter: 20,
		seenTerms:  make(map[string]int),
		msg:        msg,
	}
	if v := cfg.Get("split.item.toc"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			g.splitAfter = n
		}
	}
	return g
}

// EnableTOC requests table-of-contents collection, normally triggered by a
// contents node in the document itself.
func (g *Generator) EnableTOC() { g.hasToc = true }

// Meta returns the value of a metadata slot.
func (g *Generator) Meta(kind MetaKind) string { return g.meta[kind] }

// setMeta writes a metadata slot; the first writer wins.
func (g *Generator) setMeta(kind MetaKind, value string) bool {
	if g.meta[kind] != "" {
		return false
	}
	g.meta[kind] = value
	return true
}

// RenderFragment renders the tree rooted at n and returns the output.
func (g *Generator) RenderFragment(n *rst.Node) string {
	var out []byte
	g.Render(n, &out)
	return string(out)
}

// dispatch picks the format string matching the active target and
// substitutes the values into it. The format strings are compiled-in, so a
// substitution failure is a programmer error.
func (g *Generator) dispatch(out *[]byte, htmlFormat, latexFormat string, values ...string) {
	f := htmlFormat
	if g.Target == TargetLatex {
		f = latexFormat
	}
	if err := subst.Append(out, f, nil, values); err != nil {
		panic(err)
	}
}

func (g *Generator) renderSons(n *rst.Node, out *[]byte) {
	for _, son := range n.Sons {
		g.Render(son, out)
	}
}

func (g *Generator) renderSonsString(n *rst.Node) string {
	var tmp []byte
	g.renderSons(n, &tmp)
	return string(tmp)
}

// wrapSons renders the children into a temporary buffer and substitutes the
// result into the target's format string as $1.
func (g *Generator) wrapSons(n *rst.Node, out *[]byte, htmlFormat, latexFormat string) {
	g.dispatch(out, htmlFormat, latexFormat, g.renderSonsString(n))
}

// Render appends the rendering of n to out. Rendering a nil node is a no-op.
// Every node kind has a rule; an unmatched kind is an internal error, never a
// silently skipped node.
func (g *Generator) Render(n *rst.Node, out *[]byte) {
	if n == nil {
		return
	}
	switch n.Kind {
	case rst.Inner, rst.DirArg, rst.Raw, rst.DefItem:
		g.renderSons(n, out)
	case rst.Headline:
		g.renderHeadline(n, out)
	case rst.Overline:
		g.renderOverline(n, out)
	case rst.Transition:
		g.dispatch(out, "\n<hr />\n", "\n\n\\vspace{0.6cm}\\hrule\n")
	case rst.Paragraph:
		g.wrapSons(n, out, "<p>$1</p>\n", "$1\n\n")
	case rst.BulletList:
		g.wrapSons(n, out, "<ul class=\"simple\">$1</ul>\n", "\\begin{itemize}$1\\end{itemize}\n")
	case rst.BulletItem, rst.EnumItem:
		g.wrapSons(n, out, "<li>$1</li>\n", "\\item $1\n")
	case rst.EnumList:
		g.wrapSons(n, out, "<ol class=\"simple\">$1</ol>\n", "\\begin{enumerate}$1\\end{enumerate}\n")
	case rst.DefList:
		g.wrapSons(n, out, "<dl class=\"docutils\">$1</dl>\n", "\\begin{description}$1\\end{description}\n")
	case rst.DefName:
		g.wrapSons(n, out, "<dt>$1</dt>\n", "\\item[$1] ")
	case rst.DefBody:
		g.wrapSons(n, out, "<dd>$1</dd>\n", "$1\n")
	case rst.FieldList:
		g.wrapSons(n, out,
			"<table class=\"docinfo\" frame=\"void\" rules=\"none\">$1</table>\n",
			"\\begin{description}$1\\end{description}\n")
	case rst.Field:
		g.renderField(n, out)
	case rst.FieldName:
		g.wrapSons(n, out, "<th class=\"docinfo-name\">$1:</th>", "\\item[$1:]")
	case rst.FieldBody:
		g.wrapSons(n, out, "<td>$1</td>", " $1\n")
	case rst.OptionList:
		g.wrapSons(n, out,
			"<table frame=\"void\">$1</table>\n",
			"\\begin{description}\n$1\\end{description}\n")
	case rst.OptionListItem:
		g.wrapSons(n, out, "<tr>$1</tr>\n", "$1")
	case rst.OptionGroup:
		g.wrapSons(n, out, "<th align=\"left\">$1</th>", "\\item[$1]")
	case rst.Description:
		g.wrapSons(n, out, "<td align=\"left\">$1</td>", " $1\n")
	case rst.LineBlock:
		g.wrapSons(n, out, "<p>$1</p>\n", "$1\n\n")
	case rst.LineBlockItem:
		g.wrapSons(n, out, "$1<br />", "$1\\\\\n")
	case rst.BlockQuote:
		g.wrapSons(n, out,
			"<blockquote><p>$1</p></blockquote>\n",
			"\\begin{quote}$1\\end{quote}\n")
	case rst.LiteralBlock:
		g.wrapSons(n, out, "<pre>$1</pre>\n", "\\begin{rstpre}\n$1\n\\end{rstpre}\n")
	case rst.CodeBlock:
		g.renderCodeBlock(n, out)
	case rst.Table, rst.GridTable:
		g.renderTable(n, out)
	case rst.TableRow:
		g.renderTableRow(n, out)
	case rst.TableHeaderCell:
		g.wrapSons(n, out, "<th>$1</th>", "\\textbf{$1}")
	case rst.TableDataCell:
		g.wrapSons(n, out, "<td>$1</td>", "$1")
	case rst.Ref:
		name := strings.TrimSpace(n.InnerText())
		g.dispatch(out,
			"<a class=\"reference external\" href=\"#$2\">$1</a>",
			"$1\\ref{$2}",
			g.renderSonsString(n), slug(name))
	case rst.StandaloneHyperlink:
		g.dispatch(out,
			"<a class=\"reference external\" href=\"$1\">$1</a>",
			"\\href{$1}{$1}",
			Escape(g.Target, n.Text))
	case rst.Hyperlink:
		g.dispatch(out,
			"<a class=\"reference external\" href=\"$1\">$2</a>",
			"\\href{$1}{$2}",
			Escape(g.Target, n.Text), g.renderSonsString(n))
	case rst.RawHTML:
		if g.Target == TargetHTML {
			*out = append(*out, n.Text...)
		}
	case rst.RawLatex:
		if g.Target == TargetLatex {
			*out = append(*out, n.Text...)
		}
	case rst.Image, rst.Figure:
		g.renderImage(n, out)
	case rst.Container:
		g.dispatch(out, "<div class=\"$1\">$2</div>\n", "$2",
			Escape(g.Target, n.Opt("class")), g.renderSonsString(n))
	case rst.Contents:
		g.hasToc = true
	case rst.Directive, rst.Index:
		// Metadata only, nothing to emit.
	case rst.Emphasis:
		g.wrapSons(n, out, "<em>$1</em>", "\\emph{$1}")
	case rst.StrongEmphasis:
		g.wrapSons(n, out, "<strong>$1</strong>", "\\textbf{$1}")
	case rst.TripleEmphasis:
		g.wrapSons(n, out, "<strong><em>$1</em></strong>", "\\textbf{\\emph{$1}}")
	case rst.InterpretedText:
		g.wrapSons(n, out, "<cite>$1</cite>", "\\emph{$1}")
	case rst.InlineLiteral:
		g.dispatch(out,
			"<tt class=\"docutils literal\"><span class=\"pre\">$1</span></tt>",
			"\\texttt{$1}",
			EscapeWrap(g.Target, n.InnerText(), g.splitAfter))
	case rst.IdxTerm:
		g.renderIndexTerm(n, out)
	case rst.Sub:
		g.wrapSons(n, out, "<sub>$1</sub>", "\\textsubscript{$1}")
	case rst.Sup:
		g.wrapSons(n, out, "<sup>$1</sup>", "\\textsuperscript{$1}")
	case rst.Smiley:
		*out = append(*out, Escape(g.Target, n.Text)...)
	case rst.Leaf:
		*out = append(*out, Escape(g.Target, n.Text)...)
	case rst.QuotedLiteralBlock, rst.Label, rst.Footnote, rst.Citation,
		rst.Option, rst.OptionString, rst.OptionArgument:
		// The parser guarantees these never reach the renderer.
		panic(fmt.Sprintf("render: node kind %s cannot appear here", n.Kind))
	default:
		panic(fmt.Sprintf("render: no rule for node kind %s", n.Kind))
	}
}

func latexHeading(level int) string {
	switch level {
	case 1:
		return "\\section"
	case 2:
		return "\\subsection"
	case 3:
		return "\\subsubsection"
	case 4:
		return "\\paragraph"
	default:
		return "\\subparagraph"
	}
}

func (g *Generator) renderHeadline(n *rst.Node, out *[]byte) {
	tmp := g.renderSonsString(n)
	g.section = tmp
	refname := slug(n.InnerText())
	if g.hasToc {
		g.Toc = append(g.Toc, TocEntry{Refname: refname, Node: n, Header: tmp})
		g.dispatch(out,
			"\n<h$1><a class=\"toc-backref\" id=\"$2\" href=\"#$2\">$3</a></h$1>\n",
			"\n"+latexHeading(n.Level)+"{$3}\\label{$2}\n",
			strconv.Itoa(n.Level), refname, tmp)
	} else {
		g.dispatch(out,
			"\n<h$1 id=\"$2\">$3</h$1>\n",
			"\n"+latexHeading(n.Level)+"{$3}\\label{$2}\n",
			strconv.Itoa(n.Level), refname, tmp)
	}
	// The leading spaces encode the heading depth for the merged TOC.
	plain := strings.TrimSpace(n.InnerText())
	level := n.Level
	if level < 1 {
		level = 1
	}
	g.recordIndexTerm(refname, plain, strings.Repeat(" ", level)+plain, "")
}

// renderOverline treats the first overline as the document title and the
// second as its subtitle; only later ones render as headings. Documents with
// zero overlines simply have no title.
func (g *Generator) renderOverline(n *rst.Node, out *[]byte) {
	tmp := g.renderSonsString(n)
	plain := strings.TrimSpace(n.InnerText())
	if g.setMeta(MetaTitle, tmp) {
		g.section = tmp
		g.recordIndexTerm("", plain, "", "")
		return
	}
	if g.setMeta(MetaSubtitle, tmp) {
		g.section = tmp
		return
	}
	g.section = tmp
	refname := slug(n.InnerText())
	g.dispatch(out,
		"\n<h$1 id=\"$2\"><center>$3</center></h$1>\n",
		"\n"+latexHeading(n.Level)+"*{$3}\\label{$2}\n",
		strconv.Itoa(n.Level), refname, tmp)
}

// renderField captures author/version metadata in LaTeX mode; a consumed
// field is not also rendered as a row.
func (g *Generator) renderField(n *rst.Node, out *[]byte) {
	if len(n.Sons) >= 2 && g.Target == TargetLatex {
		name := strings.TrimSpace(n.Sons[0].InnerText())
		body := strings.TrimSpace(g.renderSonsString(n.Sons[1]))
		switch {
		case subst.EqIgnoreStyle(name, "author") || subst.EqIgnoreStyle(name, "authors"):
			if g.setMeta(MetaAuthor, body) {
				return
			}
		case subst.EqIgnoreStyle(name, "version"):
			if g.setMeta(MetaVersion, body) {
				return
			}
		}
	}
	g.wrapSons(n, out, "<tr>$1</tr>\n", "$1")
}

func (g *Generator) renderTable(n *rst.Node, out *[]byte) {
	if g.Target == TargetHTML {
		g.wrapSons(n, out, "<table border=\"1\" class=\"docutils\">$1</table>\n", "")
		return
	}
	// LaTeX needs the column count once per table for the column spec.
	cols := 0
	for _, row := range n.Sons {
		if row.Kind == rst.TableRow {
			cols = len(row.Sons)
			break
		}
	}
	spec := strings.Repeat("|X", cols) + "|"
	g.dispatch(out,
		"",
		"\\begin{table}\\begin{rsttab}{$1}\n\\hline\n$2\\end{rsttab}\\end{table}\n",
		spec, g.renderSonsString(n))
}

func (g *Generator) renderTableRow(n *rst.Node, out *[]byte) {
	if g.Target == TargetHTML {
		g.wrapSons(n, out, "<tr>$1</tr>\n", "")
		return
	}
	var tmp []byte
	for i, cell := range n.Sons {
		if i > 0 {
			tmp = append(tmp, '&')
		}
		g.Render(cell, &tmp)
	}
	g.dispatch(out, "", "$1\\\\\n\\hline\n", string(tmp))
}

func (g *Generator) renderImage(n *rst.Node, out *[]byte) {
	var opts []byte
	addOpt := func(name, htmlFormat, latexFormat string) {
		if v := strings.TrimSpace(n.Opt(name)); v != "" {
			g.dispatch(&opts, htmlFormat, latexFormat, Escape(g.Target, v))
		}
	}
	addOpt("scale", " scale=\"$1\"", "scale=$1,")
	addOpt("height", " height=\"$1\"", "height=$1,")
	addOpt("width", " width=\"$1\"", "width=$1,")
	// alt and align have no LaTeX equivalent in this model.
	addOpt("alt", " alt=\"$1\"", "")
	addOpt("align", " align=\"$1\"", "")

	uri := Escape(g.Target, n.Text)
	if g.Target == TargetHTML {
		g.dispatch(out, "<img src=\"$1\"$2 />", "", uri, string(opts))
	} else if len(opts) > 0 {
		g.dispatch(out, "", "\\includegraphics[$2]{$1}",
			uri, strings.TrimSuffix(string(opts), ","))
	} else {
		g.dispatch(out, "", "\\includegraphics{$1}", uri)
	}
	if n.Kind == rst.Figure && len(n.Sons) > 0 {
		g.wrapSons(n, out, "\n<p class=\"caption\">$1</p>\n", "\\caption{$1}\n")
	}
}

func (g *Generator) renderCodeBlock(n *rst.Node, out *[]byte) {
	code := n.InnerText()
	lang := strings.TrimSpace(n.Opt("lang"))
	explicit := lang != ""
	if !explicit {
		lang = DefaultLanguage
	}
	g.dispatch(out, "<pre>", "\\begin{rstpre}\n")
	tokens, err := highlight.Tokenize(lang, code)
	if err != nil {
		if explicit {
			g.msg(g.Filename, n.Line, n.Col, UnknownLanguage, lang)
		}
		*out = append(*out, code...)
	} else {
		for _, tok := range tokens {
			if tok.Class == "" {
				*out = append(*out, tok.Text...)
				continue
			}
			g.dispatch(out, "<span class=\"$1\">$2</span>", "\\span$1{$2}",
				tok.Class, Escape(g.Target, tok.Text))
		}
	}
	g.dispatch(out, "</pre>\n", "\n\\end{rstpre}\n")
}

// renderIndexTerm emits the inline content wrapped in an anchor and records
// the term. Anchor ids repeat-proof: the Nth re-use of a slug within one
// document gets the occurrence count as a suffix.
func (g *Generator) renderIndexTerm(n *rst.Node, out *[]byte) {
	base := slug(n.InnerText())
	id := base
	if cnt := g.seenTerms[base]; cnt > 0 {
		id = base + "_" + strconv.Itoa(cnt)
	}
	g.seenTerms[base]++

	term := g.renderSonsString(n)
	g.recordIndexTerm(id, strings.TrimSpace(n.InnerText()), g.section, "")
	g.dispatch(out, "<span id=\"$1\">$2</span>", "$2\\label{$1}", id, term)
}

// slug derives a stable anchor name from rendered header text.
func slug(text string) string {
	var b []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b = append(b, c)
		case c >= 'A' && c <= 'Z':
			b = append(b, c+('a'-'A'))
		default:
			if len(b) > 0 && b[len(b)-1] != '-' {
				b = append(b, '-')
			}
		}
	}
	return strings.TrimSuffix(string(b), "-")
}

// recordIndexTerm appends one entry line to the document's index buffer. An
// empty id marks a title entry, which goes to the front so the merger can
// classify the file from its first line alone.
func (g *Generator) recordIndexTerm(id, term, linkTitle, linkDesc string) {
	e := index.Entry{
		Keyword: term,
		Link:    g.outFilename(),
		Title:   linkTitle,
		Desc:    linkDesc,
	}
	if id != "" {
		e.Link += "#" + id
	}
	line := e.Line() + "\n"
	if id == "" {
		g.theIndex = append([]byte(line), g.theIndex...)
	} else {
		g.theIndex = append(g.theIndex, line...)
	}
}

// outFilename is the link target recorded for this document.
func (g *Generator) outFilename() string {
	base := filepath.Base(g.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

// IndexEmpty reports whether any index terms were recorded.
func (g *Generator) IndexEmpty() bool { return len(g.theIndex) == 0 }

// WriteIndexFile writes the accumulated index to path. An empty index writes
// nothing and creates no file.
func (g *Generator) WriteIndexFile(path string) error {
	if len(g.theIndex) == 0 {
		return nil
	}
	return os.WriteFile(path, g.theIndex, 0o644)
}
