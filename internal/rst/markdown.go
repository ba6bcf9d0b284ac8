package rst

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown converts a markdown source into a renderable node tree using
// goldmark. It covers the block and inline constructs the renderer handles;
// anything goldmark produces beyond that is flattened to plain leaves.
func ParseMarkdown(r io.Reader) (*Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	root := NewNode(Inner)
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if n := convert(c, src); n != nil {
			root.Add(n)
		}
	}
	// A document opening with an h1 follows the title convention: the
	// renderer turns the first overline into the document title.
	if len(root.Sons) > 0 && root.Sons[0].Kind == Headline && root.Sons[0].Level == 1 {
		root.Sons[0].Kind = Overline
	}
	return root, nil
}

func convert(n ast.Node, src []byte) *Node {
	switch node := n.(type) {
	case *ast.Heading:
		h := &Node{Kind: Headline, Level: node.Level}
		convertChildren(h, node, src)
		return h

	case *ast.Paragraph, *ast.TextBlock:
		p := NewNode(Paragraph)
		convertChildren(p, n, src)
		return p

	case *ast.Blockquote:
		q := NewNode(BlockQuote)
		convertChildren(q, node, src)
		return q

	case *ast.ThematicBreak:
		return NewNode(Transition)

	case *ast.List:
		kind, item := BulletList, BulletItem
		if node.IsOrdered() {
			kind, item = EnumList, EnumItem
		}
		list := NewNode(kind)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			li := NewNode(item)
			convertChildren(li, c, src)
			list.Add(li)
		}
		return list

	case *ast.FencedCodeBlock:
		cb := NewNode(CodeBlock, NewLeaf(blockText(node, src)))
		if node.Info != nil {
			lang := strings.Fields(string(node.Info.Segment.Value(src)))
			if len(lang) > 0 {
				cb.SetOpt("lang", lang[0])
			}
		}
		return cb

	case *ast.CodeBlock:
		return NewNode(LiteralBlock, NewLeaf(blockText(node, src)))

	case *ast.Link:
		link := &Node{Kind: Hyperlink, Text: string(node.Destination)}
		convertChildren(link, node, src)
		return link

	case *ast.AutoLink:
		return &Node{Kind: StandaloneHyperlink, Text: string(node.URL(src))}

	case *ast.Image:
		img := &Node{Kind: Image, Text: string(node.Destination)}
		if alt := nodeText(node, src); alt != "" {
			img.SetOpt("alt", alt)
		}
		return img

	case *ast.Emphasis:
		kind := Emphasis
		if node.Level >= 2 {
			kind = StrongEmphasis
		}
		em := NewNode(kind)
		convertChildren(em, node, src)
		return em

	case *ast.CodeSpan:
		return NewNode(InlineLiteral, NewLeaf(nodeText(node, src)))

	case *ast.Text:
		t := string(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			t += " "
		}
		return NewLeaf(t)

	case *ast.String:
		return NewLeaf(string(node.Value))

	case *ast.HTMLBlock:
		return &Node{Kind: RawHTML, Text: blockText(node, src)}

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(src))
		}
		return &Node{Kind: RawHTML, Text: buf.String()}

	default:
		// Unknown construct: keep its inline content.
		inner := NewNode(Inner)
		convertChildren(inner, n, src)
		if len(inner.Sons) == 0 {
			return nil
		}
		return inner
	}
}

func convertChildren(dst *Node, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if son := convert(c, src); son != nil {
			dst.Add(son)
		}
	}
}

// blockText joins the source lines owned by a block node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

// nodeText collects the raw text under an inline node.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
