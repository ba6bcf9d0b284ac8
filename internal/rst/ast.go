package rst

// NodeKind tags a node in a parsed document tree.
type NodeKind int

const (
	// Structure.
	Inner NodeKind = iota // grouping node with no markup of its own
	Headline
	Overline
	Transition
	Paragraph
	BulletList
	BulletItem
	EnumList
	EnumItem
	DefList
	DefItem
	DefName
	DefBody
	FieldList
	Field
	FieldName
	FieldBody
	OptionList
	OptionListItem
	OptionGroup
	Option
	OptionString
	OptionArgument
	Description
	LineBlock
	LineBlockItem
	BlockQuote
	LiteralBlock
	QuotedLiteralBlock
	CodeBlock
	Table
	GridTable
	TableRow
	TableHeaderCell
	TableDataCell
	Label
	Footnote
	Citation
	Directive
	DirArg
	Raw
	RawHTML
	RawLatex
	Container
	Contents
	Image
	Figure
	Index

	// Inline.
	StandaloneHyperlink
	Hyperlink
	Ref
	Emphasis
	StrongEmphasis
	TripleEmphasis
	InterpretedText
	InlineLiteral
	IdxTerm
	Sub
	Sup
	Smiley
	Leaf
)

var kindNames = map[NodeKind]string{
	Inner: "Inner", Headline: "Headline", Overline: "Overline",
	Transition: "Transition", Paragraph: "Paragraph",
	BulletList: "BulletList", BulletItem: "BulletItem",
	EnumList: "EnumList", EnumItem: "EnumItem",
	DefList: "DefList", DefItem: "DefItem", DefName: "DefName", DefBody: "DefBody",
	FieldList: "FieldList", Field: "Field", FieldName: "FieldName", FieldBody: "FieldBody",
	OptionList: "OptionList", OptionListItem: "OptionListItem",
	OptionGroup: "OptionGroup", Option: "Option",
	OptionString: "OptionString", OptionArgument: "OptionArgument",
	Description: "Description", LineBlock: "LineBlock", LineBlockItem: "LineBlockItem",
	BlockQuote: "BlockQuote", LiteralBlock: "LiteralBlock",
	QuotedLiteralBlock: "QuotedLiteralBlock", CodeBlock: "CodeBlock",
	Table: "Table", GridTable: "GridTable", TableRow: "TableRow",
	TableHeaderCell: "TableHeaderCell", TableDataCell: "TableDataCell",
	Label: "Label", Footnote: "Footnote", Citation: "Citation",
	Directive: "Directive", DirArg: "DirArg",
	Raw: "Raw", RawHTML: "RawHTML", RawLatex: "RawLatex",
	Container: "Container", Contents: "Contents",
	Image: "Image", Figure: "Figure", Index: "Index",
	StandaloneHyperlink: "StandaloneHyperlink", Hyperlink: "Hyperlink", Ref: "Ref",
	Emphasis: "Emphasis", StrongEmphasis: "StrongEmphasis", TripleEmphasis: "TripleEmphasis",
	InterpretedText: "InterpretedText", InlineLiteral: "InlineLiteral",
	IdxTerm: "IdxTerm", Sub: "Sub", Sup: "Sup", Smiley: "Smiley", Leaf: "Leaf",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "NodeKind(?)"
}

// Node is one node of a parsed document. Children are ordered; leaves carry
// their text in Text. Headline and Overline nodes carry a nesting Level.
// Directive-style nodes (Image, Figure, CodeBlock, Container) carry their
// attributes in Options.
type Node struct {
	Kind    NodeKind
	Level   int
	Line    int // source position, 0 when the producer has none
	Col     int
	Text    string
	Options map[string]string
	Sons    []*Node
}

// NewNode returns a node of the given kind with the given children.
func NewNode(kind NodeKind, sons ...*Node) *Node {
	return &Node{Kind: kind, Sons: sons}
}

// NewLeaf returns a text leaf.
func NewLeaf(text string) *Node {
	return &Node{Kind: Leaf, Text: text}
}

// Add appends a child node.
func (n *Node) Add(son *Node) {
	n.Sons = append(n.Sons, son)
}

// Opt returns the named directive attribute, or "" when absent.
func (n *Node) Opt(name string) string {
	if n.Options == nil {
		return ""
	}
	return n.Options[name]
}

// SetOpt records a directive attribute on the node.
func (n *Node) SetOpt(name, value string) {
	if n.Options == nil {
		n.Options = make(map[string]string)
	}
	n.Options[name] = value
}

// InnerText collects the raw text of all leaves under n, in document order.
func (n *Node) InnerText() string {
	var out []byte
	n.appendText(&out)
	return string(out)
}

func (n *Node) appendText(out *[]byte) {
	if n == nil {
		return
	}
	if n.Kind == Leaf {
		*out = append(*out, n.Text...)
		return
	}
	for _, son := range n.Sons {
		son.appendText(out)
	}
}
