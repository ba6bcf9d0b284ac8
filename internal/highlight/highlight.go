// Package highlight tokenizes source code inside literal blocks. It wraps
// the chroma lexer registry; the renderer only sees token spans and their
// span class.
package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Token is one lexed span. Class is "" for whitespace and spans with no
// styling of their own; those are emitted raw.
type Token struct {
	Class string
	Text  string
}

// Supported reports whether a lexer exists for the language name.
func Supported(lang string) bool {
	return lexers.Get(lang) != nil
}

// Tokenize lexes code as the given language.
func Tokenize(lang, code string) ([]Token, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil, fmt.Errorf("no lexer for language %q", lang)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", lang, err)
	}
	var out []Token
	for _, tok := range it.Tokens() {
		out = append(out, Token{Class: classOf(tok.Type), Text: tok.Value})
	}
	return out, nil
}

// classOf maps chroma token categories onto the span classes the output
// styles know about.
func classOf(t chroma.TokenType) string {
	switch {
	case t.InCategory(chroma.Keyword):
		return "Keyword"
	case t.InCategory(chroma.Comment):
		return "Comment"
	case t.InSubCategory(chroma.LiteralString):
		return "StringLit"
	case t.InSubCategory(chroma.LiteralNumber):
		return "DecNumber"
	case t.InCategory(chroma.Operator):
		return "Operator"
	case t.InCategory(chroma.Punctuation):
		return "Punctuation"
	default:
		return ""
	}
}
