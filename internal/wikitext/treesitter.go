package wikitext

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// TreeSitterScanner lexes tags with the tree-sitter HTML grammar. Wikitext
// outside of tags is plain text to that grammar, so only tag and comment
// nodes are taken from the tree.
type TreeSitterScanner struct{}

func (TreeSitterScanner) ScanTags(ctx context.Context, text string) ([]TagToken, error) {
	src := []byte(text)

	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	var tokens []TagToken
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if tok, ok := tokenFromNode(n, src); ok {
			tokens = append(tokens, tok)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens, nil
}

func tokenFromNode(n *sitter.Node, src []byte) (TagToken, bool) {
	var kind TokenKind
	switch n.Type() {
	case "comment":
		return TagToken{Kind: TokenComment, Start: int(n.StartByte()), End: int(n.EndByte())}, true
	case "start_tag":
		kind = TokenOpen
	case "end_tag", "erroneous_end_tag":
		kind = TokenClose
	case "self_closing_tag":
		kind = TokenSelfClosing
	default:
		return TagToken{}, false
	}

	if n.HasError() || n.IsMissing() {
		return TagToken{}, false
	}

	name := ""
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "tag_name" || c.Type() == "erroneous_end_tag_name" {
			name = strings.ToLower(c.Content(src))
			break
		}
	}
	if !KnownTags[name] {
		return TagToken{}, false
	}
	return TagToken{Kind: kind, Name: name, Start: int(n.StartByte()), End: int(n.EndByte())}, true
}
