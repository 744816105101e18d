package wikitext

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyDocument is returned when asked to parse an empty page.
var ErrEmptyDocument = errors.New("wikitext: empty document")

// Options configure Parse.
type Options struct {
	// Scanner lexes tags and comments. Nil means NativeScanner.
	Scanner TagScanner
}

// Document is a parsed page.
type Document struct {
	Text  string
	Nodes []*Node // ordered by Start
}

// Parse builds the node tree of text. Constructs that are never closed
// produce no node; whatever they contained is attached to the next
// enclosing construct instead.
func Parse(ctx context.Context, text string, opts Options) (*Document, error) {
	if text == "" {
		return nil, ErrEmptyDocument
	}
	scanner := opts.Scanner
	if scanner == nil {
		scanner = NativeScanner{}
	}

	tokens, err := scanner.ScanTags(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}

	p := &parser{text: text, tokens: tokens}
	p.run()

	sort.SliceStable(p.nodes, func(i, j int) bool { return p.nodes[i].Start < p.nodes[j].Start })
	return &Document{Text: text, Nodes: p.nodes}, nil
}

type opener struct {
	kind     Kind
	start    int
	name     string
	pipe     int
	children []*Node
}

type parser struct {
	text   string
	tokens []TagToken
	tok    int

	stack []*opener
	nodes []*Node
}

func (p *parser) run() {
	text := p.text
	for i := 0; i < len(text); {
		for p.tok < len(p.tokens) && p.tokens[p.tok].Start < i {
			p.tok++
		}
		if p.tok < len(p.tokens) && p.tokens[p.tok].Start == i {
			i = p.handleToken(p.tokens[p.tok])
			continue
		}

		rest := text[i:]
		switch text[i] {
		case '{':
			switch {
			case strings.HasPrefix(rest, "{{{"):
				p.push(KindParameter, i, "")
				i += 3
				continue
			case strings.HasPrefix(rest, "{{"):
				p.push(KindTemplate, i, "")
				i += 2
				continue
			case strings.HasPrefix(rest, "{|") && p.atLineStart(i):
				p.push(KindTable, i, "")
				i += 2
				continue
			}
		case '}':
			if strings.HasPrefix(rest, "}}}") && p.topKind(KindTemplate, KindParameter) == KindParameter {
				p.close(i+3, KindParameter)
				i += 3
				continue
			}
			if strings.HasPrefix(rest, "}}") {
				if p.close(i+2, KindTemplate, KindParameter) {
					i += 2
					continue
				}
			}
		case '|':
			if strings.HasPrefix(rest, "|}") && p.atLineStart(i) {
				if p.close(i+2, KindTable) {
					i += 2
					continue
				}
			}
			if top := p.top(); top != nil && top.kind == KindWikiLink && top.pipe < 0 {
				top.pipe = i
			}
		case '[':
			if strings.HasPrefix(rest, "[[") {
				p.push(KindWikiLink, i, "")
				i += 2
				continue
			}
			if end, ok := bracketedURLEnd(text, i); ok {
				p.leaf(&Node{Kind: KindExternalLink, Start: i, End: end})
				i = end
				continue
			}
		case ']':
			if strings.HasPrefix(rest, "]]") {
				if p.close(i+2, KindWikiLink) {
					i += 2
					continue
				}
			}
		default:
			if end, ok := bareURLEnd(text, i); ok {
				p.leaf(&Node{Kind: KindExternalLink, Start: i, End: end})
				i = end
				continue
			}
		}
		i++
	}

	for len(p.stack) > 0 {
		p.discardTop()
	}
}

// handleToken consumes a tag or comment token and returns the next offset.
func (p *parser) handleToken(t TagToken) int {
	switch t.Kind {
	case TokenComment:
		p.leaf(&Node{Kind: KindComment, Start: t.Start, End: t.End})
		return t.End
	case TokenSelfClosing:
		p.leaf(&Node{Kind: KindTag, Name: t.Name, Start: t.Start, End: t.End})
		return t.End
	case TokenOpen:
		if voidTags[t.Name] {
			p.leaf(&Node{Kind: KindTag, Name: t.Name, Start: t.Start, End: t.End})
			return t.End
		}
		if rawTags[t.Name] {
			for j := p.tok + 1; j < len(p.tokens); j++ {
				c := p.tokens[j]
				if c.Kind == TokenClose && c.Name == t.Name && c.Start >= t.End {
					p.leaf(&Node{Kind: KindTag, Name: t.Name, Start: t.Start, End: c.End})
					return c.End
				}
			}
			p.leaf(&Node{Kind: KindTag, Name: t.Name, Start: t.Start, End: t.End})
			return t.End
		}
		p.push(KindTag, t.Start, t.Name)
		return t.End
	case TokenClose:
		p.closeTag(t)
		return t.End
	}
	return t.End
}

func (p *parser) push(kind Kind, start int, name string) {
	p.stack = append(p.stack, &opener{kind: kind, start: start, name: name, pipe: -1})
}

func (p *parser) top() *opener {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// topKind returns the kind of the nearest open construct among kinds,
// or -1 if there is none.
func (p *parser) topKind(kinds ...Kind) Kind {
	for i := len(p.stack) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if p.stack[i].kind == k {
				return k
			}
		}
	}
	return -1
}

// close finishes the nearest open construct of one of kinds at end.
// Constructs opened after it are abandoned. It reports false if no such
// construct is open.
func (p *parser) close(end int, kinds ...Kind) bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if p.stack[i].kind == k {
				p.finish(i, end)
				return true
			}
		}
	}
	return false
}

func (p *parser) closeTag(t TagToken) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		o := p.stack[i]
		if o.kind == KindTag && o.name == t.Name {
			p.finish(i, t.End)
			return
		}
	}
}

func (p *parser) finish(idx, end int) {
	for len(p.stack)-1 > idx {
		p.discardTop()
	}
	o := p.top()
	p.stack = p.stack[:len(p.stack)-1]

	n := &Node{Kind: o.kind, Start: o.start, End: end, Name: o.name}
	if o.kind == KindWikiLink {
		titleEnd := end - 2
		if o.pipe >= 0 {
			titleEnd = o.pipe
		}
		target := p.text[o.start+2 : titleEnd]
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		n.Title = target
	}
	for _, c := range o.children {
		c.Parent = n
	}
	p.leaf(n)
}

// discardTop drops the innermost open construct, handing its children to
// the construct below it.
func (p *parser) discardTop() {
	o := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	if below := p.top(); below != nil {
		below.children = append(below.children, o.children...)
	}
}

func (p *parser) leaf(n *Node) {
	p.nodes = append(p.nodes, n)
	if o := p.top(); o != nil {
		o.children = append(o.children, n)
	}
}

func (p *parser) atLineStart(i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch p.text[j] {
		case '\n':
			return true
		case ' ', '\t':
			continue
		default:
			return false
		}
	}
	return true
}
