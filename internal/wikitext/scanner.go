package wikitext

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

type TokenKind int

const (
	TokenComment TokenKind = iota
	TokenOpen
	TokenClose
	TokenSelfClosing
)

// TagToken is a lexed tag or comment. Start and End are byte offsets.
type TagToken struct {
	Kind  TokenKind
	Name  string
	Start int
	End   int
}

// TagScanner finds comments and tags in a page. Tokens must be returned in
// ascending order of Start. Only names in KnownTags are reported.
type TagScanner interface {
	ScanTags(ctx context.Context, text string) ([]TagToken, error)
}

// KnownTags are the HTML and extension tag names treated as tags.
// Anything else that looks like a tag is plain text.
var KnownTags = map[string]bool{
	"abbr": true, "b": true, "bdi": true, "bdo": true, "big": true, "blockquote": true,
	"br": true, "caption": true, "center": true, "cite": true, "code": true, "data": true,
	"dd": true, "del": true, "dfn": true, "div": true, "dl": true, "dt": true, "em": true,
	"font": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "i": true, "ins": true, "kbd": true, "li": true, "mark": true, "ol": true,
	"p": true, "q": true, "rb": true, "rp": true, "rt": true, "rtc": true, "ruby": true,
	"s": true, "samp": true, "small": true, "span": true, "strike": true, "strong": true,
	"sub": true, "sup": true, "table": true, "td": true, "th": true, "time": true, "tr": true,
	"tt": true, "u": true, "ul": true, "var": true, "wbr": true,
	"categorytree": true, "ce": true, "charinsert": true, "chem": true, "gallery": true,
	"graph": true, "hiero": true, "imagemap": true, "includeonly": true, "indicator": true,
	"inputbox": true, "mapframe": true, "maplink": true, "math": true, "noinclude": true,
	"nowiki": true, "onlyinclude": true, "poem": true, "pre": true, "ref": true,
	"references": true, "score": true, "section": true, "source": true,
	"syntaxhighlight": true, "templatedata": true, "templatestyles": true, "timeline": true,
}

// rawTags have content that is not wikitext. Everything up to the matching
// close tag belongs to the tag.
var rawTags = map[string]bool{
	"nowiki": true, "pre": true, "math": true, "chem": true, "ce": true,
	"syntaxhighlight": true, "source": true, "score": true, "timeline": true,
	"graph": true, "hiero": true, "templatedata": true, "mapframe": true, "maplink": true,
}

var voidTags = map[string]bool{"br": true, "hr": true, "wbr": true}

var tagRe = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9]*)(?:\s[^<>]*?)?\s*(/?)>`)

// NativeScanner lexes tags with a regular expression.
type NativeScanner struct{}

func (NativeScanner) ScanTags(_ context.Context, text string) ([]TagToken, error) {
	var tokens []TagToken

	for i := 0; ; {
		idx := strings.Index(text[i:], "<!--")
		if idx < 0 {
			break
		}
		start := i + idx
		end := len(text)
		if e := strings.Index(text[start+4:], "-->"); e >= 0 {
			end = start + 4 + e + 3
		}
		tokens = append(tokens, TagToken{Kind: TokenComment, Start: start, End: end})
		i = end
	}

	for _, m := range tagRe.FindAllStringSubmatchIndex(text, -1) {
		name := strings.ToLower(text[m[4]:m[5]])
		if !KnownTags[name] {
			continue
		}
		kind := TokenOpen
		switch {
		case m[3] > m[2]:
			kind = TokenClose
		case m[7] > m[6]:
			kind = TokenSelfClosing
		}
		tokens = append(tokens, TagToken{Kind: kind, Name: name, Start: m[0], End: m[1]})
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens, nil
}
