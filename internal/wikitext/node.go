package wikitext

// Kind identifies the syntactic construct a Node stands for.
type Kind int

const (
	KindComment Kind = iota
	KindExternalLink
	KindTag
	KindTable
	KindTemplate
	KindParameter
	KindWikiLink
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindExternalLink:
		return "external_link"
	case KindTag:
		return "tag"
	case KindTable:
		return "table"
	case KindTemplate:
		return "template"
	case KindParameter:
		return "parameter"
	case KindWikiLink:
		return "wikilink"
	default:
		return "unknown"
	}
}

// Node is one parsed construct. Start and End are byte offsets, End exclusive.
type Node struct {
	Kind   Kind
	Start  int
	End    int
	Name   string // lower-cased tag name, KindTag only
	Title  string // link target, KindWikiLink only
	Parent *Node  // nearest enclosing node, nil at top level
}
