package classify

// Span is a half-open interval [Start, End) of offsets into the article text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether pos lies in [Start, End).
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// Tag is an HTML or extension tag span, e.g. <ref>...</ref>.
type Tag struct {
	Span
	Name string
}

// Structures are the containers inside which parentheses are ignored.
type Structures struct {
	Comments      []Span
	ExternalLinks []Span
	Tags          []Tag
	Tables        []Span
	Templates     []Span
}

// Link is a wikilink as reported by the parser.
// HasParent is true when the link is nested directly in another node.
type Link struct {
	Title     string
	Span      Span
	HasParent bool
}

// LinkRecord is the classified form of a Link.
type LinkRecord struct {
	Title       string
	Start       int
	Length      int
	InStructure bool
	InParens    bool
}

// Flags packs the two booleans the way downstream consumers expect:
// bit 1 is InStructure, bit 0 is InParens.
func (r LinkRecord) Flags() int {
	f := 0
	if r.InStructure {
		f |= 0b10
	}
	if r.InParens {
		f |= 0b01
	}
	return f
}

// FirstLink returns the first record that is neither inside a structure
// nor inside parentheses.
func FirstLink(records []LinkRecord) (LinkRecord, bool) {
	for _, r := range records {
		if !r.InStructure && !r.InParens {
			return r, true
		}
	}
	return LinkRecord{}, false
}
