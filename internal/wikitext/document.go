package wikitext

import "sift/internal/classify"

// Structures collects the spans of every structural container.
// Parameters are not containers.
func (d *Document) Structures() classify.Structures {
	var st classify.Structures
	for _, n := range d.Nodes {
		span := classify.Span{Start: n.Start, End: n.End}
		switch n.Kind {
		case KindComment:
			st.Comments = append(st.Comments, span)
		case KindExternalLink:
			st.ExternalLinks = append(st.ExternalLinks, span)
		case KindTag:
			st.Tags = append(st.Tags, classify.Tag{Span: span, Name: n.Name})
		case KindTable:
			st.Tables = append(st.Tables, span)
		case KindTemplate:
			st.Templates = append(st.Templates, span)
		}
	}
	return st
}

// Links returns the wikilinks in document order.
func (d *Document) Links() []classify.Link {
	var links []classify.Link
	for _, n := range d.OfKind(KindWikiLink) {
		links = append(links, classify.Link{
			Title:     n.Title,
			Span:      classify.Span{Start: n.Start, End: n.End},
			HasParent: n.Parent != nil,
		})
	}
	return links
}

// OfKind returns the nodes of kind k in document order.
func (d *Document) OfKind(k Kind) []*Node {
	var out []*Node
	for _, n := range d.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}
