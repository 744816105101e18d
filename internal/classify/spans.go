package classify

import "sift/internal/sweep"

// CollectSpans turns every structural container into a pair of delimiters.
// Tags whose name is in transparent contribute nothing. Spans ending before
// they start are dropped and reported.
func CollectSpans(st Structures, transparent map[string]bool, r Reporter) []sweep.Delimiter {
	if r == nil {
		r = Discard
	}

	n := len(st.Comments) + len(st.ExternalLinks) + len(st.Tags) + len(st.Tables) + len(st.Templates)
	delims := make([]sweep.Delimiter, 0, 2*n)
	add := func(kind string, s Span) {
		if s.End < s.Start {
			r.MalformedSpan(kind, s)
			return
		}
		delims = append(delims,
			sweep.Delimiter{Pos: s.Start, Opening: true},
			sweep.Delimiter{Pos: s.End, Opening: false},
		)
	}

	for _, s := range st.Comments {
		add("comment", s)
	}
	for _, s := range st.ExternalLinks {
		add("external_link", s)
	}
	for _, t := range st.Tags {
		if transparent[t.Name] {
			continue
		}
		add("tag", t.Span)
	}
	for _, s := range st.Tables {
		add("table", s)
	}
	for _, s := range st.Templates {
		add("template", s)
	}
	return delims
}

// linkDelims masks wikilink spans. They only take part in the
// parenthesis scan, never in the in-structure decision.
func linkDelims(links []Link) []sweep.Delimiter {
	delims := make([]sweep.Delimiter, 0, 2*len(links))
	for _, l := range links {
		if l.Span.End < l.Span.Start {
			continue
		}
		delims = append(delims,
			sweep.Delimiter{Pos: l.Span.Start, Opening: true},
			sweep.Delimiter{Pos: l.Span.End, Opening: false},
		)
	}
	return delims
}
