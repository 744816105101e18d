package classify

import (
	"sort"
	"strings"

	"sift/internal/sweep"
)

// ClassifyLinks runs both sweeps once over the links in order of their
// start offset. Links are sorted (stably) first if they are not already.
func ClassifyLinks(links []Link, structure, parens *sweep.Sweep) []LinkRecord {
	if !sort.SliceIsSorted(links, func(i, j int) bool { return links[i].Span.Start < links[j].Span.Start }) {
		sorted := make([]Link, len(links))
		copy(sorted, links)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })
		links = sorted
	}

	records := make([]LinkRecord, 0, len(links))
	for _, l := range links {
		start := l.Span.Start
		inSpan := structure.To(start) != 0
		inParens := parens.To(start) != 0
		records = append(records, LinkRecord{
			Title:       strings.TrimSpace(l.Title),
			Start:       start,
			Length:      l.Span.End - start,
			InStructure: inSpan || l.HasParent,
			InParens:    inParens,
		})
	}
	return records
}

// Classifier classifies all links of one page. It holds no per-page state
// and is safe for concurrent use.
type Classifier struct {
	transparent map[string]bool
}

// NewClassifier builds a Classifier. Tags named in transparent add no span
// of their own; links directly inside them still count as in-structure
// through their parent.
func NewClassifier(transparent []string) *Classifier {
	t := make(map[string]bool, len(transparent))
	for _, name := range transparent {
		t[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return &Classifier{transparent: t}
}

// Classify returns one record per link, ordered by start offset.
func (c *Classifier) Classify(text string, st Structures, links []Link, r Reporter) []LinkRecord {
	if r == nil {
		r = Discard
	}

	structDelims := CollectSpans(st, c.transparent, r)

	masked := make([]sweep.Delimiter, 0, len(structDelims)+2*len(links))
	masked = append(masked, structDelims...)
	masked = append(masked, linkDelims(links)...)
	parens := ScanParens(text, sweep.New(masked))
	parens = BalanceParens(parens, r)

	return ClassifyLinks(links, sweep.New(structDelims), sweep.New(parens))
}
