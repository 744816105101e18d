package classify

// Reporter receives anomalies found while classifying a single page.
// None of them are fatal.
type Reporter interface {
	OrphanClosingParen(pos int)
	OrphanOpeningParen(pos int)
	MalformedSpan(kind string, span Span)
}

// Discard drops every report.
var Discard Reporter = discard{}

type discard struct{}

func (discard) OrphanClosingParen(int)      {}
func (discard) OrphanOpeningParen(int)      {}
func (discard) MalformedSpan(string, Span) {}

// Counts is a Reporter that only tallies anomalies.
type Counts struct {
	OrphanClosing int
	OrphanOpening int
	Malformed     int
}

func (c *Counts) OrphanClosingParen(int)      { c.OrphanClosing++ }
func (c *Counts) OrphanOpeningParen(int)      { c.OrphanOpening++ }
func (c *Counts) MalformedSpan(string, Span) { c.Malformed++ }
