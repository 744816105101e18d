package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"sift/internal/classify"
)

// NewLogger builds the diagnostic logger. It never writes to stdout.
// A nil w means stderr.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl := log.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := log.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "sift",
		ReportTimestamp: true,
	}), nil
}

// WithRun tags every line of logger with a fresh run id.
func WithRun(logger *log.Logger) (*log.Logger, string) {
	id := uuid.NewString()
	return logger.With("run", id), id
}

// PageReporter forwards classification anomalies of one page to the logger
// and keeps a tally for the page summary.
type PageReporter struct {
	logger *log.Logger
	counts classify.Counts
}

func NewPageReporter(logger *log.Logger, id int64, title string) *PageReporter {
	return &PageReporter{logger: logger.With("id", id, "title", title)}
}

func (r *PageReporter) OrphanClosingParen(pos int) {
	r.counts.OrphanClosingParen(pos)
	r.logger.Debug("removed unmatched closing paren", "pos", pos)
}

func (r *PageReporter) OrphanOpeningParen(pos int) {
	r.counts.OrphanOpeningParen(pos)
	r.logger.Debug("removed unclosed opening paren", "pos", pos)
}

func (r *PageReporter) MalformedSpan(kind string, span classify.Span) {
	r.counts.MalformedSpan(kind, span)
	r.logger.Warn("ignored malformed span", "kind", kind, "start", span.Start, "end", span.End)
}

// Flush logs one summary line if anything was reported.
func (r *PageReporter) Flush() {
	c := r.counts
	if c.OrphanClosing+c.OrphanOpening == 0 {
		return
	}
	r.logger.Warn("unbalanced parentheses", "closing_dropped", c.OrphanClosing, "opening_dropped", c.OrphanOpening)
}

func (r *PageReporter) Counts() classify.Counts {
	return r.counts
}
