package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"sift/internal/classify"
	"sift/internal/diag"
	"sift/internal/dump"
	"sift/internal/wikitext"
)

// Offset units for link starts and lengths.
const (
	UnitRune = "rune"
	UnitByte = "byte"
)

type Options struct {
	TransparentTags []string
	Offsets         string // UnitRune when empty
	Scanner         wikitext.TagScanner
	Logger          *log.Logger
}

// Annotator turns dump pages into PageRecords. It is safe for concurrent use.
type Annotator struct {
	classifier *classify.Classifier
	runes      bool
	parseOpts  wikitext.Options
	logger     *log.Logger
}

func New(opts Options) (*Annotator, error) {
	var runes bool
	switch opts.Offsets {
	case "", UnitRune:
		runes = true
	case UnitByte:
	default:
		return nil, fmt.Errorf("unknown offset unit %q", opts.Offsets)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Annotator{
		classifier: classify.NewClassifier(opts.TransparentTags),
		runes:      runes,
		parseOpts:  wikitext.Options{Scanner: opts.Scanner},
		logger:     logger,
	}, nil
}

// Annotate builds the record of one page. ok is false for pages outside
// the article namespace, which produce no record.
func (a *Annotator) Annotate(ctx context.Context, page *dump.Page) (rec *PageRecord, ok bool, err error) {
	if page.Namespace != 0 {
		return nil, false, nil
	}

	rec = &PageRecord{
		ID:     page.ID,
		Title:  page.Title,
		Length: a.length(page.Text),
	}
	if page.Redirect != "" {
		rec.Redirect = page.Redirect
		return rec, true, nil
	}
	rec.Links = []Link{}
	if !page.HasText {
		return rec, true, nil
	}

	doc, err := wikitext.Parse(ctx, page.Text, a.parseOpts)
	if errors.Is(err, wikitext.ErrEmptyDocument) {
		return rec, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("parse page %d: %w", page.ID, err)
	}

	reporter := diag.NewPageReporter(a.logger, page.ID, page.Title)
	records := a.classifier.Classify(page.Text, doc.Structures(), doc.Links(), reporter)
	reporter.Flush()

	if a.runes {
		toRuneOffsets(page.Text, records)
	}
	for _, r := range records {
		rec.Links = append(rec.Links, Link{
			Title:  r.Title,
			Start:  r.Start,
			Length: r.Length,
			Flags:  r.Flags(),
		})
	}
	return rec, true, nil
}

func (a *Annotator) length(text string) int {
	if a.runes {
		return utf8.RuneCountInString(text)
	}
	return len(text)
}

// toRuneOffsets rewrites byte offsets in records, which are ordered by
// Start, into code point offsets.
func toRuneOffsets(text string, records []classify.LinkRecord) {
	bytePos, runePos := 0, 0
	for i := range records {
		r := &records[i]
		runePos += utf8.RuneCountInString(text[bytePos:r.Start])
		bytePos = r.Start
		r.Start = runePos
		r.Length = utf8.RuneCountInString(text[bytePos : bytePos+r.Length])
	}
}
