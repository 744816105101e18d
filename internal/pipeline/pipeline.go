package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"sift/internal/annotate"
	"sift/internal/dump"
)

// Source yields dump pages until io.EOF. *dump.Reader is a Source.
type Source interface {
	Next() (*dump.Page, error)
}

// PageAnnotator is the per-page work. *annotate.Annotator implements it.
type PageAnnotator interface {
	Annotate(ctx context.Context, page *dump.Page) (*annotate.PageRecord, bool, error)
}

type Settings struct {
	Workers       int // runtime.NumCPU() when zero
	ProgressEvery int // pages between progress lines, zero disables
	Filter        *dump.IDFilter
}

// Summary counts what happened to the pages of one run.
type Summary struct {
	Read    int // pages decoded from the dump
	Skipped int // filtered out or outside the article namespace
	Written int
	Failed  int
}

type Pipeline struct {
	annotator PageAnnotator
	sink      Sink
	settings  Settings
	logger    *log.Logger
}

func New(annotator PageAnnotator, sink Sink, settings Settings, logger *log.Logger) *Pipeline {
	if settings.Workers <= 0 {
		settings.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		annotator: annotator,
		sink:      sink,
		settings:  settings,
		logger:    logger,
	}
}

type job struct {
	seq  int
	page *dump.Page
}

type result struct {
	seq    int
	record *annotate.PageRecord // nil when skipped or failed
	failed bool
}

// Run annotates every page of src and writes the records to the sink in
// dump order. A page that fails is logged and skipped; only source and
// sink errors stop the run. The sink is not closed.
func (p *Pipeline) Run(ctx context.Context, src Source) (Summary, error) {
	var sum Summary
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan result, p.settings.Workers*2)

	g.Go(func() error {
		defer close(results)

		workers := new(errgroup.Group)
		workers.SetLimit(p.settings.Workers)
		defer workers.Wait()

		for seq := 0; ; {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read dump: %w", err)
			}
			sum.Read++
			if !p.settings.Filter.Allows(page.ID) {
				sum.Skipped++
				continue
			}

			j := job{seq: seq, page: page}
			seq++
			workers.Go(func() error {
				r := p.process(gctx, j)
				select {
				case results <- r:
				case <-gctx.Done():
				}
				return nil
			})
		}
	})

	var written, skipped, failed int
	g.Go(func() error {
		pending := make(map[int]result)
		next := 0
		for r := range results {
			pending[r.seq] = r
			for {
				r, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++

				switch {
				case r.failed:
					failed++
				case r.record == nil:
					skipped++
				default:
					if err := p.sink.Write(gctx, r.record); err != nil {
						return fmt.Errorf("write page %d: %w", r.record.ID, err)
					}
					written++
				}
				if every := p.settings.ProgressEvery; every > 0 && next%every == 0 {
					p.logger.Info("progress", "pages", next, "written", written, "failed", failed)
				}
			}
		}
		return nil
	})

	err := g.Wait()
	sum.Skipped += skipped
	sum.Written = written
	sum.Failed = failed

	p.logger.Info("done",
		"read", sum.Read, "written", sum.Written, "skipped", sum.Skipped, "failed", sum.Failed,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return sum, err
}

func (p *Pipeline) process(ctx context.Context, j job) result {
	logger := p.logger.With("id", j.page.ID, "title", j.page.Title)
	logger.Debug("annotating")

	rec, ok, err := p.annotate(ctx, j.page)
	if err != nil {
		logger.Warn("page skipped", "err", err)
		return result{seq: j.seq, failed: true}
	}
	if !ok {
		return result{seq: j.seq}
	}
	return result{seq: j.seq, record: rec}
}

func (p *Pipeline) annotate(ctx context.Context, page *dump.Page) (rec *annotate.PageRecord, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok, err = nil, false, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.annotator.Annotate(ctx, page)
}
