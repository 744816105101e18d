package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"sift/internal/annotate"
	"sift/internal/storage"
)

// Sink receives records in dump order from a single goroutine.
type Sink interface {
	Write(ctx context.Context, rec *annotate.PageRecord) error
	// Close flushes buffered records.
	Close() error
}

// JSONLinesSink writes one compact JSON object per line.
type JSONLinesSink struct {
	w *bufio.Writer
}

func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	return &JSONLinesSink{w: bufio.NewWriterSize(w, 1<<16)}
}

func (s *JSONLinesSink) Write(_ context.Context, rec *annotate.PageRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *JSONLinesSink) Close() error {
	return s.w.Flush()
}

// StoreSink batches records into a PageStore.
type StoreSink struct {
	store storage.PageStore
	batch []*annotate.PageRecord
	size  int
}

func NewStoreSink(store storage.PageStore, batchSize int) *StoreSink {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &StoreSink{store: store, size: batchSize}
}

func (s *StoreSink) Write(ctx context.Context, rec *annotate.PageRecord) error {
	s.batch = append(s.batch, rec)
	if len(s.batch) < s.size {
		return nil
	}
	return s.flush(ctx)
}

func (s *StoreSink) flush(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}
	err := s.store.SavePages(ctx, s.batch)
	s.batch = s.batch[:0]
	return err
}

// Close saves the pending batch. It does not close the store.
func (s *StoreSink) Close() error {
	return s.flush(context.Background())
}

// MultiSink fans every record out to all of its sinks.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rec *annotate.PageRecord) error {
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
