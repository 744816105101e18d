package storage

import (
	"context"
	"errors"

	"sift/internal/annotate"
)

// ErrNotFound is returned when no page has the requested title.
var ErrNotFound = errors.New("storage: page not found")

// PageStore persists annotated pages and answers title lookups.
type PageStore interface {
	// SavePages upserts records. A page's previous links are replaced.
	SavePages(ctx context.Context, records []*annotate.PageRecord) error

	// GetPage loads the record stored under title.
	GetPage(ctx context.Context, title string) (*annotate.PageRecord, error)

	// FirstLink follows redirects from title and returns the first link of
	// the resolved page that is neither in a structure nor in parentheses.
	FirstLink(ctx context.Context, title string) (*annotate.PageRecord, annotate.Link, bool, error)

	Close() error
}
