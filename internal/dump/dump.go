package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// Page is one <page> of a MediaWiki XML dump, reduced to what the
// annotator needs. Only the last revision is kept.
type Page struct {
	ID        int64
	Namespace int
	Title     string
	Redirect  string
	Text      string
	HasText   bool
}

type xmlPage struct {
	Title     string `xml:"title"`
	Namespace int    `xml:"ns"`
	ID        int64  `xml:"id"`
	Redirect  *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revisions []struct {
		Text *struct {
			Deleted *string `xml:"deleted,attr"`
			Body    string  `xml:",chardata"`
		} `xml:"text"`
	} `xml:"revision"`
}

// Reader streams pages out of a dump.
type Reader struct {
	dec *xml.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// Next returns the next page, or io.EOF when the dump is exhausted.
func (r *Reader) Next() (*Page, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}

		var p xmlPage
		if err := r.dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		return p.page(), nil
	}
}

func (p *xmlPage) page() *Page {
	out := &Page{
		ID:        p.ID,
		Namespace: p.Namespace,
		Title:     p.Title,
	}
	if p.Redirect != nil {
		out.Redirect = p.Redirect.Title
	}
	if n := len(p.Revisions); n > 0 {
		if t := p.Revisions[n-1].Text; t != nil && t.Deleted == nil {
			out.Text = t.Body
			out.HasText = true
		}
	}
	return out
}

// Open opens a dump for reading. "-" is stdin; a .bz2 suffix is
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	if !strings.HasSuffix(path, ".bz2") {
		return f, nil
	}

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bzip2 stream: %w", err)
	}
	return readClose{Reader: bz, closers: []io.Closer{bz, f}}, nil
}

type readClose struct {
	io.Reader
	closers []io.Closer
}

func (r readClose) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
