package annotate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Link is one classified wikilink. Flags is bit 1 for in-structure and
// bit 0 for in-parens.
type Link struct {
	Title  string
	Start  int
	Length int
	Flags  int
}

func (l Link) InStructure() bool { return l.Flags&0b10 != 0 }
func (l Link) InParens() bool    { return l.Flags&0b01 != 0 }

// MarshalJSON encodes l as [title, start, length, flags].
func (l Link) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeJSON(&buf, []any{l.Title, l.Start, l.Length, l.Flags})
	return buf.Bytes(), nil
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("link: want 4 elements, got %d", len(raw))
	}
	for i, dst := range []any{&l.Title, &l.Start, &l.Length, &l.Flags} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return err
		}
	}
	return nil
}

// PageRecord is the output line of one page. Links is nil for redirects.
type PageRecord struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Length   int    `json:"length"`
	Links    []Link `json:"links,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// MarshalJSON keeps an empty link list as [] for non-redirect pages.
func (p PageRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	writeJSON(&buf, p.ID)
	buf.WriteString(`,"title":`)
	writeJSON(&buf, p.Title)
	buf.WriteString(`,"length":`)
	writeJSON(&buf, p.Length)
	if p.Links != nil || p.Redirect == "" {
		links := p.Links
		if links == nil {
			links = []Link{}
		}
		buf.WriteString(`,"links":`)
		writeJSON(&buf, links)
	}
	if p.Redirect != "" {
		buf.WriteString(`,"redirect":`)
		writeJSON(&buf, p.Redirect)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode only fails on unsupported types; every value here is a
	// string, integer or Link slice.
	_ = enc.Encode(v)
	buf.Truncate(buf.Len() - 1) // trailing newline
}
