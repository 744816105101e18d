// Package stats summarizes an annotated JSON lines stream.
package stats

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"sift/internal/annotate"
)

type Stats struct {
	Pages          int
	Redirects      int
	Links          int
	InParens       int
	InStructure    int
	InBoth         int
	Neither        int
	WithFirstLink  int // non-redirect pages with at least one free link
	EmptyPages     int // non-redirect pages without any link
	MalformedLines int
}

// Collect reads records from r, one per line. Lines that are not valid
// records are counted and skipped.
func Collect(r io.Reader) (*Stats, error) {
	s := &Stats{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec annotate.PageRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			s.MalformedLines++
			continue
		}
		s.Add(&rec)
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("read records: %w", err)
	}
	return s, nil
}

func (s *Stats) Add(rec *annotate.PageRecord) {
	s.Pages++
	if rec.Redirect != "" {
		s.Redirects++
		return
	}
	if len(rec.Links) == 0 {
		s.EmptyPages++
	}
	first := false
	for _, l := range rec.Links {
		s.Links++
		switch {
		case l.InParens() && l.InStructure():
			s.InBoth++
		case l.InParens():
			s.InParens++
		case l.InStructure():
			s.InStructure++
		default:
			s.Neither++
			first = true
		}
	}
	if first {
		s.WithFirstLink++
	}
}

func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	rows := []struct {
		name string
		n    int
	}{
		{"pages", s.Pages},
		{"redirects", s.Redirects},
		{"pages without links", s.EmptyPages},
		{"pages with a first link", s.WithFirstLink},
		{"links", s.Links},
		{"links in parens", s.InParens},
		{"links in structures", s.InStructure},
		{"links in both", s.InBoth},
		{"links in neither", s.Neither},
	}
	if s.MalformedLines > 0 {
		rows = append(rows, struct {
			name string
			n    int
		}{"malformed lines", s.MalformedLines})
	}

	var total int64
	for _, r := range rows {
		n, err := fmt.Fprintf(w, "%-24s %d\n", r.name, r.n)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
