package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// IDFilter restricts processing to a fixed set of page ids.
// A nil *IDFilter allows everything.
type IDFilter struct {
	ids *roaring.Bitmap
}

func NewIDFilter(ids ...uint32) *IDFilter {
	return &IDFilter{ids: roaring.BitmapOf(ids...)}
}

// LoadIDFilter reads page ids from the first column of a CSV file.
// The first row is a header and is skipped.
func LoadIDFilter(path string) (*IDFilter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open id list: %w", err)
	}
	defer f.Close()
	return ReadIDFilter(f)
}

func ReadIDFilter(r io.Reader) (*IDFilter, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return NewIDFilter(), nil
		}
		return nil, fmt.Errorf("read id list header: %w", err)
	}

	f := NewIDFilter()
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read id list: %w", err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("id list line %d: %w", line, err)
		}
		f.ids.Add(uint32(id))
	}
	return f, nil
}

func (f *IDFilter) Allows(id int64) bool {
	if f == nil {
		return true
	}
	if id < 0 || id > math.MaxUint32 {
		return false
	}
	return f.ids.Contains(uint32(id))
}

func (f *IDFilter) Len() uint64 {
	if f == nil {
		return 0
	}
	return f.ids.GetCardinality()
}
