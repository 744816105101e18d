package annotate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/dump"
)

func annotate(t *testing.T, a *Annotator, page *dump.Page) *PageRecord {
	t.Helper()
	rec, ok, err := a.Annotate(context.Background(), page)
	require.NoError(t, err)
	require.True(t, ok)
	return rec
}

func TestAnnotate_EndToEnd(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	rec := annotate(t, a, &dump.Page{
		ID:      1,
		Title:   "T",
		Text:    "See [[Foo]] and ([[Bar]]) and {{cite|[[Baz]]}}.",
		HasText: true,
	})

	assert.Equal(t, 47, rec.Length)
	assert.Equal(t, []Link{
		{Title: "Foo", Start: 4, Length: 7, Flags: 0},
		{Title: "Bar", Start: 17, Length: 7, Flags: 1},
		{Title: "Baz", Start: 37, Length: 7, Flags: 2},
	}, rec.Links)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"title":"T","length":47,"links":[["Foo",4,7,0],["Bar",17,7,1],["Baz",37,7,2]]}`,
		string(out))
}

func TestAnnotate_OffsetUnits(t *testing.T) {
	page := &dump.Page{ID: 2, Title: "U", Text: "Ça [[É]] (x)", HasText: true}

	t.Run("rune", func(t *testing.T) {
		a, err := New(Options{Offsets: UnitRune})
		require.NoError(t, err)
		rec := annotate(t, a, page)
		assert.Equal(t, 12, rec.Length)
		assert.Equal(t, []Link{{Title: "É", Start: 3, Length: 5}}, rec.Links)
	})

	t.Run("byte", func(t *testing.T) {
		a, err := New(Options{Offsets: UnitByte})
		require.NoError(t, err)
		rec := annotate(t, a, page)
		assert.Equal(t, 14, rec.Length)
		assert.Equal(t, []Link{{Title: "É", Start: 4, Length: 6}}, rec.Links)
	})
}

func TestAnnotate_SkipsOtherNamespaces(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	rec, ok, err := a.Annotate(context.Background(), &dump.Page{ID: 7, Namespace: 1, Title: "Talk:X", Text: "[[Y]]"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestAnnotate_Redirect(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	rec := annotate(t, a, &dump.Page{
		ID:       42,
		Title:    "Philosophical",
		Redirect: "Philosophy",
		Text:     "#REDIRECT [[Philosophy]]",
		HasText:  true,
	})
	assert.Nil(t, rec.Links)
	assert.Equal(t, 24, rec.Length)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":42,"title":"Philosophical","length":24,"redirect":"Philosophy"}`, string(out))
}

func TestAnnotate_EmptyText(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	for _, page := range []*dump.Page{
		{ID: 8, Title: "Deleted"},
		{ID: 10, Title: "Blank", HasText: true},
	} {
		rec := annotate(t, a, page)
		assert.Zero(t, rec.Length)
		assert.Empty(t, rec.Links)

		out, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"length":0,"links":[]}`)
	}
}

func TestAnnotate_TransparentTags(t *testing.T) {
	text := `<span>([[A]])</span> [[B]]`

	a, err := New(Options{TransparentTags: []string{"SPAN"}})
	require.NoError(t, err)
	rec := annotate(t, a, &dump.Page{ID: 3, Title: "X", Text: text, HasText: true})
	require.Len(t, rec.Links, 2)

	// The tag adds no span, so the parens count, and the parent link keeps
	// A in-structure.
	assert.True(t, rec.Links[0].InStructure())
	assert.True(t, rec.Links[0].InParens())
	assert.Equal(t, 0, rec.Links[1].Flags)
}

func TestAnnotate_FragmentsAndParameters(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	rec := annotate(t, a, &dump.Page{
		ID:      4,
		Title:   "F",
		Text:    "See [[Foo#History|history]] here. [[#Sec]] {{{1|(}}} [[A]] {{{2|)}}}",
		HasText: true,
	})
	assert.Equal(t, []Link{
		{Title: "Foo", Start: 4, Length: 23},
		{Title: "", Start: 34, Length: 8},
		// Parens inside parameters are not hidden.
		{Title: "A", Start: 53, Length: 5, Flags: 1},
	}, rec.Links)
}

func TestNew_UnknownUnit(t *testing.T) {
	_, err := New(Options{Offsets: "utf16"})
	assert.Error(t, err)
}

func TestPageRecord_JSON(t *testing.T) {
	rec := PageRecord{
		ID:    5,
		Title: "AT&T <x>",
		Links: []Link{{Title: "Bell", Start: 1, Length: 8, Flags: 3}},
	}
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":5,"title":"AT&T <x>","length":0,"links":[["Bell",1,8,3]]}`, string(out))

	var back PageRecord
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, rec, back)
}

func TestLink_UnmarshalWrongArity(t *testing.T) {
	var l Link
	assert.Error(t, json.Unmarshal([]byte(`["A",1,2]`), &l))
}
