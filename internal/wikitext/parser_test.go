package wikitext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/classify"
)

func mustParse(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := Parse(context.Background(), text, Options{})
	require.NoError(t, err)
	return doc
}

func at(t *testing.T, text, sub string) (int, int) {
	t.Helper()
	i := strings.Index(text, sub)
	require.GreaterOrEqual(t, i, 0, "%q not in text", sub)
	return i, i + len(sub)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestParse_LinksAndTemplates(t *testing.T) {
	text := "See [[Foo]] and ([[Bar]]) and {{cite|[[Baz]]}}."
	doc := mustParse(t, text)

	links := doc.Links()
	require.Len(t, links, 3)
	assert.Equal(t, "Foo", links[0].Title)
	assert.False(t, links[0].HasParent)
	assert.Equal(t, "Bar", links[1].Title)
	assert.False(t, links[1].HasParent)
	assert.Equal(t, "Baz", links[2].Title)
	assert.True(t, links[2].HasParent)

	s, e := at(t, text, "[[Bar]]")
	assert.Equal(t, s, links[1].Span.Start)
	assert.Equal(t, e, links[1].Span.End)

	tpl := doc.OfKind(KindTemplate)
	require.Len(t, tpl, 1)
	s, e = at(t, text, "{{cite|[[Baz]]}}")
	assert.Equal(t, s, tpl[0].Start)
	assert.Equal(t, e, tpl[0].End)

	baz := doc.OfKind(KindWikiLink)[2]
	assert.Same(t, tpl[0], baz.Parent)
}

func TestParse_PipedTitle(t *testing.T) {
	doc := mustParse(t, "[[Foo bar|the foo]] [[ Spaced |x|y]]")
	links := doc.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "Foo bar", links[0].Title)
	assert.Equal(t, " Spaced ", links[1].Title)
}

func TestParse_NestedTemplatesAndParameters(t *testing.T) {
	text := "{{a|{{b}}}} {{{1|[[P]]}}}"
	doc := mustParse(t, text)

	tpl := doc.OfKind(KindTemplate)
	require.Len(t, tpl, 2)
	s, e := at(t, text, "{{a|{{b}}}}")
	assert.Equal(t, s, tpl[0].Start)
	assert.Equal(t, e, tpl[0].End)
	s, e = at(t, text, "{{b}}")
	assert.Equal(t, s, tpl[1].Start)
	assert.Equal(t, e, tpl[1].End)
	assert.Same(t, tpl[0], tpl[1].Parent)

	params := doc.OfKind(KindParameter)
	require.Len(t, params, 1)
	s, e = at(t, text, "{{{1|[[P]]}}}")
	assert.Equal(t, s, params[0].Start)
	assert.Equal(t, e, params[0].End)

	links := doc.OfKind(KindWikiLink)
	require.Len(t, links, 1)
	assert.Same(t, params[0], links[0].Parent)

	// Parameters are not structures; their links still have a parent.
	st := doc.Structures()
	assert.Len(t, st.Templates, 2)
}

func TestParse_CommentsTagsTables(t *testing.T) {
	text := "a <!-- ([[Hidden]]) --> b <ref name=\"r\">[[R]]</ref> <br/> c\n{|\n| [[T]]\n|}\nend"
	doc := mustParse(t, text)

	comments := doc.OfKind(KindComment)
	require.Len(t, comments, 1)
	s, e := at(t, text, "<!-- ([[Hidden]]) -->")
	assert.Equal(t, s, comments[0].Start)
	assert.Equal(t, e, comments[0].End)

	tags := doc.OfKind(KindTag)
	require.Len(t, tags, 2)
	assert.Equal(t, "ref", tags[0].Name)
	s, e = at(t, text, "<ref name=\"r\">[[R]]</ref>")
	assert.Equal(t, s, tags[0].Start)
	assert.Equal(t, e, tags[0].End)
	assert.Equal(t, "br", tags[1].Name)

	tables := doc.OfKind(KindTable)
	require.Len(t, tables, 1)
	s, e = at(t, text, "{|\n| [[T]]\n|}")
	assert.Equal(t, s, tables[0].Start)
	assert.Equal(t, e, tables[0].End)

	links := doc.OfKind(KindWikiLink)
	require.Len(t, links, 2, "links inside comments are not parsed")
	assert.Equal(t, "R", links[0].Title)
	assert.Same(t, tags[0], links[0].Parent)
	assert.Equal(t, "T", links[1].Title)
	assert.Same(t, tables[0], links[1].Parent)
}

func TestParse_TableNeedsLineStart(t *testing.T) {
	doc := mustParse(t, "x {| not a table |}")
	assert.Empty(t, doc.OfKind(KindTable))
}

func TestParse_UnclosedConstructs(t *testing.T) {
	doc := mustParse(t, "{{a [[X]] ")
	assert.Empty(t, doc.OfKind(KindTemplate))
	links := doc.Links()
	require.Len(t, links, 1)
	assert.False(t, links[0].HasParent)

	doc = mustParse(t, "{{outer|[[Y|{{b]]}}")
	links = doc.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "Y", links[0].Title)
	assert.True(t, links[0].HasParent)
	assert.Len(t, doc.OfKind(KindTemplate), 1)
}

func TestParse_UnterminatedComment(t *testing.T) {
	text := "a [[A]] <!-- [[B]]"
	doc := mustParse(t, text)
	comments := doc.OfKind(KindComment)
	require.Len(t, comments, 1)
	assert.Equal(t, len(text), comments[0].End)
	assert.Len(t, doc.Links(), 1)
}

func TestParse_RawTags(t *testing.T) {
	text := "<nowiki>[[N]] (</nowiki> [[M]] <math>x)</math>"
	doc := mustParse(t, text)

	tags := doc.OfKind(KindTag)
	require.Len(t, tags, 2)
	s, e := at(t, text, "<nowiki>[[N]] (</nowiki>")
	assert.Equal(t, s, tags[0].Start)
	assert.Equal(t, e, tags[0].End)
	assert.Equal(t, "math", tags[1].Name)

	links := doc.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "M", links[0].Title)
}

func TestParse_UnknownTagsArePlainText(t *testing.T) {
	doc := mustParse(t, "if x<y and y>z then [[Z]]")
	assert.Empty(t, doc.OfKind(KindTag))
	assert.Len(t, doc.Links(), 1)
}

func TestParse_ExternalLinks(t *testing.T) {
	text := "[https://example.org (site)] and https://en.wikipedia.org/wiki/Foo_(bar). See http://x.org/a). [[Z]]"
	doc := mustParse(t, text)

	ext := doc.OfKind(KindExternalLink)
	require.Len(t, ext, 3)

	s, e := at(t, text, "[https://example.org (site)]")
	assert.Equal(t, s, ext[0].Start)
	assert.Equal(t, e, ext[0].End)

	s, e = at(t, text, "https://en.wikipedia.org/wiki/Foo_(bar)")
	assert.Equal(t, s, ext[1].Start)
	assert.Equal(t, e, ext[1].End)

	s, e = at(t, text, "http://x.org/a")
	assert.Equal(t, s, ext[2].Start)
	assert.Equal(t, e, ext[2].End)
}

func TestParse_BracketWithoutURL(t *testing.T) {
	doc := mustParse(t, "[not a link] [[Real]]")
	assert.Empty(t, doc.OfKind(KindExternalLink))
	assert.Len(t, doc.Links(), 1)
}

func TestParse_LinkTitleDropsFragment(t *testing.T) {
	doc := mustParse(t, "[[Foo#History|history]] [[#Sec]] [[Bar#]] [[A|b#c]]")
	links := doc.Links()
	require.Len(t, links, 4)
	assert.Equal(t, "Foo", links[0].Title)
	assert.Equal(t, "", links[1].Title)
	assert.Equal(t, "Bar", links[2].Title)
	assert.Equal(t, "A", links[3].Title)

	s, e := at(t, doc.Text, "[[Foo#History|history]]")
	assert.Equal(t, classify.Span{Start: s, End: e}, links[0].Span)
}

func TestParse_ImageCaptionLinks(t *testing.T) {
	doc := mustParse(t, "[[File:X.jpg|thumb|A [[Caption]] link]]")
	links := doc.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "File:X.jpg", links[0].Title)
	assert.False(t, links[0].HasParent)
	assert.Equal(t, "Caption", links[1].Title)
	assert.True(t, links[1].HasParent)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "template", KindTemplate.String())
	assert.Equal(t, "wikilink", KindWikiLink.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
