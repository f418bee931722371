package util

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestFirstOf(t *testing.T) {
	d := doc(t, `<div><span class="b">  second </span><a class="c" href="/x">link</a></div>`)

	got := FirstOf(d.Selection, Text(".a"), Text(".b"), Text(".c"))
	assert.Equal(t, "second", got)

	assert.Equal(t, "/x", FirstOf(d.Selection, Attr(".missing", "href"), Attr("a", "href")))
	assert.Equal(t, "", FirstOf(d.Selection, Text(".nope")))
	assert.Equal(t, "", FirstOf(d.Selection))
}

func TestSpacedText(t *testing.T) {
	d := doc(t, `<div id="d"><p>Answer phones.</p><p>Greet guests.</p></div>`)
	assert.Equal(t, "Answer phones. Greet guests.", SpacedText("#d")(d.Selection))
	assert.Equal(t, "", SpacedText("#none")(d.Selection))
}

func TestFirstNodes(t *testing.T) {
	d := doc(t, `<ul><li class="x">1</li><li class="x">2</li></ul>`)

	set := FirstNodes(d.Selection, Nodes(".y"), Nodes(".x"), Nodes("li"))
	assert.Equal(t, 2, set.Length())

	empty := FirstNodes(d.Selection, Nodes(".y"))
	assert.Equal(t, 0, empty.Length())
}
