package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCompleteBlock(t *testing.T) {
	text := `Here is your login screen.

<artifact title="Login Screen" type="app">
<div class="login">...</div>
</artifact>

Let me know what you think.`

	got := ExtractArtifacts(text)
	require.Len(t, got, 1)
	require.Equal(t, "Login Screen", got[0].Title)
	require.Equal(t, TypeApp, got[0].Type)
	require.True(t, got[0].IsComplete)
	require.Equal(t, `<div class="login">...</div>`, got[0].Content)
}

func TestExtractInProgressBlock(t *testing.T) {
	// stream still arriving: no closing marker yet
	text := `<artifact title="Dashboard" type="web"><header>Dash`

	got := ExtractArtifacts(text)
	require.Len(t, got, 1)
	require.False(t, got[0].IsComplete)
	require.Equal(t, "<header>Dash", got[0].Content)
}

func TestExtractMultipleBlocksInOrder(t *testing.T) {
	text := `<artifact title="A" type="app">a</artifact>
prose between
<artifact title="B" type="web">b</artifact>
<artifact title="C" type="poster">c</artifact>`

	got := ExtractArtifacts(text)
	require.Len(t, got, 3)
	require.Equal(t, []string{"A", "B", "C"}, []string{got[0].Title, got[1].Title, got[2].Title})
	require.Equal(t, TypeOther, got[2].Type, "unrecognized type maps to other")
}

func TestExtractDuplicateTitleLastWins(t *testing.T) {
	text := `<artifact title="Home" type="web">v1</artifact>
<artifact title="About" type="web">about</artifact>
<artifact title="Home" type="web">v2</artifact>`

	got := ExtractArtifacts(text)
	require.Len(t, got, 2)
	// first-seen order preserved, content superseded
	require.Equal(t, "Home", got[0].Title)
	require.Equal(t, "v2", got[0].Content)
	require.Equal(t, "About", got[1].Title)
}

func TestExtractSkipsMalformedBlocks(t *testing.T) {
	cases := map[string]string{
		"no attributes":     `<artifact>orphan</artifact><artifact title="Ok" type="app">x</artifact>`,
		"empty title":       `<artifact title="" type="app">bad</artifact><artifact title="Ok" type="app">x</artifact>`,
		"unknown attribute": `<artifact title="Sneaky" type="app" onload="evil()">bad</artifact><artifact title="Ok" type="app">x</artifact>`,
		"unquoted value":    `<artifact title=Unquoted type="app">bad</artifact><artifact title="Ok" type="app">x</artifact>`,
	}
	for name, text := range cases {
		got := ExtractArtifacts(text)
		require.Len(t, got, 1, name)
		require.Equal(t, "Ok", got[0].Title, name)
	}
}

func TestExtractAttributeVariance(t *testing.T) {
	// attribute order, quoting style and whitespace all vary
	text := `<artifact  type='web'   title='Pricing Page' >body</artifact>`

	got := ExtractArtifacts(text)
	require.Len(t, got, 1)
	require.Equal(t, "Pricing Page", got[0].Title)
	require.Equal(t, TypeWeb, got[0].Type)
}

func TestExtractIdempotent(t *testing.T) {
	text := `intro <artifact title="A" type="app">a</artifact> middle <artifact title="B" type="web">b`
	first := ExtractArtifacts(text)
	second := ExtractArtifacts(text)
	require.Equal(t, first, second)
}

func TestStripArtifactsRemovesBlocks(t *testing.T) {
	text := `Here are two screens.

<artifact title="A" type="app">aaa</artifact>

And a second:

<artifact title="B" type="web">bbb</artifact>

Done.`

	prose := StripArtifacts(text)
	require.NotContains(t, prose, "aaa")
	require.NotContains(t, prose, "bbb")
	require.NotContains(t, prose, "<artifact")
	require.Contains(t, prose, "Here are two screens.")
	require.Contains(t, prose, "Done.")
	require.NotContains(t, prose, "\n\n\n")
}

func TestStripArtifactsRemovesUnterminatedTail(t *testing.T) {
	text := `Working on it... <artifact title="WIP" type="app"><div>half`
	require.Equal(t, "Working on it...", StripArtifacts(text))
}

func TestExtractTitlesPresentInSource(t *testing.T) {
	// every extracted title must appear in the raw text's markers
	texts := []string{
		`<artifact title="One" type="app">x</artifact>`,
		`noise <artifact title="Two" type="web">y`,
		`<artifact title="A" type="app">a</artifact><artifact title="A" type="app">b</artifact>`,
	}
	for _, text := range texts {
		for _, a := range ExtractArtifacts(text) {
			require.True(t, strings.Contains(text, `title="`+a.Title+`"`) || strings.Contains(text, `title='`+a.Title+`'`))
		}
	}
}
