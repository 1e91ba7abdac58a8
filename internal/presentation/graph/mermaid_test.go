package graph

import (
	"strings"
	"testing"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `[
	{"title": "Start", "body": "Hello.\n[[Yes|Good End]]\n[[No|Bad End]]"},
	{"title": "Good End", "body": "Nice.\n[[Credits]]"},
	{"title": "Bad End", "body": "Oh no."},
	{"title": "Credits", "body": "Fin."}
]`

func TestGenerateMermaid(t *testing.T) {
	out, err := GenerateMermaid([]byte(script), "Start", nil)
	require.NoError(t, err)

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `Start(("Start"))`, "entry renders as a circle")
	assert.Contains(t, out, `Start -- "Yes" --> Good_End`)
	assert.Contains(t, out, `Start -- "No" --> Bad_End`)
	assert.Contains(t, out, `Good_End --> Credits`, "jumps are unlabeled edges")
	assert.Contains(t, out, `Bad_End["Bad End"]`)
	assert.NotContains(t, out, "Overlay Styles")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out, err := GenerateMermaid([]byte(script), "Start", &Overlay{
		Visited: []string{"Start", "Good End", "Good End"},
		Current: "Credits",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "class Start visited;")
	assert.Equal(t, 1, strings.Count(out, "class Good_End visited;"), "visited set deduplicates")
	assert.Contains(t, out, "class Credits current;")
}

func TestGenerateMermaid_BadData(t *testing.T) {
	_, err := GenerateMermaid([]byte("not json"), "Start", nil)
	assert.ErrorIs(t, err, dialogue.ErrScriptParse)
}
