package extract_test

import (
	"strings"
	"testing"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/extract"
	"github.com/nagelea/keysentry/pkg/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = catalog.NewDefault()

func extractFromText(text string) []*extract.Candidate {
	content := &fetch.Content{
		Ref:  &fetch.SourceRef{RepoOwner: "acme", RepoName: "demo", Path: "config.py"},
		Text: text,
	}
	return extract.Extract(content, testCatalog, catalog.ModeFull)
}

func TestExtract_AnthropicKey(t *testing.T) {
	literal := "sk-ant-api03-" + strings.Repeat("b", 93) + "AA"

	// Fire
	candidates := extractFromText("anthropic_key = \"" + literal + "\"\n")

	require.Len(t, candidates, 1)
	assert.Equal(t, catalog.Anthropic, candidates[0].KeyType)
	assert.Equal(t, literal, candidates[0].Value)
}

func TestExtract_PriorityWinsOverGenericHex(t *testing.T) {
	// The 64-hex tail of an OpenRouter key also contains two 32-hex runs
	// that the Azure pattern would claim on its own
	literal := "sk-or-v1-" + strings.Repeat("0123456789abcdef", 4)

	// Fire
	candidates := extractFromText("OPENROUTER_API_KEY=" + literal + "\n")

	require.Len(t, candidates, 1)
	assert.Equal(t, catalog.OpenRouter, candidates[0].KeyType)
	assert.Equal(t, literal, candidates[0].Value)
}

func TestExtract_RepeatedLiteralYieldsOneCandidate(t *testing.T) {
	literal := "hf_" + strings.Repeat("K", 34)
	text := "token = \"" + literal + "\"\nbackup = \"" + literal + "\"\n"

	// Fire
	candidates := extractFromText(text)

	require.Len(t, candidates, 1)
	assert.Equal(t, catalog.HuggingFace, candidates[0].KeyType)
}

func TestExtract_ContextWindowCapturesNeighbors(t *testing.T) {
	literal := "AIza" + strings.Repeat("D", 35)
	text := "gemini endpoint setup\nGOOGLE_API_KEY=" + literal + "\nmodel = flash\n"

	// Fire
	candidates := extractFromText(text)

	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].ContextBefore, "gemini")
	assert.Contains(t, candidates[0].ContextAfter, "model")
	assert.Contains(t, candidates[0].Window(), literal)
}

func TestExtract_LineCapturesFullSourceLine(t *testing.T) {
	literal := "gsk_" + strings.Repeat("q", 52)
	text := "first line\nGROQ_KEY = \"" + literal + "\" # main\nlast line\n"

	// Fire
	candidates := extractFromText(text)

	require.Len(t, candidates, 1)
	assert.Equal(t, "GROQ_KEY = \""+literal+"\" # main", candidates[0].Line)
}

func TestExtract_StrictModeSkipsGatedPatterns(t *testing.T) {
	text := "azure openai api-key = \"" + strings.Repeat("0a1b2c3d", 4) + "\"\n"
	content := &fetch.Content{Ref: &fetch.SourceRef{}, Text: text}

	// Fire
	candidates := extract.Extract(content, testCatalog, catalog.ModeStrict)

	assert.Empty(t, candidates)
}

func TestExtract_NoMatches(t *testing.T) {
	// Fire
	candidates := extractFromText("nothing secret here\n")

	assert.Empty(t, candidates)
}
