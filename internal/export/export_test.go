package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egysentiment/collector/internal/corpus"
)

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	require.NoError(t, store.Append(
		corpus.Record{Text: "EGX30 gains two percent", Sentiment: "positive", Reasoning: "broad rally", Source: "u1"},
		corpus.Record{Text: "Pound weakens", Sentiment: "negative", Reasoning: "fx pressure", Source: "u2"},
	))

	outPath := filepath.Join(dir, "out", "dataset.json")
	n, err := Convert(store, outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var samples []Sample
	require.NoError(t, json.Unmarshal(data, &samples))
	require.Len(t, samples, 2)

	assert.Equal(t, instruction, samples[0].Instruction)
	assert.Equal(t, "Article: EGX30 gains two percent", samples[0].Input)
	assert.Equal(t, "Sentiment: POSITIVE\n\nReasoning: broad rally", samples[0].Output)
	assert.Equal(t, "Sentiment: NEGATIVE\n\nReasoning: fx pressure", samples[1].Output)
}

func TestConvertTruncatesLongInput(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	require.NoError(t, store.Append(
		corpus.Record{Text: strings.Repeat("x", 4000), Sentiment: "neutral", Source: "u1"},
	))

	outPath := filepath.Join(dir, "dataset.json")
	_, err := Convert(store, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var samples []Sample
	require.NoError(t, json.Unmarshal(data, &samples))
	assert.Equal(t, "Article: "+strings.Repeat("x", maxInputChars), samples[0].Input)
}

func TestConvertEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	_, err := Convert(store, filepath.Join(dir, "dataset.json"))
	assert.Error(t, err)
}
