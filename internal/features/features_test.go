package features

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/sentiment"
)

// stubLabeler returns a fixed verdict and counts calls.
type stubLabeler struct {
	calls  int
	result sentiment.Result
}

func (s *stubLabeler) Classify(ctx context.Context, text string) sentiment.Result {
	s.calls++
	return s.result
}

func TestScoreCorpusSkipsScoredRows(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	feat := NewStore(filepath.Join(dir, "features.csv"))

	require.NoError(t, store.Append(
		corpus.Record{Text: "article one", Source: "u1", Timestamp: "2026-08-29T09:00:00Z"},
		corpus.Record{Text: "article two", Source: "u2", Timestamp: "2026-08-30T09:00:00Z"},
	))

	labeler := &stubLabeler{result: sentiment.Result{Sentiment: "positive", Reasoning: "growth"}}

	added, err := ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, labeler.calls)

	// Rerun: everything is already scored, no new inference calls.
	added, err = ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 2, labeler.calls)

	// A new record triggers exactly one more call.
	require.NoError(t, store.Append(corpus.Record{Text: "article three", Source: "u3"}))
	added, err = ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, labeler.calls)
}

func TestScoreCorpusRowShape(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	feat := NewStore(filepath.Join(dir, "features.csv"))

	require.NoError(t, store.Append(
		corpus.Record{Text: "rates cut", Source: "u1", Timestamp: "2026-08-30T12:30:00Z"},
	))

	labeler := &stubLabeler{result: sentiment.Result{Sentiment: "negative", Reasoning: "tightening"}}
	_, err := ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)

	f, err := os.Open(feat.path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"date", "text", "sentiment", "sentiment_score", "reasoning"}, rows[0])
	assert.Equal(t, []string{"2026-08-30", "rates cut", "negative", "-1", "tightening"}, rows[1])
}

func TestScoreCorpusHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	feat := NewStore(filepath.Join(dir, "features.csv"))
	labeler := &stubLabeler{result: sentiment.Result{Sentiment: "neutral"}}

	require.NoError(t, store.Append(corpus.Record{Text: "one", Source: "u1"}))
	_, err := ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)

	require.NoError(t, store.Append(corpus.Record{Text: "two", Source: "u2"}))
	_, err = ScoreCorpus(context.Background(), store, feat, labeler)
	require.NoError(t, err)

	f, err := os.Open(feat.path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header + two data rows")
}

func TestScoreCorpusEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	store := corpus.NewStore(filepath.Join(dir, "corpus.jsonl"))
	feat := NewStore(filepath.Join(dir, "features.csv"))

	_, err := ScoreCorpus(context.Background(), store, feat, &stubLabeler{})
	assert.Error(t, err)
}
