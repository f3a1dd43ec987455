// Package features maintains the rolling forecast-feature file: one scored
// row per corpus record, keyed by text so reruns skip work already done.
package features

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/sentiment"
)

var header = []string{"date", "text", "sentiment", "sentiment_score", "reasoning"}

// Row is one scored feature entry.
type Row struct {
	Date      string
	Text      string
	Sentiment string
	Score     int
	Reasoning string
}

// Labeler is the slice of the sentiment client the scorer needs.
type Labeler interface {
	Classify(ctx context.Context, text string) sentiment.Result
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// ExistingTexts loads the text column of rows already scored. Missing file
// means nothing has been scored yet.
func (s *Store) ExistingTexts() (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return existing, nil
		}
		return nil, fmt.Errorf("opening feature store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading feature store: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header
		}
		existing[row[1]] = struct{}{}
	}
	return existing, nil
}

// Append adds rows to the feature file, writing the header only when the
// file is being created.
func (s *Store) Append(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating feature directory: %w", err)
		}
	}

	_, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening feature store: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		record := []string{row.Date, row.Text, row.Sentiment, strconv.Itoa(row.Score), row.Reasoning}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ScoreCorpus scores every corpus record whose text is not yet in the
// feature store and appends the new rows. Returns how many were added.
func ScoreCorpus(ctx context.Context, store *corpus.Store, feat *Store, labeler Labeler) (int, error) {
	records, err := store.Records()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("corpus %s is empty or missing", store.Path())
	}

	existing, err := feat.ExistingTexts()
	if err != nil {
		return 0, err
	}

	var rows []Row
	for _, rec := range records {
		if _, scored := existing[rec.Text]; scored {
			continue
		}

		res := labeler.Classify(ctx, rec.Text)
		rows = append(rows, Row{
			Date:      rowDate(rec.Timestamp),
			Text:      rec.Text,
			Sentiment: res.Sentiment,
			Score:     sentiment.Score(res.Sentiment),
			Reasoning: res.Reasoning,
		})

		if res.Degraded {
			logger.Warn("scored with degraded label", "source", rec.Source, "reason", res.Reasoning)
		}
	}

	if err := feat.Append(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// rowDate derives the feature date from the record's ingestion timestamp,
// falling back to today when it does not parse.
func rowDate(timestamp string) string {
	if ts, err := time.Parse(time.RFC3339, timestamp); err == nil {
		return ts.Format("2006-01-02")
	}
	return time.Now().Format("2006-01-02")
}
