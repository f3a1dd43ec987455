// Package export converts the corpus into the instruction format expected
// by the fine-tuning toolchain.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/logger"
)

const instruction = "Analyze the sentiment of this Egyptian financial news article and classify it as positive, negative, or neutral. Provide reasoning for your classification."

const maxInputChars = 1500

// Sample is one instruction-tuning example.
type Sample struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Convert reads the corpus and writes the instruction-format dataset to
// outPath. Returns the number of samples written.
func Convert(store *corpus.Store, outPath string) (int, error) {
	records, err := store.Records()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("corpus %s is empty or missing", store.Path())
	}

	distribution := make(map[string]int)
	samples := make([]Sample, 0, len(records))

	for _, rec := range records {
		distribution[rec.Sentiment]++

		text := rec.Text
		if runes := []rune(text); len(runes) > maxInputChars {
			text = string(runes[:maxInputChars])
		}

		samples = append(samples, Sample{
			Instruction: instruction,
			Input:       "Article: " + text,
			Output:      fmt.Sprintf("Sentiment: %s\n\nReasoning: %s", strings.ToUpper(rec.Sentiment), rec.Reasoning),
		})
	}

	for label, count := range distribution {
		logger.Info("sentiment distribution", "label", label, "count", count)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(samples); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}

	return len(samples), nil
}
