// Package dedup is the offline maintenance pass that collapses duplicate
// records out of the corpus. It never runs inline with ingestion.
package dedup

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/logger"
)

const BackupSuffix = ".bak"

// Deduplicate rewrites the corpus at path with duplicates removed and the
// prior version saved to path+".bak". Returns surviving and removed counts.
//
// Stage 1 collapses exact source-URL duplicates, keeping the record with the
// longest text (first seen wins ties). Stage 2 removes fuzzy title
// near-duplicates: survivors are visited longest-text-first and greedily
// compared against already-accepted titles; a similarity ratio strictly
// above threshold discards the candidate. Ratios of exactly the threshold
// are kept.
func Deduplicate(path string, threshold float64) (kept, removed int, err error) {
	records, total, err := readAll(path)
	if err != nil {
		return 0, 0, err
	}

	survivors := collapseSources(records)
	logger.Info("exact URL pass done", "in", len(records), "out", len(survivors))

	final := dropNearDuplicates(survivors, threshold)
	logger.Info("fuzzy title pass done", "in", len(survivors), "out", len(final))

	if err := replaceWithBackup(path, final); err != nil {
		return 0, 0, err
	}

	return len(final), total - len(final), nil
}

// readAll returns well-formed records in file order plus the raw line count.
// Malformed lines and records without a source URL count toward removal.
func readAll(path string) ([]corpus.Record, int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, 0, fmt.Errorf("corpus not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	store := corpus.NewStore(path)
	records, err := store.Records()
	if err != nil {
		return nil, 0, err
	}

	var withSource []corpus.Record
	for _, rec := range records {
		if strings.TrimSpace(rec.Source) != "" {
			withSource = append(withSource, rec)
		}
	}

	total := len(lines)
	if len(data) == 0 {
		total = 0
	}
	return withSource, total, nil
}

// collapseSources keeps one record per source URL, preferring the longest
// text. Position follows the first occurrence, mirroring insertion order.
func collapseSources(records []corpus.Record) []corpus.Record {
	index := make(map[string]int)
	var out []corpus.Record

	for _, rec := range records {
		if at, seen := index[rec.Source]; seen {
			if len(rec.Text) > len(out[at].Text) {
				out[at] = rec
			}
			continue
		}
		index[rec.Source] = len(out)
		out = append(out, rec)
	}
	return out
}

// dropNearDuplicates runs the greedy fuzzy pass. Sorting is stable so equal
// text lengths keep their stage-1 order; the result is order-dependent by
// design and changing the tie-break changes the outcome.
func dropNearDuplicates(records []corpus.Record, threshold float64) []corpus.Record {
	sorted := make([]corpus.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Text) > len(sorted[j].Text)
	})

	var final []corpus.Record
	var acceptedTitles []string

	for _, rec := range sorted {
		title := strings.ToLower(strings.TrimSpace(rec.Title))
		if title == "" {
			final = append(final, rec)
			continue
		}

		duplicate := false
		for _, accepted := range acceptedTitles {
			if Ratio(title, accepted) > threshold {
				duplicate = true
				break
			}
		}

		if !duplicate {
			final = append(final, rec)
			acceptedTitles = append(acceptedTitles, title)
		}
	}
	return final
}

// replaceWithBackup renames the live corpus to its backup name (replacing
// any prior backup) and writes the survivors fresh.
func replaceWithBackup(path string, records []corpus.Record) error {
	backup := path + BackupSuffix

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old backup: %w", err)
	}
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("backing up corpus: %w", err)
	}

	if err := corpus.WriteAll(path, records); err != nil {
		return fmt.Errorf("writing deduplicated corpus: %w", err)
	}
	return nil
}
