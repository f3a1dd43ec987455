// Package corpus persists labeled records as newline-delimited JSON, one
// record per line, append-only. The source URL is the dedup key: a snapshot
// of existing keys is read before a run writes anything, and appends go
// through a single writer so lines never interleave.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is one labeled training sample. Field order matters: the dedup
// pass rewrites the file and must preserve the original encoding.
type Record struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	Sentiment  string `json:"sentiment"`
	Reasoning  string `json:"reasoning"`
	Source     string `json:"source"`
	SourceName string `json:"source_name,omitempty"`
	Published  string `json:"published"`
	Timestamp  string `json:"timestamp"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Sources returns the set of source URLs already persisted. A missing file
// yields an empty set; malformed lines are skipped.
func (s *Store) Sources() (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return existing, nil
		}
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	scanner := newLineScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Source != "" {
			existing[rec.Source] = struct{}{}
		}
	}
	return existing, scanner.Err()
}

// Records loads every well-formed record in file order.
func (s *Store) Records() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := newLineScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Append writes records to the end of the corpus, creating the file and its
// directory on first write. Serialized; partial lines cannot interleave.
func (s *Store) Append(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating corpus directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening corpus for append: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return nil
}

// Stats summarizes the corpus for quality checks: total record count and the
// sentiment distribution over the most recent recentN records.
type Stats struct {
	Total        int
	Distribution map[string]int
}

func (s *Store) Stats(recentN int) (Stats, error) {
	records, err := s.Records()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(records), Distribution: make(map[string]int)}
	start := 0
	if len(records) > recentN {
		start = len(records) - recentN
	}
	for _, rec := range records[start:] {
		stats.Distribution[rec.Sentiment]++
	}
	return stats, nil
}

// WriteAll replaces the file at path with the given records, preserving the
// corpus encoding. Used by the dedup pass, not by ingestion.
func WriteAll(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating corpus file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return nil
}

// Articles run long; the default scanner token limit is too small.
func newLineScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}
