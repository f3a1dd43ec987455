package metrics

import (
	"sync"
	"time"
)

// Metrics tracks one process's pipeline counters for the monitoring
// endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	EntriesSeen     int64
	EntriesRelevant int64
	ArticlesLabeled int64
	LabelsDegraded  int64
	RecordsAppended int64
	DuplicatesKnown int64 // candidates skipped because the source URL existed

	// Status
	LastRunTime   time.Time
	LastRunTook   time.Duration
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddEntriesSeen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesSeen += int64(n)
}

func (m *Metrics) AddEntriesRelevant(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesRelevant += int64(n)
}

func (m *Metrics) AddDuplicatesKnown(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesKnown += int64(n)
}

func (m *Metrics) IncrementLabeled(degraded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesLabeled++
	if degraded {
		m.LabelsDegraded++
	}
}

func (m *Metrics) IncrementAppended() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsAppended++
}

func (m *Metrics) SetLastRun(took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.LastRunTook = took
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries_seen":     m.EntriesSeen,
		"entries_relevant": m.EntriesRelevant,
		"articles_labeled": m.ArticlesLabeled,
		"labels_degraded":  m.LabelsDegraded,
		"records_appended": m.RecordsAppended,
		"duplicates_known": m.DuplicatesKnown,
		"last_run_time":    m.LastRunTime.Format(time.RFC3339),
		"last_run_took_ms": m.LastRunTook.Milliseconds(),
		"last_error_time":  m.LastErrorTime.Format(time.RFC3339),
		"last_error":       m.LastError,
		"is_healthy":       m.IsHealthy,
	}
}
