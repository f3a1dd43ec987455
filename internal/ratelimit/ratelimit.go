// Package ratelimit tracks the per-run inference request budget. Pacing
// between calls is handled separately by the labeling client; the budget is
// a hard cap on how many requests a single run may spend at all.
package ratelimit

import (
	"fmt"
	"sync"
)

type Budget struct {
	mu   sync.Mutex
	used int
	max  int // 0 = unlimited
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Use claims one request from the budget.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("label request budget exhausted (%d/%d)", b.used, b.max)
	}
	b.used++
	return nil
}

func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *Budget) Stats() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]int{
		"used":  b.used,
		"limit": b.max,
	}
}
