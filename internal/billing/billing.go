// Package billing keeps the cumulative connected duration per ordered
// (from, to) pair. Totals only ever grow; a pair with no history reads as
// zero, which is not an error.
package billing

import (
	"sort"
	"sync"

	"prepaid-accounting/internal/models"
)

type pair struct {
	from string
	to   string
}

type Table struct {
	mu     sync.RWMutex
	totals map[pair]int64
}

func NewTable() *Table {
	return &Table{totals: make(map[pair]int64)}
}

// Accumulate adds durationMs to the pair's total. Non-positive durations
// are ignored.
func (t *Table) Accumulate(from, to string, durationMs int64) {
	if durationMs <= 0 {
		return
	}
	t.mu.Lock()
	t.totals[pair{from, to}] += durationMs
	t.mu.Unlock()
}

// Get returns the cumulative billed duration for the ordered pair, zero if
// the pair has no history.
func (t *Table) Get(from, to string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[pair{from, to}]
}

// Snapshot returns all billing rows, sorted by caller then callee.
func (t *Table) Snapshot() []models.BillingEntry {
	t.mu.RLock()
	entries := make([]models.BillingEntry, 0, len(t.totals))
	for p, total := range t.totals {
		entries = append(entries, models.BillingEntry{From: p.from, To: p.to, TotalMs: total})
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].From != entries[j].From {
			return entries[i].From < entries[j].From
		}
		return entries[i].To < entries[j].To
	})
	return entries
}
