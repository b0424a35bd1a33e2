// Package tally keeps per-mood entry counts in memory so the stats endpoint
// answers without scanning the entries table. Counts are seeded from the
// database at startup and adjusted on every create and delete; the entries
// table stays the source of truth.
package tally

import (
	"sync"

	"moodtrack/internal/db"
	"moodtrack/internal/mood"
)

type Tally struct {
	mu     sync.RWMutex
	counts map[string]int64
}

func New(database *db.DB) (*Tally, error) {
	stored, err := database.CountByMood()
	if err != nil {
		return nil, err
	}

	t := &Tally{counts: make(map[string]int64, len(mood.All))}
	for _, m := range mood.All {
		t.counts[m] = stored[m]
	}
	return t, nil
}

func (t *Tally) Add(m string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[m]++
}

func (t *Tally) Remove(m string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[m] > 0 {
		t.counts[m]--
	}
}

// Snapshot returns a copy of the counts with every mood present, zeros
// included.
func (t *Tally) Snapshot() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]int64, len(mood.All))
	for _, m := range mood.All {
		counts[m] = t.counts[m]
	}
	return counts
}
