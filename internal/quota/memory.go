package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger keeps the ledger in process. Used for tests and single-node dev runs.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]*Entry)}
}

func memKey(userID string, day Day) string { return userID + "|" + day.Key }

func (m *MemoryLedger) Usage(_ context.Context, userID string, day Day) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[memKey(userID, day)]; ok {
		return e.PostCount, nil
	}
	return 0, nil
}

func (m *MemoryLedger) Consume(_ context.Context, userID string, day Day, limit int, at time.Time) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		return limit, false, nil
	}
	k := memKey(userID, day)
	e, ok := m.entries[k]
	if !ok {
		e = &Entry{UserID: userID, Day: day.Key, DayStart: day.Start}
		m.entries[k] = e
	}
	if e.PostCount >= limit {
		return limit, false, nil
	}
	e.PostCount++
	e.LastPostAt = at
	return e.PostCount, true, nil
}

func (m *MemoryLedger) Release(_ context.Context, userID string, day Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[memKey(userID, day)]; ok && e.PostCount > 0 {
		e.PostCount--
	}
	return nil
}

// Entries returns a copy of every row, for assertions.
func (m *MemoryLedger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out
}
