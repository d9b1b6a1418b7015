package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrEntryNotFound = errors.New("activity entry not found")
	ErrNotPending    = errors.New("activity entry is not pending")
)

// MemoryLog keeps the audit trail in process memory. No durability across
// restarts; use the Postgres-backed store where the trail must survive.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(_ context.Context, entry Entry) (Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Datetime.IsZero() {
		entry.Datetime = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{entry}, l.entries...)
	return entry, nil
}

func (l *MemoryLog) Entries(_ context.Context) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (l *MemoryLog) Resolve(_ context.Context, id uuid.UUID, status, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}
		if l.entries[i].Status != StatusPending {
			return ErrNotPending
		}
		l.entries[i].Status = status
		if details != "" {
			l.entries[i].Details = details
		}
		return nil
	}

	return ErrEntryNotFound
}
