package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Entry is one audit record of an integration action. Entries are immutable
// once written, except for the explicit pending-to-terminal resolution.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Datetime    time.Time `json:"datetime"`
	Integration string    `json:"integration"`
	Activity    string    `json:"activity"`
	Status      string    `json:"status"`
	Details     string    `json:"details,omitempty"`
}

// Log is an append-only, newest-first audit trail.
type Log interface {
	// Append records one entry at the head of the log, assigning an id and
	// timestamp when the caller left them zero.
	Append(ctx context.Context, entry Entry) (Entry, error)

	// Entries returns the log newest first.
	Entries(ctx context.Context) ([]Entry, error)

	// Resolve transitions a pending entry to success or failed. Terminal
	// entries are never rewritten.
	Resolve(ctx context.Context, id uuid.UUID, status, details string) error
}
