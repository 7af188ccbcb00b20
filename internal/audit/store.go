package audit

import "context"

// Store persists admin audit log rows. Append is the fail-closed write path:
// if the row cannot be persisted the administrative action must not proceed.
type Store interface {
	// Append persists the event and returns the assigned row id.
	Append(ctx context.Context, e *Event) (int64, error)
	// ListRecent returns the most recent rows, newest first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	// ListByUser returns rows affecting one user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	// GetByID returns a single row.
	GetByID(ctx context.Context, id int64) (Record, error)
}
