package model

import "context"

// HistoryRepository persists the running conversation of a session. The
// actor's in-memory state is the source of truth; the repository is its
// write-through projection, replayed on first touch.
type HistoryRepository interface {
	// Append writes one message to the end of the session's history.
	Append(ctx context.Context, sessionID string, msg Message) error

	// Load retrieves the full persisted history for a session.
	Load(ctx context.Context, sessionID string) ([]Message, error)

	// Clear removes the session's entire history.
	Clear(ctx context.Context, sessionID string) error
}
