package interfaces

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence
type Repository interface {
	Session() SessionRepository
	Close() error
}

// SessionRepository holds one named slot per browser session. The slot
// content is an opaque structured-text blob owned by the session store;
// backends never interpret it.
type SessionRepository interface {
	// Get returns the stored blob, or nil when the slot is empty
	Get(ctx context.Context, sessionID string) ([]byte, error)

	// Put overwrites the slot with blob
	Put(ctx context.Context, sessionID string, blob []byte) error

	// Delete clears the slot. Clearing an empty slot is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteIdle clears every slot not written since before and returns the
	// number of cleared slots
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}
