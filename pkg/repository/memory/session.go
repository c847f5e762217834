package memory

import (
	"context"
	"sync"
	"time"
)

type sessionSlot struct {
	blob      []byte
	updatedAt time.Time
}

type sessionRepository struct {
	mu    sync.RWMutex
	slots map[string]*sessionSlot
	now   func() time.Time
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		slots: make(map[string]*sessionSlot),
		now:   time.Now,
	}
}

// Get returns a copy of the stored blob, or nil when the slot is empty
func (r *sessionRepository) Get(ctx context.Context, sessionID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[sessionID]
	if !ok {
		return nil, nil
	}

	// Return a copy to prevent external modifications
	blob := make([]byte, len(slot.blob))
	copy(blob, slot.blob)
	return blob, nil
}

func (r *sessionRepository) Put(ctx context.Context, sessionID string, blob []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	r.slots[sessionID] = &sessionSlot{
		blob:      stored,
		updatedAt: r.now(),
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, sessionID)
	return nil
}

func (r *sessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, slot := range r.slots {
		if slot.updatedAt.Before(before) {
			delete(r.slots, id)
			deleted++
		}
	}
	return deleted, nil
}
