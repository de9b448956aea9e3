package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/internal/domain/repositories"
)

// MemorySessionStore keeps processing sessions in process memory.
// Sessions expire a while after their last update so abandoned jobs
// don't accumulate.
type MemorySessionStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*memoryItem
	ttl   time.Duration
}

type memoryItem struct {
	session    *entities.ProcessingSession
	expireTime time.Time
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	store := &MemorySessionStore{
		items: make(map[uuid.UUID]*memoryItem),
		ttl:   ttl,
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Create stores a new processing session
func (ms *MemorySessionStore) Create(ctx context.Context, session *entities.ProcessingSession) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	copy := *session
	ms.items[session.ID] = &memoryItem{
		session:    &copy,
		expireTime: time.Now().Add(ms.ttl),
	}
	return nil
}

// Update applies a partial update to an existing session
func (ms *MemorySessionStore) Update(ctx context.Context, id uuid.UUID, update repositories.SessionUpdate) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[id]
	if !exists || time.Now().After(item.expireTime) {
		return apperrors.ErrSessionNotFound(id.String())
	}

	applyUpdate(item.session, update)
	item.expireTime = time.Now().Add(ms.ttl)
	return nil
}

// Get returns a session by ID
func (ms *MemorySessionStore) Get(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[id]
	if !exists || time.Now().After(item.expireTime) {
		return nil, apperrors.ErrSessionNotFound(id.String())
	}

	copy := *item.session
	return &copy, nil
}

// Delete removes a session
func (ms *MemorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, id)
	return nil
}

// applyUpdate mutates a session in place from a partial update
func applyUpdate(session *entities.ProcessingSession, update repositories.SessionUpdate) {
	if update.Status != nil {
		session.Status = *update.Status
	}
	if update.Step != nil {
		session.Step = *update.Step
	}
	if update.Progress != nil {
		session.Progress = *update.Progress
	}
	if update.Message != nil {
		session.Message = *update.Message
	}
	if update.Error != nil {
		session.Error = *update.Error
	}
	if update.Result != nil {
		session.Result = update.Result
	}
	if update.Artifact != nil {
		if session.ArtifactURL == nil {
			session.ArtifactURL = make(map[string]string)
		}
		for k, v := range update.Artifact {
			session.ArtifactURL[k] = v
		}
	}
	session.UpdatedAt = time.Now()
}

// cleanupExpired periodically removes expired items
func (ms *MemorySessionStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
