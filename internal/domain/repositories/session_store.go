package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/harulab/interp-practice/internal/domain/entities"
)

// SessionUpdate carries a partial update of a processing session.
// Nil fields are left untouched.
type SessionUpdate struct {
	Status   *entities.SessionStatus
	Step     *entities.ProcessingStep
	Progress *int
	Message  *string
	Error    *string
	Result   *entities.TranscriptResult
	Artifact map[string]string
}

// SessionStore defines the interface for processing session state
type SessionStore interface {
	// Create stores a new processing session
	Create(ctx context.Context, session *entities.ProcessingSession) error

	// Update applies a partial update to an existing session
	Update(ctx context.Context, id uuid.UUID, update SessionUpdate) error

	// Get returns a session by ID
	Get(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error)

	// Delete removes a session
	Delete(ctx context.Context, id uuid.UUID) error
}
