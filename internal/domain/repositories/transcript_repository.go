package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/harulab/interp-practice/internal/domain/entities"
)

// TranscriptRepository defines the interface for persisted transcripts
type TranscriptRepository interface {
	// Create persists a completed transcript
	Create(ctx context.Context, record *entities.TranscriptRecord) error

	// FindBySessionID returns the transcript stored for a session
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.TranscriptRecord, error)

	// FindBySourceID returns the most recent transcript for a source video
	FindBySourceID(ctx context.Context, sourceID string) (*entities.TranscriptRecord, error)

	// ListRecent returns the most recently created transcripts
	ListRecent(ctx context.Context, limit int) ([]*entities.TranscriptRecord, error)
}
