package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/domain/entities"
)

// TranscriptRepository handles transcript persistence
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Create persists a completed transcript
func (r *TranscriptRepository) Create(ctx context.Context, record *entities.TranscriptRecord) error {
	if record == nil {
		return errors.New("transcript record cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.ErrDBQueryFailed("create transcript record", err)
	}
	return nil
}

// FindBySessionID returns the transcript stored for a session
func (r *TranscriptRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.TranscriptRecord, error) {
	var record entities.TranscriptRecord
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrDBQueryFailed("find transcript by session", err)
	}
	return &record, nil
}

// FindBySourceID returns the most recent transcript for a source video
func (r *TranscriptRepository) FindBySourceID(ctx context.Context, sourceID string) (*entities.TranscriptRecord, error) {
	var record entities.TranscriptRecord
	err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrDBQueryFailed("find transcript by source", err)
	}
	return &record, nil
}

// ListRecent returns the most recently created transcripts
func (r *TranscriptRepository) ListRecent(ctx context.Context, limit int) ([]*entities.TranscriptRecord, error) {
	var records []*entities.TranscriptRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list recent transcripts", err)
	}
	return records, nil
}
