package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptRecord is the persisted form of a completed transcript
type TranscriptRecord struct {
	ID              uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID       uuid.UUID                                  `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`
	SourceID        string                                     `json:"source_id" gorm:"type:varchar(64);index"`
	SourceURL       string                                     `json:"source_url" gorm:"type:text"`
	Title           string                                     `json:"title,omitempty" gorm:"type:text"`
	Language        string                                     `json:"language" gorm:"type:varchar(20)"`
	Source          string                                     `json:"source" gorm:"type:varchar(20)"`
	DurationSeconds float64                                    `json:"duration_seconds"`
	FullText        string                                     `json:"full_text" gorm:"type:text"`
	Segments        []Segment                                  `json:"segments,omitempty" gorm:"type:jsonb;serializer:json"`
	Words           []WordToken                                `json:"words,omitempty" gorm:"type:jsonb;serializer:json"`
	ArtifactURLs    datatypes.JSONType[map[string]string]      `json:"artifact_urls,omitempty" gorm:"type:jsonb"`
	RawData         datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptRecord) TableName() string {
	return "transcript_records"
}

// NewTranscriptRecord builds a record from a completed session result
func NewTranscriptRecord(sessionID uuid.UUID, sourceURL string, result *TranscriptResult, artifactURLs map[string]string) *TranscriptRecord {
	record := &TranscriptRecord{
		ID:              uuid.New(),
		SessionID:       sessionID,
		SourceID:        result.SourceID,
		SourceURL:       sourceURL,
		Title:           result.Title,
		Language:        result.Language,
		Source:          string(result.Source),
		DurationSeconds: result.DurationSeconds,
		FullText:        result.FullText,
		Segments:        result.Segments,
		Words:           result.Words,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if len(artifactURLs) > 0 {
		record.ArtifactURLs = datatypes.NewJSONType(artifactURLs)
	}
	return record
}

// ToResult rebuilds the transcript result from the persisted record,
// so expired sessions can still serve their transcript
func (r *TranscriptRecord) ToResult() *TranscriptResult {
	return &TranscriptResult{
		SourceID:        r.SourceID,
		Title:           r.Title,
		Language:        r.Language,
		Source:          TranscriptSource(r.Source),
		DurationSeconds: r.DurationSeconds,
		FullText:        r.FullText,
		Segments:        r.Segments,
		Words:           r.Words,
	}
}
