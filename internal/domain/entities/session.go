package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the coarse state of a processing session
type SessionStatus string

const (
	StatusStarted   SessionStatus = "started"
	StatusCompleted SessionStatus = "completed"
	StatusError     SessionStatus = "error"
)

// ProcessingStep names the stage a session is currently in
type ProcessingStep string

const (
	StepInitializing ProcessingStep = "initializing"
	StepDownloading  ProcessingStep = "downloading"
	StepTranscribing ProcessingStep = "transcribing"
	StepProcessing   ProcessingStep = "processing"
	StepCompleted    ProcessingStep = "completed"
	StepError        ProcessingStep = "error"
)

// ProcessingSession tracks one video-to-transcript job from submission
// to completion. Progress runs 0 to 100.
type ProcessingSession struct {
	ID          uuid.UUID         `json:"id"`
	SourceURL   string            `json:"sourceUrl"`
	SourceID    string            `json:"sourceId"`
	Status      SessionStatus     `json:"status"`
	Step        ProcessingStep    `json:"step"`
	Progress    int               `json:"progress"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	Result      *TranscriptResult `json:"result,omitempty"`
	ArtifactURL map[string]string `json:"artifactUrls,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewProcessingSession creates a session in its initial state
func NewProcessingSession(sourceURL, sourceID string) *ProcessingSession {
	now := time.Now()
	return &ProcessingSession{
		ID:        uuid.New(),
		SourceURL: sourceURL,
		SourceID:  sourceID,
		Status:    StatusStarted,
		Step:      StepInitializing,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminal reports whether the session has finished, successfully or not
func (s *ProcessingSession) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusError
}
