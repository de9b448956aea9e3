package video

import (
	"time"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

// ProcessResponse returns the session handle for polling
type ProcessResponse struct {
	SessionID string `json:"sessionId"`
	SourceID  string `json:"sourceId"`
	Status    string `json:"status"`
}

// StatusResponse is the polling view of a session, without the full
// result payload
type StatusResponse struct {
	SessionID    string            `json:"sessionId"`
	Status       string            `json:"status"`
	Step         string            `json:"step"`
	Progress     int               `json:"progress"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
	ArtifactURLs map[string]string `json:"artifactUrls,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// NewStatusResponse maps a session to its polling view
func NewStatusResponse(session *entities.ProcessingSession) StatusResponse {
	return StatusResponse{
		SessionID:    session.ID.String(),
		Status:       string(session.Status),
		Step:         string(session.Step),
		Progress:     session.Progress,
		Message:      session.Message,
		Error:        session.Error,
		ArtifactURLs: session.ArtifactURL,
		UpdatedAt:    session.UpdatedAt,
	}
}

// HistoryItem is one entry in the transcript history listing
type HistoryItem struct {
	ID              string    `json:"id"`
	SourceID        string    `json:"sourceId"`
	Title           string    `json:"title,omitempty"`
	Language        string    `json:"language"`
	Source          string    `json:"source"`
	DurationSeconds float64   `json:"durationSeconds"`
	SegmentCount    int       `json:"segmentCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewHistoryItem maps a stored transcript to its listing view
func NewHistoryItem(record *entities.TranscriptRecord) HistoryItem {
	return HistoryItem{
		ID:              record.ID.String(),
		SourceID:        record.SourceID,
		Title:           record.Title,
		Language:        record.Language,
		Source:          record.Source,
		DurationSeconds: record.DurationSeconds,
		SegmentCount:    len(record.Segments),
		CreatedAt:       record.CreatedAt,
	}
}
