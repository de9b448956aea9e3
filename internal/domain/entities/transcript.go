package entities

import (
	"fmt"
	"math"
)

// TicksPerSecond is the native time unit of the recognition backend:
// 100-nanosecond ticks.
const TicksPerSecond int64 = 10_000_000

// SecondsToTicks converts seconds to recognition ticks
func SecondsToTicks(seconds float64) int64 {
	return int64(math.Round(seconds * float64(TicksPerSecond)))
}

// TicksToSeconds converts recognition ticks to seconds
func TicksToSeconds(ticks int64) float64 {
	return float64(ticks) / float64(TicksPerSecond)
}

// FormatTimeLabel formats a position in seconds as "HH:MM:SS,mmm"
func FormatTimeLabel(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	millis := totalMillis % 1000
	totalSecs := totalMillis / 1000
	secs := totalSecs % 60
	mins := (totalSecs / 60) % 60
	hours := totalSecs / 3600
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, mins, secs, millis)
}

// WordToken is a single recognized word with backend-native timing
type WordToken struct {
	Word          string  `json:"word"`
	OffsetTicks   int64   `json:"offsetTicks"`
	DurationTicks int64   `json:"durationTicks"`
	Confidence    float64 `json:"confidence,omitempty"`
}

// EndTicks returns the tick position where the word ends
func (w WordToken) EndTicks() int64 {
	return w.OffsetTicks + w.DurationTicks
}

// ChunkWindow is a planned slice of the source audio, in seconds from
// the start of the media
type ChunkWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Natural marks windows whose end was snapped to a detected
	// silence boundary rather than cut mid-speech
	Natural bool `json:"natural"`
}

// Duration returns the window length in seconds
func (w ChunkWindow) Duration() float64 {
	return w.End - w.Start
}

// ChunkResult holds the recognition output for one chunk, with word
// offsets already shifted to absolute media time
type ChunkResult struct {
	Index  int         `json:"index"`
	Window ChunkWindow `json:"window"`
	Text   string      `json:"text"`
	Words  []WordToken `json:"words"`
}

// Segment is one sentence-level piece of the final transcript
type Segment struct {
	ID             int      `json:"id"`
	Text           string   `json:"text"`
	StartSeconds   float64  `json:"startSeconds"`
	EndSeconds     float64  `json:"endSeconds"`
	StartTimeLabel string   `json:"startTime"`
	EndTimeLabel   string   `json:"endTime"`
	Keywords       []string `json:"keywords"`
}

// NewSegment builds a segment with formatted time labels and an empty
// keyword list (never nil, clients iterate it unconditionally)
func NewSegment(id int, text string, startSec, endSec float64) Segment {
	return Segment{
		ID:             id,
		Text:           text,
		StartSeconds:   startSec,
		EndSeconds:     endSec,
		StartTimeLabel: FormatTimeLabel(startSec),
		EndTimeLabel:   FormatTimeLabel(endSec),
		Keywords:       []string{},
	}
}

// DurationSeconds returns the segment length in seconds
func (s Segment) DurationSeconds() float64 {
	return s.EndSeconds - s.StartSeconds
}

// TranscriptSource identifies where a transcript came from
type TranscriptSource string

const (
	SourceRecognition TranscriptSource = "recognition"
	SourceCaptions    TranscriptSource = "captions"
)

// TranscriptResult is the completed output of a processing session
type TranscriptResult struct {
	SourceID        string           `json:"sourceId"`
	Title           string           `json:"title,omitempty"`
	Language        string           `json:"language"`
	Source          TranscriptSource `json:"source"`
	DurationSeconds float64          `json:"durationSeconds"`
	FullText        string           `json:"fullText"`
	Segments        []Segment        `json:"segments"`
	Words           []WordToken      `json:"words,omitempty"`
}
