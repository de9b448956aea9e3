package pipeline

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

const (
	defaultTimePerChar = 0.15
	minSegmentSeconds  = 1.0
	maxSegmentSeconds  = 30.0
	snapToleranceSec   = 0.1
	contiguityTolSec   = 0.001
	spanToleranceSec   = 1.0
	fallbackGroupCount = 10
)

// Segmenter distributes merged transcript text across the media
// duration as contiguous sentence segments
type Segmenter struct {
	logger *zap.Logger
}

// NewSegmenter creates a sentence segmenter
func NewSegmenter(logger *zap.Logger) *Segmenter {
	return &Segmenter{logger: logger}
}

// Segment splits the merged text into sentences and assigns each a time
// range proportional to its character count. If the proportional result
// fails validation it is discarded for the safe fallback, which is
// structurally valid by construction.
func (s *Segmenter) Segment(text string, totalDurationSeconds float64) []entities.Segment {
	sentences := splitSentences(text)
	segments := s.proportional(sentences, totalDurationSeconds)

	if err := ValidateSegments(segments, totalDurationSeconds); err != nil {
		if s.logger != nil {
			s.logger.Warn("🔄 Proportional segmentation failed validation, using fallback",
				zap.Error(err))
		}
		segments = s.safeFallback(text, totalDurationSeconds)
	}

	return segments
}

// proportional assigns each sentence a duration from its share of the
// total character count, clamped to a sane range, then snaps the final
// segment to the media end
func (s *Segmenter) proportional(sentences []string, totalDuration float64) []entities.Segment {
	totalChars := 0
	for _, sentence := range sentences {
		totalChars += len([]rune(sentence))
	}
	if totalChars == 0 {
		return []entities.Segment{}
	}

	timePerChar := defaultTimePerChar
	if totalDuration > 0 {
		timePerChar = totalDuration / float64(totalChars)
	}

	segments := make([]entities.Segment, 0, len(sentences))
	runningEnd := 0.0
	for i, sentence := range sentences {
		duration := float64(len([]rune(sentence))) * timePerChar
		duration = math.Max(minSegmentSeconds, math.Min(duration, maxSegmentSeconds))

		start := runningEnd
		end := start + duration
		segments = append(segments, entities.NewSegment(i+1, sentence, start, end))
		runningEnd = end
	}

	// Snap-to-end: proportional rounding and clamping drift the final
	// boundary off the real media end
	if len(segments) > 0 && totalDuration > 0 {
		last := &segments[len(segments)-1]
		if math.Abs(last.EndSeconds-totalDuration) > snapToleranceSec {
			*last = entities.NewSegment(last.ID, last.Text, last.StartSeconds, totalDuration)
		}
	}

	return segments
}

// safeFallback collapses the text into at most ten groups with uniform
// durations. Groups are built from whole sentences so boundaries stay
// readable; when the text has no sentence structure at all it falls
// back to equal-sized rune groups. Less precise, always valid.
func (s *Segmenter) safeFallback(text string, totalDuration float64) []entities.Segment {
	if totalDuration <= 0 {
		return []entities.Segment{}
	}

	pieces := splitSentences(text)
	if len(pieces) <= 1 {
		pieces = runeGroups(text, fallbackGroupCount)
	}
	if len(pieces) == 0 {
		return []entities.Segment{}
	}

	groups := fallbackGroupCount
	if len(pieces) < groups {
		groups = len(pieces)
	}
	perGroup := int(math.Ceil(float64(len(pieces)) / float64(groups)))
	groupDuration := totalDuration / float64(groups)

	var segments []entities.Segment
	for i := 0; i < groups; i++ {
		lo := i * perGroup
		if lo >= len(pieces) {
			break
		}
		hi := lo + perGroup
		if hi > len(pieces) {
			hi = len(pieces)
		}
		start := float64(i) * groupDuration
		end := start + groupDuration
		segments = append(segments, entities.NewSegment(i+1, strings.Join(pieces[lo:hi], ""), start, end))
	}

	if len(segments) > 0 {
		last := &segments[len(segments)-1]
		*last = entities.NewSegment(last.ID, last.Text, last.StartSeconds, totalDuration)
	}

	return segments
}

// runeGroups splits text into at most n equal-sized rune slices
func runeGroups(text string, n int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < n {
		n = len(runes)
	}
	size := int(math.Ceil(float64(len(runes)) / float64(n)))

	var groups []string
	for lo := 0; lo < len(runes); lo += size {
		hi := lo + size
		if hi > len(runes) {
			hi = len(runes)
		}
		groups = append(groups, string(runes[lo:hi]))
	}
	return groups
}

// SegmentError describes why a segmentation failed validation
type SegmentError struct {
	Reason string
}

func (e *SegmentError) Error() string {
	return "invalid segmentation: " + e.Reason
}

// ValidateSegments checks contiguity, ordering, total span and
// non-empty text. An empty list is vacuously valid (no transcript, no
// segments).
func ValidateSegments(segments []entities.Segment, totalDuration float64) error {
	if len(segments) == 0 {
		return nil
	}

	for i, seg := range segments {
		if seg.Text == "" {
			return &SegmentError{Reason: "empty segment text"}
		}
		if seg.StartSeconds >= seg.EndSeconds {
			return &SegmentError{Reason: "segment start not before end"}
		}
		if i > 0 && math.Abs(seg.StartSeconds-segments[i-1].EndSeconds) > contiguityTolSec {
			return &SegmentError{Reason: "gap between segments"}
		}
	}

	if totalDuration > 0 {
		lastEnd := segments[len(segments)-1].EndSeconds
		if math.Abs(lastEnd-totalDuration) > spanToleranceSec {
			return &SegmentError{Reason: "total span mismatch"}
		}
	}

	return nil
}
