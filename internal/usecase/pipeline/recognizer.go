package pipeline

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/pkg/config"
	"github.com/harulab/interp-practice/pkg/speech"
)

// SpeechRecognizer is the recognition backend surface the pipeline
// needs. Satisfied by *speech.Client.
type SpeechRecognizer interface {
	Recognize(ctx context.Context, wav []byte) ([]speech.RecognitionResult, error)
	IsConfigured() bool
}

// Per-character duration tiers for synthesized word timing, in ticks
const (
	tickDurSentencePunct = 5_000_000 // 0.5s
	tickDurMinorPunct    = 2_000_000 // 0.2s
	tickDurDigit         = 3_500_000 // 0.35s
	tickDurDefault       = 3_000_000 // 0.3s
	tickUtteranceGap     = 5_000_000 // 0.5s between utterances
)

const sentenceFinalPunct = "。！？!?."
const minorPunct = "，、；：,;:…"

// Recognizer submits chunk audio to the speech backend and turns its
// events into chunk results with usable word timing
type Recognizer struct {
	client SpeechRecognizer
	cfg    config.PipelineConfig
	logger *zap.Logger
}

// NewRecognizer creates a chunk recognizer
func NewRecognizer(client SpeechRecognizer, cfg config.PipelineConfig, logger *zap.Logger) *Recognizer {
	return &Recognizer{client: client, cfg: cfg, logger: logger}
}

// RecognizeChunk submits one chunk and finalizes its result. The call
// is bounded by the recognition ceiling plus one grace period; hitting
// the ceiling finalizes with whatever was collected instead of failing.
// A chunk with zero utterances yields a nil result and no error.
func (r *Recognizer) RecognizeChunk(ctx context.Context, wav []byte, index int, window entities.ChunkWindow) (*entities.ChunkResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RecognitionCeiling+r.cfg.RecognitionGrace)
	defer cancel()

	events, err := r.client.Recognize(callCtx, wav)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			if r.logger != nil {
				r.logger.Warn("🔄 Recognition ceiling reached, finalizing chunk with no utterances",
					zap.Int("chunk", index))
			}
			return nil, nil
		}
		return nil, err
	}

	result := r.finalize(index, window, events)
	if result == nil {
		if r.logger != nil {
			r.logger.Info("Chunk produced no utterances",
				zap.Int("chunk", index))
		}
	}
	return result, nil
}

// finalize folds recognition events into a single chunk result with
// word offsets shifted to absolute media time
func (r *Recognizer) finalize(index int, window entities.ChunkWindow, events []speech.RecognitionResult) *entities.ChunkResult {
	chunkStartTicks := entities.SecondsToTicks(window.Start)

	var words []entities.WordToken
	var texts []string
	cursor := chunkStartTicks

	for _, event := range events {
		if event.RecognitionStatus != speech.StatusSuccess {
			continue
		}

		best, ok := event.Best()
		text := event.DisplayText
		if ok && best.Display != "" {
			text = best.Display
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)

		if ok && usableWordTiming(best.Words) {
			for _, w := range best.Words {
				words = append(words, entities.WordToken{
					Word:          w.Word,
					OffsetTicks:   chunkStartTicks + w.Offset,
					DurationTicks: w.Duration,
					Confidence:    w.Confidence,
				})
			}
			last := words[len(words)-1]
			cursor = last.EndTicks() + tickUtteranceGap
			continue
		}

		// Backend timing absent or malformed: synthesize fixed
		// per-character durations so downstream merging always has
		// usable offsets
		confidence := 0.0
		if ok {
			confidence = best.Confidence
		}
		for _, ch := range text {
			dur := charDurationTicks(ch)
			words = append(words, entities.WordToken{
				Word:          string(ch),
				OffsetTicks:   cursor,
				DurationTicks: dur,
				Confidence:    confidence,
			})
			cursor += dur
		}
		cursor += tickUtteranceGap
	}

	if len(words) == 0 {
		return nil
	}

	return &entities.ChunkResult{
		Index:  index,
		Window: window,
		Text:   strings.Join(texts, ""),
		Words:  words,
	}
}

// usableWordTiming rejects word lists where the backend emitted
// placeholder zeros for every offset
func usableWordTiming(words []speech.Word) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if w.Offset > 0 || w.Duration > 0 {
			return true
		}
	}
	return false
}

func charDurationTicks(ch rune) int64 {
	switch {
	case strings.ContainsRune(sentenceFinalPunct, ch):
		return tickDurSentencePunct
	case strings.ContainsRune(minorPunct, ch):
		return tickDurMinorPunct
	case unicode.IsDigit(ch):
		return tickDurDigit
	default:
		return tickDurDefault
	}
}
