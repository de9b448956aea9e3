package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/pkg/speech"
)

// fakeSpeech is a scripted recognition backend for pipeline tests
type fakeSpeech struct {
	events       []speech.RecognitionResult
	err          error
	block        bool
	unconfigured bool
}

func (f *fakeSpeech) Recognize(ctx context.Context, wav []byte) ([]speech.RecognitionResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.events, f.err
}

func (f *fakeSpeech) IsConfigured() bool { return !f.unconfigured }

func TestRecognizeChunk_CeilingTimeoutYieldsNilResult(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.RecognitionCeiling = 10 * time.Millisecond
	cfg.RecognitionGrace = 5 * time.Millisecond

	r := NewRecognizer(&fakeSpeech{block: true}, cfg, nil)
	result, err := r.RecognizeChunk(context.Background(), []byte("wav"), 0, entities.ChunkWindow{Start: 0, End: 55})
	if err != nil {
		t.Fatalf("ceiling timeout should not be an error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result after ceiling timeout, got %+v", result)
	}
}

func TestRecognizeChunk_BackendErrorPropagates(t *testing.T) {
	wantErr := errors.New("connection refused")
	r := NewRecognizer(&fakeSpeech{err: wantErr}, testPipelineConfig(), nil)

	_, err := r.RecognizeChunk(context.Background(), nil, 0, entities.ChunkWindow{Start: 0, End: 55})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRecognizeChunk_ZeroUtterancesYieldsNilResult(t *testing.T) {
	backend := &fakeSpeech{events: []speech.RecognitionResult{
		{RecognitionStatus: speech.StatusNoMatch},
	}}
	r := NewRecognizer(backend, testPipelineConfig(), nil)

	result, err := r.RecognizeChunk(context.Background(), nil, 2, entities.ChunkWindow{Start: 108, End: 120})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for a chunk with zero utterances, got %+v", result)
	}
}

func TestRecognizeChunk_SynthesizesPerCharTiming(t *testing.T) {
	backend := &fakeSpeech{events: []speech.RecognitionResult{
		{
			RecognitionStatus: speech.StatusSuccess,
			DisplayText:       "好3。",
		},
	}}
	r := NewRecognizer(backend, testPipelineConfig(), nil)

	result, err := r.RecognizeChunk(context.Background(), nil, 0, entities.ChunkWindow{Start: 10, End: 65})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a chunk result")
	}
	if result.Text != "好3。" {
		t.Fatalf("chunk text %q", result.Text)
	}
	if len(result.Words) != 3 {
		t.Fatalf("expected 3 synthesized words, got %d", len(result.Words))
	}

	chunkStart := entities.SecondsToTicks(10)
	wantOffsets := []int64{chunkStart, chunkStart + 3_000_000, chunkStart + 3_000_000 + 3_500_000}
	wantDurations := []int64{3_000_000, 3_500_000, 5_000_000}
	for i, w := range result.Words {
		if w.OffsetTicks != wantOffsets[i] {
			t.Fatalf("word %d offset = %d, want %d", i, w.OffsetTicks, wantOffsets[i])
		}
		if w.DurationTicks != wantDurations[i] {
			t.Fatalf("word %d duration = %d, want %d", i, w.DurationTicks, wantDurations[i])
		}
	}
}

func TestRecognizeChunk_UtteranceGapBetweenSynthesizedEvents(t *testing.T) {
	backend := &fakeSpeech{events: []speech.RecognitionResult{
		{RecognitionStatus: speech.StatusSuccess, DisplayText: "好"},
		{RecognitionStatus: speech.StatusSuccess, DisplayText: "走"},
	}}
	r := NewRecognizer(backend, testPipelineConfig(), nil)

	result, err := r.RecognizeChunk(context.Background(), nil, 0, entities.ChunkWindow{Start: 0, End: 55})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(result.Words))
	}
	// first word ends at 3_000_000, plus the 0.5s gap
	if result.Words[1].OffsetTicks != 3_000_000+5_000_000 {
		t.Fatalf("second utterance offset = %d, want %d", result.Words[1].OffsetTicks, 3_000_000+5_000_000)
	}
}

func TestRecognizeChunk_UsesBackendWordTiming(t *testing.T) {
	backend := &fakeSpeech{events: []speech.RecognitionResult{
		{
			RecognitionStatus: speech.StatusSuccess,
			NBest: []speech.NBest{
				{
					Confidence: 0.91,
					Display:    "你好",
					Words: []speech.Word{
						{Word: "你", Offset: 1_000_000, Duration: 2_000_000, Confidence: 0.9},
						{Word: "好", Offset: 3_500_000, Duration: 2_000_000, Confidence: 0.92},
					},
				},
			},
		},
	}}
	r := NewRecognizer(backend, testPipelineConfig(), nil)

	result, err := r.RecognizeChunk(context.Background(), nil, 1, entities.ChunkWindow{Start: 54, End: 109})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(result.Words))
	}

	chunkStart := entities.SecondsToTicks(54)
	if result.Words[0].OffsetTicks != chunkStart+1_000_000 {
		t.Fatalf("backend offsets must shift by chunk start: got %d", result.Words[0].OffsetTicks)
	}
	if result.Words[1].Confidence != 0.92 {
		t.Fatalf("backend confidence not preserved: %g", result.Words[1].Confidence)
	}
}

func TestRecognizeChunk_AllZeroBackendTimingFallsBackToSynthesis(t *testing.T) {
	backend := &fakeSpeech{events: []speech.RecognitionResult{
		{
			RecognitionStatus: speech.StatusSuccess,
			NBest: []speech.NBest{
				{
					Confidence: 0.5,
					Display:    "你好",
					Words: []speech.Word{
						{Word: "你"},
						{Word: "好"},
					},
				},
			},
		},
	}}
	r := NewRecognizer(backend, testPipelineConfig(), nil)

	result, err := r.RecognizeChunk(context.Background(), nil, 0, entities.ChunkWindow{Start: 0, End: 55})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// synthesis splits per character with the default tier duration
	if len(result.Words) != 2 {
		t.Fatalf("expected 2 synthesized characters, got %d", len(result.Words))
	}
	if result.Words[0].DurationTicks != 3_000_000 || result.Words[1].OffsetTicks != 3_000_000 {
		t.Fatalf("expected synthesized timing, got %+v", result.Words)
	}
}
