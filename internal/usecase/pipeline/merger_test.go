package pipeline

import (
	"reflect"
	"strings"
	"testing"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

func charWords(text string, startTicks int64) []entities.WordToken {
	var words []entities.WordToken
	cursor := startTicks
	for _, ch := range text {
		dur := charDurationTicks(ch)
		words = append(words, entities.WordToken{
			Word:          string(ch),
			OffsetTicks:   cursor,
			DurationTicks: dur,
		})
		cursor += dur
	}
	return words
}

func TestMerge_MonotonicWordTime(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	results := []*entities.ChunkResult{
		{Index: 0, Words: charWords("今天天气很好。", 0)},
		nil, // failed chunk
		{Index: 2, Words: charWords("我们去公园吧！", 500_000_000)},
		{Index: 1, Words: charWords("大家早上好。", 200_000_000)},
	}

	merged := m.Merge(results, 90)

	for i := 1; i < len(merged.Words); i++ {
		if merged.Words[i].OffsetTicks < merged.Words[i-1].OffsetTicks {
			t.Fatalf("word %d offset %d precedes word %d offset %d",
				i, merged.Words[i].OffsetTicks, i-1, merged.Words[i-1].OffsetTicks)
		}
	}
	if merged.TotalDurationSeconds != 90 {
		t.Fatalf("total duration %g, want caller-supplied 90", merged.TotalDurationSeconds)
	}
}

func TestMerge_DedupsOverlapWords(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	// The same phrase recognized by two overlapping chunks, second copy
	// offset by 50ms
	first := charWords("你好世界", 0)
	second := charWords("你好世界", 0)
	for i := range second {
		second[i].OffsetTicks += 500_000
	}

	merged := m.Merge([]*entities.ChunkResult{
		{Index: 0, Words: first},
		{Index: 1, Words: second},
	}, 10)

	var count int
	for _, w := range merged.Words {
		if w.Word == "你" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one 你 after dedup, got %d (words: %d)", count, len(merged.Words))
	}
}

func TestMerge_CorrectsTimeRegressions(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	words := []entities.WordToken{
		{Word: "一", OffsetTicks: 0, DurationTicks: 3_000_000},
		{Word: "二", OffsetTicks: 3_000_000, DurationTicks: 3_000_000},
		// Regresses 1s behind the running end
		{Word: "三", OffsetTicks: 5_000_000, DurationTicks: 3_000_000},
	}
	// Force the regression past tolerance by pushing the running end up
	words[1].DurationTicks = 13_000_000 // ends at 16,000,000

	merged := m.Merge([]*entities.ChunkResult{{Words: words}}, 5)

	third := merged.Words[2]
	wantOffset := int64(16_000_000 + 50_000)
	if third.OffsetTicks != wantOffset {
		t.Fatalf("regressed word shifted to %d, want %d", third.OffsetTicks, wantOffset)
	}
}

func TestDedupSentences_RemovesContainedRestatement(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	sentences := []string{
		"今天天气很好我们去公园吧。",
		"天气很好我们去公园吧。", // retransmitted shorter variant
		"明天再说。",
	}

	got := m.DedupSentences(sentences)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences after dedup, got %d: %v", len(got), got)
	}
	if got[0] != "今天天气很好我们去公园吧。" {
		t.Fatalf("kept wrong variant: %q", got[0])
	}
}

func TestDedupSentences_KeepsMoreCompleteVariant(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	// The later variant ends with sentence punctuation; it should
	// replace the earlier truncated one
	got := m.DedupSentences([]string{"我们去公园吧", "我们去公园吧。"})
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d: %v", len(got), got)
	}
	if got[0] != "我们去公园吧。" {
		t.Fatalf("kept %q, want the punctuated variant", got[0])
	}
}

func TestDedupSentences_Idempotent(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	input := []string{
		"今天天气很好。",
		"今天天气很好。",
		"嗯今天天气很好。",
		"我们去公园吧！",
		"货币政策保持稳健。",
	}

	once := m.DedupSentences(input)
	twice := m.DedupSentences(once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedup not idempotent: %v vs %v", once, twice)
	}
}

func TestMerge_RestoresPunctuationAtPauses(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	words := []entities.WordToken{
		{Word: "好", OffsetTicks: 0, DurationTicks: 3_000_000},
		// 0.8s pause: sentence boundary
		{Word: "走", OffsetTicks: 11_000_000, DurationTicks: 3_000_000},
		// 0.4s pause: phrase boundary
		{Word: "吧", OffsetTicks: 18_000_000, DurationTicks: 3_000_000},
	}

	merged := m.Merge([]*entities.ChunkResult{{Words: words}}, 3)

	if !strings.Contains(merged.Text, "好。") {
		t.Fatalf("expected sentence punctuation after long pause, got %q", merged.Text)
	}
	if !strings.Contains(merged.Text, "走，") {
		t.Fatalf("expected phrase punctuation after short pause, got %q", merged.Text)
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	m := NewMerger(testPipelineConfig(), nil)

	merged := m.Merge([]*entities.ChunkResult{nil, nil}, 60)
	if len(merged.Words) != 0 || merged.Text != "" {
		t.Fatalf("expected empty transcript, got %d words, text %q", len(merged.Words), merged.Text)
	}
}
