package pipeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/pkg/config"
)

// MergedTranscript is the stitched output of all chunk results
type MergedTranscript struct {
	Words                []entities.WordToken
	Text                 string
	TotalDurationSeconds float64
}

// noisyLeadingTokens are filler prefixes the backend tends to bolt onto
// retransmitted sentences. Tuned for Mandarin content.
var noisyLeadingTokens = []string{"嗯", "啊", "呃", "哦", "那个", "就是"}

// Merger stitches per-chunk recognition results into one transcript,
// repairing the duplication and timing damage chunk overlap causes
type Merger struct {
	cfg    config.PipelineConfig
	logger *zap.Logger
}

// NewMerger creates a result merger
func NewMerger(cfg config.PipelineConfig, logger *zap.Logger) *Merger {
	return &Merger{cfg: cfg, logger: logger}
}

// Merge flattens, sorts, deduplicates and time-corrects the words of
// all chunk results, then runs a sentence-level dedup over the
// reconstructed text. Nil chunk results are discarded.
func (m *Merger) Merge(results []*entities.ChunkResult, totalDurationSeconds float64) MergedTranscript {
	// Flatten
	var words []entities.WordToken
	for _, result := range results {
		if result == nil {
			continue
		}
		words = append(words, result.Words...)
	}

	// Stable sort by offset: sequential processing already yields
	// chunk order, the sort is the safety net if concurrency is ever
	// introduced upstream
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].OffsetTicks < words[j].OffsetTicks
	})

	words = m.dedupWords(words)
	words = m.correctTimes(words)

	text := m.restorePunctuation(words)
	sentences := m.DedupSentences(splitSentences(text))

	if m.logger != nil {
		m.logger.Info("✅ Merge complete",
			zap.Int("words", len(words)),
			zap.Int("sentences", len(sentences)))
	}

	return MergedTranscript{
		Words:                words,
		Text:                 strings.Join(sentences, ""),
		TotalDurationSeconds: totalDurationSeconds,
	}
}

// dedupWords drops a word when it repeats the immediately preceding
// kept word's text within the dedup window. Chunk overlap regions
// produce exactly this shape of near-duplicate.
func (m *Merger) dedupWords(words []entities.WordToken) []entities.WordToken {
	kept := make([]entities.WordToken, 0, len(words))
	for _, w := range words {
		if len(kept) > 0 {
			prev := kept[len(kept)-1]
			if w.Word == prev.Word && w.OffsetTicks-prev.OffsetTicks <= m.cfg.WordDedupWindowTicks {
				continue
			}
		}
		kept = append(kept, w)
	}
	return kept
}

// correctTimes repairs apparent time regressions at chunk boundaries.
// A word starting well before the running last end is shifted forward
// to just past it.
func (m *Merger) correctTimes(words []entities.WordToken) []entities.WordToken {
	var runningLastEnd int64
	for i := range words {
		if runningLastEnd-words[i].OffsetTicks > m.cfg.RegressionTolTicks {
			words[i].OffsetTicks = runningLastEnd + m.cfg.RegressionShiftTicks
		}
		if end := words[i].EndTicks(); end > runningLastEnd {
			runningLastEnd = end
		}
	}
	return words
}

// restorePunctuation reconstructs text from words, inserting sentence
// or phrase punctuation where the audio itself paused but the backend
// emitted none
func (m *Merger) restorePunctuation(words []entities.WordToken) string {
	sentenceGapTicks := entities.SecondsToTicks(m.cfg.SentencePauseSec)
	phraseGapTicks := entities.SecondsToTicks(m.cfg.PhrasePauseSec)

	var b strings.Builder
	for i, w := range words {
		b.WriteString(w.Word)
		if i == len(words)-1 {
			break
		}
		if isPunct(w.Word) {
			continue
		}
		gap := words[i+1].OffsetTicks - w.EndTicks()
		switch {
		case gap >= sentenceGapTicks:
			b.WriteString("。")
		case gap >= phraseGapTicks:
			b.WriteString("，")
		}
	}
	return b.String()
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	last := runes[len(runes)-1]
	return strings.ContainsRune(sentenceFinalPunct, last) || strings.ContainsRune(minorPunct, last)
}

// splitSentences splits text on sentence-final punctuation, keeping the
// punctuation with the preceding sentence
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, ch := range text {
		current.WriteRune(ch)
		if strings.ContainsRune(sentenceFinalPunct, ch) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if trailing := strings.TrimSpace(current.String()); trailing != "" {
		sentences = append(sentences, trailing)
	}
	return sentences
}

// DedupSentences removes sentences that restate an already accepted
// one. Backend partial-result retransmission and chunk overlap both
// reintroduce the same sentence with slightly different boundaries, so
// three independent similarity heuristics get a vote.
func (m *Merger) DedupSentences(sentences []string) []string {
	var accepted []string
	for _, candidate := range sentences {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		duplicateAt := -1
		for i, prev := range accepted {
			if m.similar(prev, candidate) {
				duplicateAt = i
				break
			}
		}

		if duplicateAt < 0 {
			accepted = append(accepted, candidate)
			continue
		}

		// Keep whichever of the pair reads as more complete
		if moreComplete(candidate, accepted[duplicateAt]) {
			accepted[duplicateAt] = candidate
		}
	}
	if accepted == nil {
		return []string{}
	}
	return accepted
}

// similar reports whether two sentences restate each other, per any of
// the three heuristics
func (m *Merger) similar(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return false
	}

	shorter, longer := a, b
	if len(rb) < len(ra) {
		shorter, longer = b, a
	}
	ratio := float64(len([]rune(shorter))) / float64(len([]rune(longer)))

	// Containment: the shorter sentence appears whole in the longer one
	if ratio >= m.cfg.ContainmentRatio && strings.Contains(longer, shorter) {
		return true
	}

	// Prefix containment: comparable lengths and the shorter sentence's
	// leading 70% appears in the longer one
	if ratio >= m.cfg.PrefixRatio {
		shortRunes := []rune(shorter)
		prefix := string(shortRunes[:int(float64(len(shortRunes))*0.7)])
		if prefix != "" && strings.Contains(longer, prefix) {
			return true
		}
	}

	// Cleaned containment: strip noisy leading fillers first
	cleanShort := stripNoisyPrefix(shorter)
	cleanLong := stripNoisyPrefix(longer)
	if cleanShort != "" && cleanLong != "" {
		cleanRatio := float64(len([]rune(cleanShort))) / float64(len([]rune(cleanLong)))
		if cleanRatio > 1 {
			cleanRatio = 1 / cleanRatio
		}
		if cleanRatio >= m.cfg.CleanedPrefixRatio &&
			(strings.Contains(cleanLong, cleanShort) || strings.Contains(cleanShort, cleanLong)) {
			return true
		}
	}

	return false
}

// moreComplete prefers the candidate that ends with sentence-final
// punctuation, lacks a noisy leading filler, or is simply longer
func moreComplete(candidate, incumbent string) bool {
	candFinal := endsWithSentencePunct(candidate)
	incFinal := endsWithSentencePunct(incumbent)
	if candFinal != incFinal {
		return candFinal
	}

	candNoisy := stripNoisyPrefix(candidate) != candidate
	incNoisy := stripNoisyPrefix(incumbent) != incumbent
	if candNoisy != incNoisy {
		return !candNoisy
	}

	return len([]rune(candidate)) > len([]rune(incumbent))
}

func endsWithSentencePunct(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return strings.ContainsRune(sentenceFinalPunct, runes[len(runes)-1])
}

func stripNoisyPrefix(s string) string {
	for _, token := range noisyLeadingTokens {
		if strings.HasPrefix(s, token) {
			return strings.TrimPrefix(s, token)
		}
	}
	return s
}
