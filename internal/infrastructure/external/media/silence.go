package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SilenceTier selects the detection sensitivity
type SilenceTier int

const (
	// TierBaseline runs silencedetect on the raw signal
	TierBaseline SilenceTier = iota
	// TierEnhanced band-passes the signal (80Hz to 8kHz) first so hum
	// and hiss don't mask real pauses
	TierEnhanced
)

// SilenceOptions tunes the detector
type SilenceOptions struct {
	NoiseDB        float64
	MinDurationSec float64
	Tier           SilenceTier
}

// DetectSilence returns an ascending, deduplicated list of timestamps
// (seconds) where silence intervals begin or end. Returns an empty list
// on analysis failure so callers can fall back to fixed windows.
func (t *Toolkit) DetectSilence(ctx context.Context, path string, opts SilenceOptions) []float64 {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", opts.NoiseDB, opts.MinDurationSec)
	if opts.Tier == TierEnhanced {
		filter = "highpass=f=80,lowpass=f=8000," + filter
	}

	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	)

	// silencedetect reports on stderr
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if t.logger != nil {
			t.logger.Warn("🔄 Silence detection failed, continuing without boundaries",
				zap.Error(err))
		}
		return []float64{}
	}

	boundaries := parseSilenceBoundaries(stderr.String())
	if t.logger != nil {
		t.logger.Info("✅ Silence detection complete",
			zap.Int("boundaries", len(boundaries)),
			zap.String("filter", filter))
	}
	return boundaries
}

// parseSilenceBoundaries extracts silence_start and silence_end values
// from ffmpeg silencedetect stderr output
func parseSilenceBoundaries(output string) []float64 {
	var values []float64

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "silencedetect") {
			continue
		}
		for _, marker := range []string{"silence_start:", "silence_end:"} {
			idx := strings.Index(line, marker)
			if idx < 0 {
				continue
			}
			rest := strings.TrimSpace(line[idx+len(marker):])
			// silence_end lines carry a trailing "| silence_duration: X"
			if cut := strings.IndexAny(rest, " |"); cut > 0 {
				rest = rest[:cut]
			}
			v, err := strconv.ParseFloat(rest, 64)
			if err != nil || v < 0 {
				continue
			}
			values = append(values, v)
		}
	}

	sort.Float64s(values)

	// Deduplicate near-identical timestamps
	deduped := make([]float64, 0, len(values))
	for _, v := range values {
		if len(deduped) > 0 && v-deduped[len(deduped)-1] < 0.01 {
			continue
		}
		deduped = append(deduped, v)
	}
	return deduped
}
