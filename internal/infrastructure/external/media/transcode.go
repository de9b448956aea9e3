package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

// CutChunk renders one chunk window of the source audio as mono 16kHz
// 16-bit PCM WAV and returns the bytes. Timestamps are reset to zero so
// the recognition backend sees each chunk as independently zero-based.
func (t *Toolkit) CutChunk(ctx context.Context, sourcePath string, window entities.ChunkWindow) ([]byte, error) {
	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("chunk_%d.wav", time.Now().UnixNano()))
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-y",
		"-ss", formatSeconds(window.Start),
		"-t", formatSeconds(window.Duration()),
		"-i", sourcePath,
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-avoid_negative_ts", "make_zero",
		"-fflags", "+genpts",
		"-f", "wav",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg chunk transcode: %s: %w", stderr.String(), err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcoded chunk: %w", err)
	}

	if t.logger != nil {
		t.logger.Debug("Chunk transcoded",
			zap.Float64("start", window.Start),
			zap.Float64("end", window.End),
			zap.Int("bytes", len(data)))
	}
	return data, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
