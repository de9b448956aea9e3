package media

import (
	"go.uber.org/zap"

	"github.com/harulab/interp-practice/pkg/config"
)

// Toolkit wraps the ffmpeg and ffprobe binaries for audio analysis and
// chunk transcoding
type Toolkit struct {
	ffmpeg  string
	ffprobe string
	logger  *zap.Logger
}

// NewToolkit creates a media toolkit
func NewToolkit(cfg *config.ExtractorConfig, logger *zap.Logger) *Toolkit {
	return &Toolkit{
		ffmpeg:  cfg.FFmpeg,
		ffprobe: cfg.FFprobe,
		logger:  logger,
	}
}
