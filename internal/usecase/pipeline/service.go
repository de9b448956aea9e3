package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/internal/domain/repositories"
	"github.com/harulab/interp-practice/internal/infrastructure/external/extractor"
	"github.com/harulab/interp-practice/internal/infrastructure/external/media"
	"github.com/harulab/interp-practice/internal/infrastructure/storage"
	"github.com/harulab/interp-practice/pkg/config"
	"github.com/harulab/interp-practice/pkg/jobcontext"
)

// Progress checkpoints for the session step ladder
const (
	progressInitializing = 0
	progressDownloading  = 10
	progressTranscribing = 40
	progressProcessing   = 85
	progressCompleted    = 100
)

// SourceExtractor is the acquisition collaborator surface the pipeline
// needs. Satisfied by *extractor.Client.
type SourceExtractor interface {
	ProbeInfo(ctx context.Context, sourceURL string) (*extractor.VideoInfo, error)
	ExtractAudioURL(ctx context.Context, sourceURL string) (string, error)
	FetchAudio(ctx context.Context, audioURL, sourceID string) (string, error)
	DownloadCaptions(ctx context.Context, track extractor.CaptionTrack, sourceID string) (string, error)
}

// MediaToolkit is the ffmpeg/ffprobe surface the pipeline needs.
// Satisfied by *media.Toolkit.
type MediaToolkit interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	DetectSilence(ctx context.Context, path string, opts media.SilenceOptions) []float64
	CutChunk(ctx context.Context, sourcePath string, window entities.ChunkWindow) ([]byte, error)
}

// CaptionAvailability is the answer to a caption pre-check
type CaptionAvailability struct {
	SourceID        string   `json:"sourceId"`
	Title           string   `json:"title,omitempty"`
	DurationSeconds float64  `json:"durationSeconds"`
	Available       bool     `json:"available"`
	Language        string   `json:"language"`
	ManualLanguages []string `json:"manualLanguages"`
	AutoLanguages   []string `json:"autoLanguages"`
}

// Service defines the video processing operations
type Service interface {
	StartProcessing(ctx context.Context, sourceURL string) (*entities.ProcessingSession, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error)
	GetResult(ctx context.Context, id uuid.UUID) (*entities.TranscriptResult, error)
	CheckCaptions(ctx context.Context, sourceURL string) (*CaptionAvailability, error)
	History(ctx context.Context, limit int) ([]*entities.TranscriptRecord, error)
}

type pipelineService struct {
	sessions    repositories.SessionStore
	transcripts repositories.TranscriptRepository
	extractor   SourceExtractor
	media       MediaToolkit
	recognizer  *Recognizer
	merger      *Merger
	segmenter   *Segmenter
	artifacts   *storage.ArtifactStore
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService constructs the processing pipeline service. The
// transcript repository and artifact store may be nil when persistence
// or object storage is disabled.
func NewService(
	sessions repositories.SessionStore,
	transcripts repositories.TranscriptRepository,
	sourceExtractor SourceExtractor,
	mediaToolkit MediaToolkit,
	speechClient SpeechRecognizer,
	artifacts *storage.ArtifactStore,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &pipelineService{
		sessions:    sessions,
		transcripts: transcripts,
		extractor:   sourceExtractor,
		media:       mediaToolkit,
		recognizer:  NewRecognizer(speechClient, cfg.Pipeline, logger),
		merger:      NewMerger(cfg.Pipeline, logger),
		segmenter:   NewSegmenter(logger),
		artifacts:   artifacts,
		cfg:         cfg,
		logger:      logger,
	}
}

// StartProcessing validates the source, creates a session and launches
// the processing job. The session ID is returned immediately; clients
// poll GetStatus for progress.
func (s *pipelineService) StartProcessing(ctx context.Context, sourceURL string) (*entities.ProcessingSession, error) {
	sourceID, ok := extractor.ParseSourceID(sourceURL)
	if !ok {
		return nil, apperrors.ErrInvalidSourceURL(sourceURL)
	}

	session := entities.NewProcessingSession(sourceURL, sourceID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("🔄 Processing started",
			zap.String("session_id", session.ID.String()),
			zap.String("source_id", sourceID))
	}

	go s.runJob(session.ID, sourceURL, sourceID)

	return session, nil
}

// GetStatus returns the current session state without the full result
// payload
func (s *pipelineService) GetStatus(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trimmed := *session
	trimmed.Result = nil
	return &trimmed, nil
}

// GetResult returns the full transcript once the session completed.
// Sessions expire from the store before their transcript does, so a
// missing session falls back to the persisted record.
func (s *pipelineService) GetResult(ctx context.Context, id uuid.UUID) (*entities.TranscriptResult, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		if s.transcripts != nil {
			record, findErr := s.transcripts.FindBySessionID(ctx, id)
			if findErr == nil && record != nil {
				return record.ToResult(), nil
			}
		}
		return nil, err
	}
	if session.Status != entities.StatusCompleted || session.Result == nil {
		return nil, apperrors.ErrResultNotReady(id.String(), string(session.Status))
	}
	return session.Result, nil
}

// CheckCaptions probes the source and reports whether manually
// authored captions exist for the configured language
func (s *pipelineService) CheckCaptions(ctx context.Context, sourceURL string) (*CaptionAvailability, error) {
	sourceID, ok := extractor.ParseSourceID(sourceURL)
	if !ok {
		return nil, apperrors.ErrInvalidSourceURL(sourceURL)
	}

	info, err := s.extractor.ProbeInfo(ctx, sourceURL)
	if err != nil {
		return nil, apperrors.ErrCaptionCheckFailed(err)
	}

	return &CaptionAvailability{
		SourceID:        sourceID,
		Title:           info.Title,
		DurationSeconds: info.Duration,
		Available:       info.HasCaptions(s.cfg.Speech.Language),
		Language:        s.cfg.Speech.Language,
		ManualLanguages: info.CaptionLanguages(),
		AutoLanguages:   info.AutoCaptionLanguages(),
	}, nil
}

// History lists recently persisted transcripts
func (s *pipelineService) History(ctx context.Context, limit int) ([]*entities.TranscriptRecord, error) {
	if s.transcripts == nil {
		return []*entities.TranscriptRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.transcripts.ListRecent(ctx, limit)
}

// runJob executes the full pipeline for one session. All chunk-local
// failures are absorbed; only total acquisition failure and a missing
// speech backend become terminal session errors.
func (s *pipelineService) runJob(sessionID uuid.UUID, sourceURL, sourceID string) {
	ctx, cancel := jobcontext.JobBegin(context.Background(), sessionID, "video_processing")
	defer cancel()

	// The pipeline handles its own degradation; a failed job stays
	// failed rather than rerunning recognition from scratch
	ctx = jobcontext.SetMaxRetries(ctx, 1)

	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		return s.process(ctx, sessionID, sourceURL, sourceID)
	})
	if err != nil {
		s.failSession(sessionID, err)
	}
}

func (s *pipelineService) process(ctx context.Context, sessionID uuid.UUID, sourceURL, sourceID string) error {
	s.updateProgress(ctx, sessionID, entities.StepInitializing, progressInitializing, "Probing source")

	// A transcript for this source may already be persisted from an
	// earlier session; reuse it instead of transcribing again
	if cached := s.findCachedTranscript(ctx, sourceID); cached != nil {
		return s.completeSession(ctx, sessionID, sourceURL, cached, false)
	}

	info, err := s.extractor.ProbeInfo(ctx, sourceURL)
	if err != nil {
		return apperrors.ErrExtractionFailed(err)
	}

	// Caption shortcut: provider captions skip recognition entirely
	if result := s.tryCaptionShortcut(ctx, info, sourceID); result != nil {
		return s.completeSession(ctx, sessionID, sourceURL, result, true)
	}

	if !s.recognizer.client.IsConfigured() {
		return apperrors.ErrSpeechNotConfigured()
	}

	s.updateProgress(ctx, sessionID, entities.StepDownloading, progressDownloading, "Downloading audio")

	audioURL, err := s.extractor.ExtractAudioURL(ctx, sourceURL)
	if err != nil {
		return apperrors.ErrExtractionFailed(err)
	}
	audioPath, err := s.extractor.FetchAudio(ctx, audioURL, sourceID)
	if err != nil {
		return apperrors.ErrExtractionFailed(err)
	}
	defer os.Remove(audioPath)

	totalDuration := info.Duration
	if totalDuration <= 0 {
		totalDuration, err = s.media.ProbeDuration(ctx, audioPath)
		if err != nil {
			return apperrors.ErrProcessingFailed(fmt.Errorf("could not determine duration: %w", err))
		}
	}
	effectiveDuration := totalDuration
	if s.cfg.Pipeline.MaxPreviewSec > 0 {
		effectiveDuration = math.Min(totalDuration, s.cfg.Pipeline.MaxPreviewSec)
	}

	windows := s.planWindows(ctx, audioPath, effectiveDuration)

	s.updateProgress(ctx, sessionID, entities.StepTranscribing, progressTranscribing, "Transcribing audio")
	results := s.transcribeChunks(ctx, sessionID, audioPath, windows)

	s.updateProgress(ctx, sessionID, entities.StepProcessing, progressProcessing, "Assembling transcript")

	merged := s.merger.Merge(results, effectiveDuration)
	if strings.TrimSpace(merged.Text) == "" {
		return apperrors.ErrProcessingFailed(fmt.Errorf("recognition produced no usable text"))
	}
	segments := s.segmenter.Segment(merged.Text, effectiveDuration)

	result := &entities.TranscriptResult{
		SourceID:        sourceID,
		Title:           info.Title,
		Language:        s.cfg.Speech.Language,
		Source:          entities.SourceRecognition,
		DurationSeconds: effectiveDuration,
		FullText:        merged.Text,
		Segments:        segments,
		Words:           merged.Words,
	}

	return s.completeSession(ctx, sessionID, sourceURL, result, true)
}

// findCachedTranscript looks up a previously persisted transcript for
// the same source video. Lookup failures just mean a fresh run.
func (s *pipelineService) findCachedTranscript(ctx context.Context, sourceID string) *entities.TranscriptResult {
	if s.transcripts == nil {
		return nil
	}
	record, err := s.transcripts.FindBySourceID(ctx, sourceID)
	if err != nil || record == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("✅ Reusing persisted transcript",
			zap.String("source_id", sourceID))
	}
	return record.ToResult()
}

// planWindows runs boundary detection and chunk planning. Detector
// failure degrades to fixed windows, never fails the job.
func (s *pipelineService) planWindows(ctx context.Context, audioPath string, duration float64) []entities.ChunkWindow {
	opts := media.SilenceOptions{
		NoiseDB:        s.cfg.Pipeline.SilenceNoiseDB,
		MinDurationSec: s.cfg.Pipeline.SilenceMinDurationSec,
		Tier:           media.TierEnhanced,
	}
	boundaries := s.media.DetectSilence(ctx, audioPath, opts)
	if len(boundaries) == 0 {
		opts.Tier = media.TierBaseline
		boundaries = s.media.DetectSilence(ctx, audioPath, opts)
	}
	return PlanChunks(duration, boundaries, s.cfg.Pipeline)
}

// transcribeChunks processes windows sequentially: each chunk is
// transcoded, recognized and awaited before the next begins. A failed
// chunk contributes nothing and the loop continues.
func (s *pipelineService) transcribeChunks(ctx context.Context, sessionID uuid.UUID, audioPath string, windows []entities.ChunkWindow) []*entities.ChunkResult {
	results := make([]*entities.ChunkResult, 0, len(windows))
	span := progressProcessing - progressTranscribing

	for i, window := range windows {
		wav, err := s.media.CutChunk(ctx, audioPath, window)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("❌ Chunk transcode failed, skipping",
					zap.Int("chunk", i),
					zap.Error(err))
			}
			results = append(results, nil)
			continue
		}

		result, err := s.recognizer.RecognizeChunk(ctx, wav, i, window)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("❌ Chunk recognition failed, skipping",
					zap.Int("chunk", i),
					zap.Error(err))
			}
			results = append(results, nil)
			continue
		}
		results = append(results, result)

		progress := progressTranscribing + span*(i+1)/len(windows)
		s.updateProgress(ctx, sessionID, entities.StepTranscribing, progress,
			fmt.Sprintf("Transcribed chunk %d/%d", i+1, len(windows)))
	}

	return results
}

// tryCaptionShortcut downloads and parses provider captions. Any
// failure or zero segments returns nil so the caller runs the full
// pipeline. The temporary caption file is removed regardless.
func (s *pipelineService) tryCaptionShortcut(ctx context.Context, info *extractor.VideoInfo, sourceID string) *entities.TranscriptResult {
	track, ok := info.CaptionTrackFor(s.cfg.Speech.Language)
	if !ok {
		return nil
	}

	path, err := s.extractor.DownloadCaptions(ctx, track, sourceID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("🔄 Caption download failed, running full pipeline",
				zap.Error(err))
		}
		return nil
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	segments, err := ParseCaptions(data, track.Ext)
	if err != nil || len(segments) == 0 {
		if s.logger != nil {
			s.logger.Warn("🔄 Captions unusable, running full pipeline",
				zap.String("format", track.Ext),
				zap.Error(err))
		}
		return nil
	}

	var fullText strings.Builder
	for _, seg := range segments {
		fullText.WriteString(seg.Text)
	}

	duration := info.Duration
	if duration <= 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].EndSeconds
	}

	if s.logger != nil {
		s.logger.Info("✅ Caption shortcut used",
			zap.String("source_id", sourceID),
			zap.Int("segments", len(segments)))
	}

	return &entities.TranscriptResult{
		SourceID:        sourceID,
		Title:           info.Title,
		Language:        s.cfg.Speech.Language,
		Source:          entities.SourceCaptions,
		DurationSeconds: duration,
		FullText:        fullText.String(),
		Segments:        segments,
	}
}

// completeSession renders artifacts, persists the transcript and marks
// the session completed. Artifact and persistence failures are logged
// but don't fail the job, the transcript itself is already usable.
// persist is false when the result was pulled from an earlier record,
// to keep history from filling with duplicates.
func (s *pipelineService) completeSession(ctx context.Context, sessionID uuid.UUID, sourceURL string, result *entities.TranscriptResult, persist bool) error {
	artifactURLs := s.uploadArtifacts(ctx, sessionID, result)

	if persist && s.transcripts != nil {
		record := entities.NewTranscriptRecord(sessionID, sourceURL, result, artifactURLs)
		if err := s.transcripts.Create(ctx, record); err != nil {
			if s.logger != nil {
				s.logger.Error("❌ Failed to persist transcript",
					zap.String("session_id", sessionID.String()),
					zap.Error(err))
			}
		}
	}

	status := entities.StatusCompleted
	step := entities.StepCompleted
	progress := progressCompleted
	message := "Transcript ready"
	err := s.sessions.Update(ctx, sessionID, repositories.SessionUpdate{
		Status:   &status,
		Step:     &step,
		Progress: &progress,
		Message:  &message,
		Result:   result,
		Artifact: artifactURLs,
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("✅ Processing completed",
			zap.String("session_id", sessionID.String()),
			zap.String("source", string(result.Source)),
			zap.Int("segments", len(result.Segments)))
	}
	return nil
}

// uploadArtifacts renders SRT, VTT and JSON artifacts and uploads them
// to object storage, returning kind -> URL
func (s *pipelineService) uploadArtifacts(ctx context.Context, sessionID uuid.UUID, result *entities.TranscriptResult) map[string]string {
	if s.artifacts == nil {
		return nil
	}

	renders := map[string]string{
		"srt": RenderSRT(result.Segments),
		"vtt": RenderVTT(result.Segments),
	}
	if jsonDoc, err := RenderJSON(result); err == nil {
		renders["json"] = jsonDoc
	}

	urls := make(map[string]string, len(renders))
	for kind, content := range renders {
		objectName := storage.ArtifactObjectName(result.SourceID, sessionID.String(), kind)
		url, err := s.artifacts.UploadArtifact(ctx, objectName, content, kind)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("❌ Artifact upload failed",
					zap.String("kind", kind),
					zap.Error(err))
			}
			continue
		}
		urls[kind] = url
	}
	return urls
}

// failSession marks the session as terminally failed
func (s *pipelineService) failSession(sessionID uuid.UUID, cause error) {
	if s.logger != nil {
		s.logger.Error("❌ Processing failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(cause))
	}

	status := entities.StatusError
	step := entities.StepError
	message := "Processing failed"
	errText := cause.Error()
	_ = s.sessions.Update(context.Background(), sessionID, repositories.SessionUpdate{
		Status:  &status,
		Step:    &step,
		Message: &message,
		Error:   &errText,
	})
}

// updateProgress applies a progress checkpoint, logging but not
// propagating store failures
func (s *pipelineService) updateProgress(ctx context.Context, sessionID uuid.UUID, step entities.ProcessingStep, progress int, message string) {
	err := s.sessions.Update(ctx, sessionID, repositories.SessionUpdate{
		Step:     &step,
		Progress: &progress,
		Message:  &message,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("Failed to update session progress",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	}
}
