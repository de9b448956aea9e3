package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/harulab/interp-practice/pkg/config"
)

// ErrUnavailable marks sources the extractor could not open at all
// (region locked, deleted, members only). Callers treat it as a
// terminal condition, not a transient failure.
var ErrUnavailable = errors.New("source unavailable")

// playerClients are tried in order when the default extraction path is
// blocked. YouTube rotates which clients get throttled, so one of the
// alternates usually works.
var playerClients = []string{"", "android", "ios", "tv_embedded", "web_embedded"}

var sourceIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

// ParseSourceID extracts the 11-character video ID from a YouTube URL
// or a bare ID string
func ParseSourceID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, pattern := range sourceIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// VideoInfo is the metadata subset we need from a probe
type VideoInfo struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Duration          float64                   `json:"duration"`
	Subtitles         map[string][]CaptionTrack `json:"subtitles"`
	AutomaticCaptions map[string][]CaptionTrack `json:"automatic_captions"`
}

// CaptionTrack is one downloadable caption format for a language
type CaptionTrack struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// HasCaptions reports whether any manually authored caption track
// exists for the language (auto captions don't count, their quality is
// too uneven for interpretation practice)
func (v *VideoInfo) HasCaptions(language string) bool {
	for lang, tracks := range v.Subtitles {
		if len(tracks) == 0 {
			continue
		}
		if languageMatches(lang, language) {
			return true
		}
	}
	return false
}

// languageMatches compares BCP 47 tags on their primary subtag, so a
// zh-Hans track satisfies both zh and zh-CN. YouTube rarely labels
// tracks with the exact regional variant a caller asks for.
func languageMatches(trackLang, language string) bool {
	return primarySubtag(trackLang) == primarySubtag(language)
}

func primarySubtag(lang string) string {
	if i := strings.Index(lang, "-"); i >= 0 {
		return lang[:i]
	}
	return lang
}

// CaptionLanguages returns the sorted languages with at least one
// manually authored track
func (v *VideoInfo) CaptionLanguages() []string {
	return trackLanguages(v.Subtitles)
}

// AutoCaptionLanguages returns the sorted languages with at least one
// machine-generated track
func (v *VideoInfo) AutoCaptionLanguages() []string {
	return trackLanguages(v.AutomaticCaptions)
}

func trackLanguages(tracks map[string][]CaptionTrack) []string {
	languages := make([]string, 0, len(tracks))
	for lang, list := range tracks {
		if len(list) > 0 {
			languages = append(languages, lang)
		}
	}
	sort.Strings(languages)
	return languages
}

// CaptionTrackFor returns the best caption track for a language,
// preferring machine-readable formats. When no track matches the
// language it falls back to the first parseable track in any language,
// which still beats paying for recognition.
func (v *VideoInfo) CaptionTrackFor(language string) (CaptionTrack, bool) {
	preferred := []string{"srv3", "vtt", "srt", "json3"}

	var candidates []CaptionTrack
	for lang, tracks := range v.Subtitles {
		if languageMatches(lang, language) {
			candidates = append(candidates, tracks...)
		}
	}
	if len(candidates) == 0 {
		for _, lang := range trackLanguages(v.Subtitles) {
			candidates = append(candidates, v.Subtitles[lang]...)
		}
	}
	if len(candidates) == 0 {
		return CaptionTrack{}, false
	}

	for _, ext := range preferred {
		for _, track := range candidates {
			if track.Ext == ext {
				return track, true
			}
		}
	}
	return candidates[0], true
}

// Client drives yt-dlp for metadata probing and audio URL extraction
type Client struct {
	binary      string
	workDir     string
	probeExpiry time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new extractor client
func NewClient(cfg *config.ExtractorConfig, logger *zap.Logger) *Client {
	return &Client{
		binary:      cfg.Binary,
		workDir:     cfg.WorkDir,
		probeExpiry: cfg.ProbeExpiry,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		logger: logger,
	}
}

// ProbeInfo fetches video metadata without downloading media. It walks
// the player client fallback chain before giving up.
func (c *Client) ProbeInfo(ctx context.Context, sourceURL string) (*VideoInfo, error) {
	var lastErr error

	for _, client := range playerClients {
		args := []string{"--dump-json", "--skip-download", "--no-warnings"}
		if client != "" {
			args = append(args, "--extractor-args", "youtube:player_client="+client)
		}
		args = append(args, sourceURL)

		attemptCtx, cancel := context.WithTimeout(ctx, c.probeExpiry)
		out, err := c.run(attemptCtx, args...)
		cancel()

		if err != nil {
			lastErr = err
			if c.logger != nil {
				c.logger.Warn("🔄 Probe attempt failed, trying next player client",
					zap.String("player_client", client),
					zap.Error(err))
			}
			if isUnavailable(err) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			continue
		}

		var info VideoInfo
		if err := json.Unmarshal(out, &info); err != nil {
			lastErr = fmt.Errorf("failed to parse probe output: %w", err)
			continue
		}

		if c.logger != nil {
			c.logger.Info("✅ Probed source",
				zap.String("source_id", info.ID),
				zap.Float64("duration", info.Duration),
				zap.String("player_client", client))
		}
		return &info, nil
	}

	return nil, fmt.Errorf("all extraction profiles failed: %w", lastErr)
}

// ExtractAudioURL resolves a direct URL for the best audio-only stream
func (c *Client) ExtractAudioURL(ctx context.Context, sourceURL string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.probeExpiry)
	defer cancel()

	out, err := c.run(attemptCtx, "--get-url", "-f", "bestaudio", "--no-warnings", sourceURL)
	if err != nil {
		if isUnavailable(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("failed to extract audio url: %w", err)
	}

	audioURL := strings.TrimSpace(string(out))
	if audioURL == "" {
		return "", fmt.Errorf("extractor returned empty audio url")
	}
	if _, err := url.Parse(audioURL); err != nil {
		return "", fmt.Errorf("extractor returned invalid audio url: %w", err)
	}

	return audioURL, nil
}

// FetchAudio downloads the resolved audio stream to a file in the work
// directory and returns its path. Transient download failures are
// retried with exponential backoff, stream URLs expire so giving up
// too early wastes the extraction. Caller removes the file when done.
func (c *Client) FetchAudio(ctx context.Context, audioURL, sourceID string) (string, error) {
	path := filepath.Join(c.workDir, fmt.Sprintf("audio_%s_%d", sourceID, time.Now().UnixNano()))

	operation := func() error {
		return c.downloadTo(ctx, audioURL, path)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("✅ Audio downloaded",
			zap.String("source_id", sourceID),
			zap.String("path", path))
	}
	return path, nil
}

// downloadTo fetches a URL into a file, treating client errors as
// permanent so backoff stops immediately
func (c *Client) downloadTo(ctx context.Context, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return backoff.Permanent(err)
	}

	_, err = io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil {
		os.Remove(path)
		return err
	}
	if closeErr != nil {
		os.Remove(path)
		return closeErr
	}
	return nil
}

// DownloadCaptions fetches a caption track to a predictably named file
// in the work directory and returns its path
func (c *Client) DownloadCaptions(ctx context.Context, track CaptionTrack, sourceID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create caption request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption download returned status %d", resp.StatusCode)
	}

	path := filepath.Join(c.workDir, fmt.Sprintf("captions_%s.%s", sourceID, track.Ext))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create caption file: %w", err)
	}

	_, err = io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write caption file: %w", err)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close caption file: %w", closeErr)
	}

	return path, nil
}

// run executes yt-dlp and returns stdout, folding stderr into errors
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp: %s", msg)
	}

	return stdout.Bytes(), nil
}

// isUnavailable matches extractor errors that no fallback can fix
func isUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "video unavailable") ||
		strings.Contains(msg, "private video") ||
		strings.Contains(msg, "has been removed") ||
		strings.Contains(msg, "members-only") ||
		strings.Contains(msg, "available in your country")
}
