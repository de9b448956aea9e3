// Package speech wraps the Azure Speech short-audio REST API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harulab/interp-practice/pkg/config"
)

// RecognitionStatus values returned by the backend
const (
	StatusSuccess      = "Success"
	StatusNoMatch      = "NoMatch"
	StatusInitialError = "InitialSilenceTimeout"
)

// Word is one recognized word with backend-native 100ns tick timing
type Word struct {
	Word       string  `json:"Word"`
	Offset     int64   `json:"Offset"`
	Duration   int64   `json:"Duration"`
	Confidence float64 `json:"Confidence"`
}

// NBest is one recognition hypothesis
type NBest struct {
	Confidence float64 `json:"Confidence"`
	Lexical    string  `json:"Lexical"`
	Display    string  `json:"Display"`
	Words      []Word  `json:"Words"`
}

// RecognitionResult is one recognition event from the backend
type RecognitionResult struct {
	RecognitionStatus string  `json:"RecognitionStatus"`
	DisplayText       string  `json:"DisplayText"`
	Offset            int64   `json:"Offset"`
	Duration          int64   `json:"Duration"`
	NBest             []NBest `json:"NBest"`
}

// Best returns the highest-confidence hypothesis, if any
func (r *RecognitionResult) Best() (NBest, bool) {
	if len(r.NBest) == 0 {
		return NBest{}, false
	}
	best := r.NBest[0]
	for _, candidate := range r.NBest[1:] {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}
	return best, true
}

// Client calls the Azure Speech short-audio endpoint
type Client struct {
	endpoint string
	key      string
	language string
	client   *http.Client
}

// NewClient creates a speech client using the provided config
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint: cfg.GetSpeechEndpoint(),
		key:      cfg.Speech.SubscriptionKey,
		language: cfg.Speech.Language,
		client:   &http.Client{Timeout: cfg.Speech.RequestTimeout + 10*time.Second},
	}
}

// IsConfigured reports whether a subscription key is present
func (c *Client) IsConfigured() bool {
	return c.key != ""
}

// Recognize submits one chunk of mono 16kHz PCM WAV audio and returns
// every recognition event the backend emitted, in emission order. The
// short-audio endpoint usually returns a single JSON object, but long
// inputs can produce newline-delimited events.
func (c *Client) Recognize(ctx context.Context, wav []byte) ([]RecognitionResult, error) {
	query := url.Values{}
	query.Set("language", c.language)
	query.Set("format", "detailed")
	query.Set("wordLevelTimestamps", "true")

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"?"+query.Encode(), bytes.NewReader(wav))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("speech backend returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return ParseEvents(body)
}

// ParseEvents decodes a response body holding one or more
// newline-delimited recognition events
func ParseEvents(body []byte) ([]RecognitionResult, error) {
	var events []RecognitionResult

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var event RecognitionResult
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, fmt.Errorf("failed to parse recognition event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
