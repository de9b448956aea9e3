package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Errorf("missing subscription key header")
		}
		if r.URL.Query().Get("format") != "detailed" {
			t.Errorf("expected detailed format, got %q", r.URL.Query().Get("format"))
		}
		if r.URL.Query().Get("wordLevelTimestamps") != "true" {
			t.Errorf("word level timestamps not requested")
		}
		if r.URL.Query().Get("language") != "zh-CN" {
			t.Errorf("expected language zh-CN, got %q", r.URL.Query().Get("language"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"RecognitionStatus":"Success","DisplayText":"你好。","NBest":[{"Confidence":0.93,"Display":"你好。","Words":[{"Word":"你","Offset":1000000,"Duration":2000000,"Confidence":0.9}]}]}`))
	}))
	defer server.Close()

	client := &Client{
		endpoint: server.URL,
		key:      "test-key",
		language: "zh-CN",
		client:   &http.Client{Timeout: 5 * time.Second},
	}

	events, err := client.Recognize(context.Background(), []byte("RIFF...."))
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].RecognitionStatus != StatusSuccess {
		t.Fatalf("status %q", events[0].RecognitionStatus)
	}

	best, ok := events[0].Best()
	if !ok {
		t.Fatalf("expected a best hypothesis")
	}
	if best.Display != "你好。" || len(best.Words) != 1 {
		t.Fatalf("hypothesis mismatch: %+v", best)
	}
	if best.Words[0].Offset != 1000000 {
		t.Fatalf("word offset %d", best.Words[0].Offset)
	}
}

func TestRecognize_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid subscription key"}`))
	}))
	defer server.Close()

	client := &Client{
		endpoint: server.URL,
		key:      "bad-key",
		language: "zh-CN",
		client:   &http.Client{Timeout: 5 * time.Second},
	}

	if _, err := client.Recognize(context.Background(), nil); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestParseEvents_MultiLine(t *testing.T) {
	body := []byte(`{"RecognitionStatus":"Success","DisplayText":"第一句。"}

{"RecognitionStatus":"Success","DisplayText":"第二句。"}
{"RecognitionStatus":"NoMatch"}
`)

	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].DisplayText != "第二句。" {
		t.Fatalf("event text %q", events[1].DisplayText)
	}
	if events[2].RecognitionStatus != StatusNoMatch {
		t.Fatalf("event status %q", events[2].RecognitionStatus)
	}
}

func TestParseEvents_Malformed(t *testing.T) {
	if _, err := ParseEvents([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestBest_PicksHighestConfidence(t *testing.T) {
	result := RecognitionResult{
		NBest: []NBest{
			{Confidence: 0.4, Display: "low"},
			{Confidence: 0.9, Display: "high"},
			{Confidence: 0.7, Display: "mid"},
		},
	}
	best, ok := result.Best()
	if !ok || best.Display != "high" {
		t.Fatalf("best hypothesis %+v ok=%v", best, ok)
	}
}

func TestIsConfigured(t *testing.T) {
	if (&Client{}).IsConfigured() {
		t.Fatalf("empty key must not report configured")
	}
	if !(&Client{key: "k"}).IsConfigured() {
		t.Fatalf("client with key must report configured")
	}
}
