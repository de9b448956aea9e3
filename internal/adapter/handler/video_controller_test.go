package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/internal/usecase/pipeline"
	pkgvalidator "github.com/harulab/interp-practice/pkg/validator"
)

// fakeService scripts pipeline responses for controller tests
type fakeService struct {
	session *entities.ProcessingSession
	result  *entities.TranscriptResult
	check   *pipeline.CaptionAvailability
	err     error
}

func (f *fakeService) StartProcessing(ctx context.Context, sourceURL string) (*entities.ProcessingSession, error) {
	return f.session, f.err
}

func (f *fakeService) GetStatus(ctx context.Context, id uuid.UUID) (*entities.ProcessingSession, error) {
	return f.session, f.err
}

func (f *fakeService) GetResult(ctx context.Context, id uuid.UUID) (*entities.TranscriptResult, error) {
	return f.result, f.err
}

func (f *fakeService) CheckCaptions(ctx context.Context, sourceURL string) (*pipeline.CaptionAvailability, error) {
	return f.check, f.err
}

func (f *fakeService) History(ctx context.Context, limit int) ([]*entities.TranscriptRecord, error) {
	return []*entities.TranscriptRecord{}, f.err
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = pkgvalidator.New()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestProcessVideo(t *testing.T) {
	session := entities.NewProcessingSession("https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
	vc := NewVideoController(&fakeService{session: session}, nil)

	c, rec := newTestContext(http.MethodPost, "/v1/videos/process", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if err := vc.ProcessVideo(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			SessionID string `json:"sessionId"`
			SourceID  string `json:"sourceId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if resp.Data.SessionID != session.ID.String() || resp.Data.SourceID != "dQw4w9WgXcQ" {
		t.Fatalf("response data: %+v", resp.Data)
	}
}

func TestProcessVideo_MissingURL(t *testing.T) {
	vc := NewVideoController(&fakeService{}, nil)

	c, rec := newTestContext(http.MethodPost, "/v1/videos/process", `{}`)
	if err := vc.ProcessVideo(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", rec.Code)
	}
}

func TestProcessVideo_ServiceError(t *testing.T) {
	vc := NewVideoController(&fakeService{err: apperrors.ErrInvalidSourceURL("https://example.com/x")}, nil)

	c, rec := newTestContext(http.MethodPost, "/v1/videos/process", `{"url":"https://example.com/x"}`)
	if err := vc.ProcessVideo(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetStatus_InvalidID(t *testing.T) {
	vc := NewVideoController(&fakeService{}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/videos/status/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	if err := vc.GetStatus(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad uuid, got %d", rec.Code)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	id := uuid.New()
	vc := NewVideoController(&fakeService{err: apperrors.ErrSessionNotFound(id.String())}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/videos/status/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	if err := vc.GetStatus(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetResult_NotReady(t *testing.T) {
	id := uuid.New()
	vc := NewVideoController(&fakeService{err: apperrors.ErrResultNotReady(id.String(), "started")}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/videos/result/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	if err := vc.GetResult(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while processing, got %d", rec.Code)
	}
}

func TestGetResult(t *testing.T) {
	id := uuid.New()
	result := &entities.TranscriptResult{
		SourceID: "dQw4w9WgXcQ",
		Language: "zh-CN",
		Source:   entities.SourceRecognition,
		FullText: "你好。",
		Segments: []entities.Segment{entities.NewSegment(1, "你好。", 0, 2)},
	}
	vc := NewVideoController(&fakeService{result: result}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/videos/result/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	if err := vc.GetResult(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"fullText":"你好。"`) {
		t.Fatalf("transcript missing from body: %s", rec.Body.String())
	}
}

func TestCheckCaptions(t *testing.T) {
	vc := NewVideoController(&fakeService{check: &pipeline.CaptionAvailability{
		SourceID:  "dQw4w9WgXcQ",
		Available: true,
		Language:  "zh-CN",
	}}, nil)

	c, rec := newTestContext(http.MethodPost, "/v1/videos/captions/check", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if err := vc.CheckCaptions(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"available":true`) {
		t.Fatalf("availability missing from body: %s", rec.Body.String())
	}
}

func TestHistory_Empty(t *testing.T) {
	vc := NewVideoController(&fakeService{}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/videos/history", "")
	if err := vc.History(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty data array, body %s", rec.Body.String())
	}
}
