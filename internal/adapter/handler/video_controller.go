package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/harulab/interp-practice/errors"
	"github.com/harulab/interp-practice/internal/adapter/dto/video"
	"github.com/harulab/interp-practice/internal/usecase/pipeline"
)

// VideoController handles video processing API endpoints
type VideoController struct {
	svc    pipeline.Service
	logger *zap.Logger
}

// NewVideoController creates a new video controller
func NewVideoController(svc pipeline.Service, logger *zap.Logger) *VideoController {
	return &VideoController{svc: svc, logger: logger}
}

// ProcessVideo submits a video for transcription
// @Summary      Start video processing
// @Description  Validates the source URL, creates a processing session and starts the transcription pipeline
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        request  body      video.ProcessRequest    true  "Source video URL"
// @Success      200      {object}  map[string]interface{}  "Session created"
// @Failure      400      {object}  map[string]interface{}  "Invalid or unsupported URL"
// @Failure      500      {object}  map[string]interface{}  "Failed to start processing"
// @Router       /videos/process [post]
func (vc *VideoController) ProcessVideo(c echo.Context) error {
	var req video.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidSourceURL(req.URL))
	}

	session, err := vc.svc.StartProcessing(c.Request().Context(), req.URL)
	if err != nil {
		return HandleError(vc.logger, c, err)
	}

	return HandleSuccess(vc.logger, c, video.ProcessResponse{
		SessionID: session.ID.String(),
		SourceID:  session.SourceID,
		Status:    string(session.Status),
	})
}

// GetStatus returns the current state of a processing session
// @Summary      Get processing status
// @Description  Returns progress, step and message for a session, without the transcript payload
// @Tags         Videos
// @Produce      json
// @Param        id   path      string                  true  "Session ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Session status"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /videos/status/{id} [get]
func (vc *VideoController) GetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidArgument("invalid session id"))
	}

	session, err := vc.svc.GetStatus(c.Request().Context(), id)
	if err != nil {
		return HandleError(vc.logger, c, err)
	}

	return HandleSuccess(vc.logger, c, video.NewStatusResponse(session))
}

// GetResult returns the completed transcript for a session
// @Summary      Get transcript result
// @Description  Returns the full transcript once the session has completed
// @Tags         Videos
// @Produce      json
// @Param        id   path      string                  true  "Session ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Transcript result"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Failure      409  {object}  map[string]interface{}  "Result not ready"
// @Router       /videos/result/{id} [get]
func (vc *VideoController) GetResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidArgument("invalid session id"))
	}

	result, err := vc.svc.GetResult(c.Request().Context(), id)
	if err != nil {
		return HandleError(vc.logger, c, err)
	}

	return HandleSuccess(vc.logger, c, result)
}

// CheckCaptions reports whether captions exist for a source
// @Summary      Check caption availability
// @Description  Probes the source and reports whether manually authored captions exist for the configured language
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        request  body      video.CaptionCheckRequest  true  "Source video URL"
// @Success      200      {object}  map[string]interface{}     "Caption availability"
// @Failure      400      {object}  map[string]interface{}     "Invalid URL"
// @Router       /videos/captions/check [post]
func (vc *VideoController) CheckCaptions(c echo.Context) error {
	var req video.CaptionCheckRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(vc.logger, c, errors.ErrInvalidSourceURL(req.URL))
	}

	availability, err := vc.svc.CheckCaptions(c.Request().Context(), req.URL)
	if err != nil {
		return HandleError(vc.logger, c, err)
	}

	return HandleSuccess(vc.logger, c, availability)
}

// History lists recently completed transcripts
// @Summary      List transcript history
// @Description  Returns the most recently persisted transcripts, newest first
// @Tags         Videos
// @Produce      json
// @Param        limit  query     int                     false  "Max entries (default 20)"
// @Success      200    {object}  map[string]interface{}  "Transcript history"
// @Router       /videos/history [get]
func (vc *VideoController) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	records, err := vc.svc.History(c.Request().Context(), limit)
	if err != nil {
		return HandleError(vc.logger, c, err)
	}

	items := make([]video.HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, video.NewHistoryItem(record))
	}

	return HandleSuccess(vc.logger, c, items)
}
