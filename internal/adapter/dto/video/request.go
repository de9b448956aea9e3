package video

// ProcessRequest is the payload for submitting a video for processing
type ProcessRequest struct {
	URL string `json:"url" validate:"required,url|startswith=http"`
}

// CaptionCheckRequest is the payload for a caption availability check
type CaptionCheckRequest struct {
	URL string `json:"url" validate:"required"`
}
