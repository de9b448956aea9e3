package errors

// ErrorCode identifies a category of application error.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN          ErrorCode = 0
	ErrorCode_INTERNAL         ErrorCode = 1
	ErrorCode_INVALID_ARGUMENT ErrorCode = 2
	ErrorCode_NOT_FOUND        ErrorCode = 3
	ErrorCode_ALREADY_EXISTS   ErrorCode = 4
	ErrorCode_HTTP_OK          ErrorCode = 5

	// Source acquisition
	ErrorCode_SOURCE_INVALID_URL        ErrorCode = 100
	ErrorCode_SOURCE_EXTRACTION_FAILED  ErrorCode = 101
	ErrorCode_SOURCE_CAPTION_CHECK_FAIL ErrorCode = 102

	// Transcription pipeline
	ErrorCode_SPEECH_NOT_CONFIGURED ErrorCode = 200
	ErrorCode_SPEECH_UNAVAILABLE    ErrorCode = 201
	ErrorCode_PROCESSING_FAILED     ErrorCode = 202

	// Sessions and results
	ErrorCode_SESSION_NOT_FOUND ErrorCode = 300
	ErrorCode_RESULT_NOT_READY  ErrorCode = 301

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 400
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 401
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 402

	ErrorCode_INVALID_PAYLOAD ErrorCode = 500
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_SOURCE_INVALID_URL:         "SOURCE_INVALID_URL",
	ErrorCode_SOURCE_EXTRACTION_FAILED:   "SOURCE_EXTRACTION_FAILED",
	ErrorCode_SOURCE_CAPTION_CHECK_FAIL:  "SOURCE_CAPTION_CHECK_FAIL",
	ErrorCode_SPEECH_NOT_CONFIGURED:      "SPEECH_NOT_CONFIGURED",
	ErrorCode_SPEECH_UNAVAILABLE:         "SPEECH_UNAVAILABLE",
	ErrorCode_PROCESSING_FAILED:          "PROCESSING_FAILED",
	ErrorCode_SESSION_NOT_FOUND:          "SESSION_NOT_FOUND",
	ErrorCode_RESULT_NOT_READY:           "RESULT_NOT_READY",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
}

// String returns the symbolic name of the error code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
