package errors

// ErrorCode is the stable, machine readable code returned in error bodies
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003
	ErrorCode_RATE_LIMITED     ErrorCode = 1004
	ErrorCode_UNAUTHORIZED     ErrorCode = 1005

	// Acta input
	ErrorCode_TRANSCRIPT_REQUIRED ErrorCode = 2000
	ErrorCode_TEMPLATE_NOT_FOUND  ErrorCode = 2001

	// AI
	ErrorCode_AI_SERVICE_UNAVAILABLE ErrorCode = 3000
	ErrorCode_AI_QUOTA_EXCEEDED      ErrorCode = 3001
	ErrorCode_AI_EXTRACTION_FAILED   ErrorCode = 3002

	// Report
	ErrorCode_REPORT_RENDER_FAILED ErrorCode = 4000

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_RATE_LIMITED:               "RATE_LIMITED",
	ErrorCode_UNAUTHORIZED:               "UNAUTHORIZED",
	ErrorCode_TRANSCRIPT_REQUIRED:        "TRANSCRIPT_REQUIRED",
	ErrorCode_TEMPLATE_NOT_FOUND:         "TEMPLATE_NOT_FOUND",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:          "AI_QUOTA_EXCEEDED",
	ErrorCode_AI_EXTRACTION_FAILED:       "AI_EXTRACTION_FAILED",
	ErrorCode_REPORT_RENDER_FAILED:       "REPORT_RENDER_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText lets JSON bodies carry the symbolic name
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
