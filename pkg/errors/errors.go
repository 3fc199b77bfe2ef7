package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies the failures that can occur during a retrieval run
type ErrorType string

const (
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeCourseURL    ErrorType = "course_url"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeUnresolvable ErrorType = "unresolvable_download"
	ErrorTypeDownload     ErrorType = "download"
	ErrorTypeTimestamp    ErrorType = "timestamp"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a Studydrive API or pipeline error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsFatal reports whether an error type aborts the whole run. Auth and
// course URL failures do; everything else is isolated to the document
// that caused it and the run continues.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeAuth, ErrorTypeCourseURL:
		return true
	default:
		return false
	}
}

// IsFatal reports whether this error aborts the whole run
func (e *Error) IsFatal() bool {
	return IsFatal(e.Type)
}

// IsFatalError reports whether err carries a fatal error type. Errors
// outside this taxonomy are treated as non-fatal.
func IsFatalError(err error) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.IsFatal()
	}
	return false
}
