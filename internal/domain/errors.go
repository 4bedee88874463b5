package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	ErrCodeUpstreamTimeout   = "UPSTREAM_TIMEOUT"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query text is empty")
	ErrEmptyDocumentPath    = NewDomainError(ErrCodeValidation, "document path is empty")
	ErrInvalidChunkParams   = NewDomainError(ErrCodeValidation, "overlap must be smaller than max chars")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrAreaNotIndexed   = NewDomainError(ErrCodeNotFound, "area has no index")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Extraction errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
)

// Completion-endpoint errors
var (
	ErrCompletionBusy      = NewDomainError(ErrCodeCapacityExceeded, "completion endpoint at capacity")
	ErrCompletionTimeout   = NewDomainError(ErrCodeUpstreamTimeout, "completion endpoint timed out")
	ErrMalformedCompletion = NewDomainError(ErrCodeMalformedResponse, "completion response missing generated text")
)
