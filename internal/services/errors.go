package services

import "errors"

// ErrorCode classifies service failures so handlers can map them to
// transport status codes without string matching.
type ErrorCode string

const (
	CodeInvalidArgument       ErrorCode = "invalid_argument"
	CodeNotFound              ErrorCode = "not_found"
	CodeSessionBusy           ErrorCode = "session_busy"
	CodeEmptyContent          ErrorCode = "empty_content"
	CodeEmbeddingUnavailable  ErrorCode = "embedding_unavailable"
	CodeGenerationUnavailable ErrorCode = "generation_unavailable"
	CodeGenerationTimeout     ErrorCode = "generation_timeout"
	CodeInternal              ErrorCode = "internal"
)

// ServiceError represents errors raised by the service layer
type ServiceError struct {
	Code      ErrorCode
	Operation string
	Err       error
	Message   string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": " + string(e.Code)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new service error
func NewServiceError(code ErrorCode, operation string, err error, message string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// InvalidArgumentError reports a request that fails validation
func InvalidArgumentError(operation, message string) *ServiceError {
	return NewServiceError(CodeInvalidArgument, operation, nil, message)
}

// SessionBusyError reports a turn rejected because another turn holds the session
func SessionBusyError(sessionID string) *ServiceError {
	return NewServiceError(CodeSessionBusy, "handle_turn", nil, "session is busy with another turn: "+sessionID)
}

// EmptyContentError reports an ingestion request with no usable text
func EmptyContentError(operation string) *ServiceError {
	return NewServiceError(CodeEmptyContent, operation, nil, "content is empty or whitespace-only")
}

// CodeOf extracts the ErrorCode from an error chain, or CodeInternal
// when the error did not originate in the service layer.
func CodeOf(err error) ErrorCode {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given service error code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
