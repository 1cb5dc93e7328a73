package types

import "fmt"

// ErrorCode classifies MCP tool failures for programmatic clients.
type ErrorCode string

const (
	CodeMissingTitle       ErrorCode = "MISSING_TITLE"
	CodeMissingDescription ErrorCode = "MISSING_DESCRIPTION"
	CodeMissingID          ErrorCode = "MISSING_ID"
	CodeNoUpdates          ErrorCode = "NO_UPDATES"
	CodeTaskNotFound       ErrorCode = "TASK_NOT_FOUND"
	CodeCreateFailed       ErrorCode = "CREATE_FAILED"
	CodeListFailed         ErrorCode = "LIST_FAILED"
	CodeUpdateFailed       ErrorCode = "UPDATE_FAILED"
	CodeDeleteFailed       ErrorCode = "DELETE_FAILED"
	CodeMarkDoneFailed     ErrorCode = "MARK_DONE_FAILED"
)

// MCPError carries a stable code plus a human message over the MCP wire.
type MCPError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so callers can keep matching the
// store and taskstream sentinels with errors.Is.
func (e *MCPError) Unwrap() error {
	return e.cause
}

// NewMCPError creates a structured MCP error with no underlying cause.
func NewMCPError(code ErrorCode, message string, details map[string]interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WrapMCPError creates a structured MCP error around a failure from the
// store or another collaborator.
func WrapMCPError(code ErrorCode, cause error, message string, details map[string]interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Details: details,
		cause:   cause,
	}
}
