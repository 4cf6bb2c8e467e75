package tool

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CodeUnknownTool is returned when an invocation names a tool not
	// present in the registry.
	CodeUnknownTool = "UNKNOWN_TOOL"
	// CodeMissingConfiguration is returned when a required secret store
	// key is absent.
	CodeMissingConfiguration = "MISSING_CONFIGURATION"
	// CodeUpstreamHTTP is returned when an external call answers with a
	// non-success status.
	CodeUpstreamHTTP = "UPSTREAM_HTTP_ERROR"
	// CodeExtraction is returned when an expected field cannot be
	// located in an upstream response.
	CodeExtraction = "EXTRACTION_ERROR"
	// CodeValidation is returned when a caller-supplied argument is
	// outside the handler's accepted domain.
	CodeValidation = "VALIDATION_ERROR"
	// CodeInternal is the fallback for unclassified failures.
	CodeInternal = "INTERNAL"
)

// ToolError is a structured invocation error carrying a machine-readable
// code alongside the human-readable message surfaced to callers.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return CodeInternal
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a ToolError with the given code and message.
func NewError(code, message string) *ToolError {
	return &ToolError{Code: code, Message: message}
}

// Errorf builds a ToolError with a formatted message.
func Errorf(code, format string, args ...any) *ToolError {
	return &ToolError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a ToolError around a cause. An empty message adopts
// the cause's text.
func WrapError(code, message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{Code: code, Message: message, Err: cause}
}

// UpstreamError builds an UPSTREAM_HTTP_ERROR carrying the status code.
func UpstreamError(service string, status int, body string) *ToolError {
	msg := fmt.Sprintf("%s api status %d", service, status)
	if body = strings.TrimSpace(body); body != "" {
		msg += ": " + snippet(body, 200)
	}
	return &ToolError{Code: CodeUpstreamHTTP, Message: msg, Status: status}
}

// CodeOf classifies an arbitrary error into a taxonomy code.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var te *ToolError
	if errors.As(err, &te) && te.Code != "" {
		return te.Code
	}
	return CodeInternal
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
