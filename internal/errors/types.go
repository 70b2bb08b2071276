package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeBindings   ErrorType = "bindings"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is a structured error type with context.
type AppError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Template    string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithTemplate records which named template the error belongs to.
func (e *AppError) WithTemplate(name string) *AppError {
	e.Template = name

	return e
}

// WithFile adds file location information.
func (e *AppError) WithFile(filePath string) *AppError {
	e.FilePath = filePath

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewBindingsError creates a bindings error.
func NewBindingsError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeBindings,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == errType
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err at a level chosen by its type.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ae *AppError
	if !errors.As(err, &ae) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch ae.Type {
	case ErrorTypeValidation:
		h.logger.Warn(ctx, ae, "Template validation failed",
			"type", ae.Type,
			"code", ae.Code,
			"template", ae.Template)
	case ErrorTypeBindings:
		h.logger.Warn(ctx, ae, "Template bindings rejected",
			"type", ae.Type,
			"code", ae.Code,
			"template", ae.Template,
			"variable", ae.Context["variable"])
	default:
		h.logger.Error(ctx, ae, "Error occurred",
			"type", ae.Type,
			"code", ae.Code,
			"file", ae.FilePath)
	}
}

// Common error codes.
const (
	ErrCodeTemplateInvalid  = "ERR_TEMPLATE_INVALID"
	ErrCodeBindingsInvalid  = "ERR_BINDINGS_INVALID"
	ErrCodeTemplateNotFound = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeFileUnreadable   = "ERR_FILE_UNREADABLE"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// ErrTemplateNotFound creates an error for an unknown named template.
func ErrTemplateNotFound(name string) *AppError {
	return NewValidationError(ErrCodeTemplateNotFound, "template not found: "+name).
		WithTemplate(name)
}

// ErrFileNotFound creates an error for a missing input file.
func ErrFileNotFound(path string, cause error) *AppError {
	return NewIOError(ErrCodeFileNotFound, "file not found", cause).WithFile(path)
}
