package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitBindings   = 3
	ExitConfig     = 4
)

// Wrap wraps an error with additional context, creating an AppError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	if err == nil {
		return nil
	}

	var ae *AppError
	if errors.As(err, &ae) {
		return &AppError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ae,
			Context:     ae.Context,
			Template:    ae.Template,
			FilePath:    ae.FilePath,
			Recoverable: ae.Recoverable,
		}
	}

	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeBindings,
	}
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, message string) *AppError {
	appErr := Wrap(err, ErrorTypeConfig, ErrCodeConfigInvalid, message)
	if appErr != nil {
		appErr.Recoverable = false
	}
	return appErr
}

// WrapIO wraps an error as an I/O error for path
func WrapIO(err error, path, message string) *AppError {
	appErr := Wrap(err, ErrorTypeIO, ErrCodeFileUnreadable, message)
	if appErr != nil {
		appErr.Recoverable = false
		appErr.FilePath = path
	}
	return appErr
}

// FromRenderError classifies an error returned by pathtemplate.Compile or
// Render. Errors of any other origin are returned unchanged.
func FromRenderError(err error, templateName string) error {
	var perr *pathtemplate.Error
	if !errors.As(err, &perr) {
		return err
	}

	errType, code := ErrorTypeValidation, ErrCodeTemplateInvalid
	if perr.Kind == pathtemplate.KindBindings {
		errType, code = ErrorTypeBindings, ErrCodeBindingsInvalid
	}

	appErr := Wrap(perr, errType, code, string(perr.Kind)+" error").
		WithTemplate(templateName).
		WithContext("reason", perr.Code).
		WithContext("source", perr.Template)
	if perr.Variable != "" {
		appErr.WithContext("variable", perr.Variable)
	}
	if perr.Offset >= 0 {
		appErr.WithContext("offset", perr.Offset)
	}

	return appErr
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var ae *AppError
	if !errors.As(err, &ae) {
		return ExitFailure
	}

	switch ae.Type {
	case ErrorTypeValidation:
		return ExitValidation
	case ErrorTypeBindings:
		return ExitBindings
	case ErrorTypeConfig:
		return ExitConfig
	default:
		return ExitFailure
	}
}

// FormatError renders err for terminal output, appending suggestions when
// any apply.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error: %v\n", err))

	for _, s := range SuggestionsFor(err) {
		b.WriteString(fmt.Sprintf("  hint: %s\n", s))
	}

	return b.String()
}

// GetErrorContext returns the context attached to err, if any.
func GetErrorContext(err error) map[string]interface{} {
	var ae *AppError
	if errors.As(err, &ae) && ae.Context != nil {
		return ae.Context
	}

	return map[string]interface{}{}
}
