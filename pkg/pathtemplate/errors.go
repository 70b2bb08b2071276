package pathtemplate

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pathtemplate failure.
type Kind string

const (
	// KindStructural covers malformed templates and broken call contracts.
	KindStructural Kind = "structural"
	// KindBindings covers render-time failures caused by the supplied values.
	KindBindings Kind = "bindings"
)

// Error codes.
const (
	CodeEmptyTemplate           = "ERR_EMPTY_TEMPLATE"
	CodeDoubleLeadingSeparator  = "ERR_DOUBLE_LEADING_SEPARATOR"
	CodeDoubleTrailingSeparator = "ERR_DOUBLE_TRAILING_SEPARATOR"
	CodeTrailingSeparator       = "ERR_TRAILING_SEPARATOR"
	CodeMalformedPlaceholder    = "ERR_MALFORMED_PLACEHOLDER"
	CodeMultipleModifiers       = "ERR_MULTIPLE_MODIFIERS"
	CodeNilBindings             = "ERR_NIL_BINDINGS"
	CodeUnboundVariable         = "ERR_UNBOUND_VARIABLE"
	CodeSeparatorInValue        = "ERR_SEPARATOR_IN_VALUE"
	CodeReservedCharacter       = "ERR_RESERVED_CHARACTER"
	CodeInvalidBindings         = "ERR_INVALID_BINDINGS"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrStructural      = &Error{Kind: KindStructural}
	ErrInvalidBindings = &Error{Kind: KindBindings}
)

// Error is returned by Compile and Render.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Template string
	Variable string
	// Offset is the byte offset into Template, or -1 when not applicable.
	Offset int
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	if e.Variable != "" {
		parts = append(parts, fmt.Sprintf("variable=%q", e.Variable))
	}

	if e.Template != "" {
		location := fmt.Sprintf("template=%q", e.Template)
		if e.Offset >= 0 {
			location += fmt.Sprintf(" offset=%d", e.Offset)
		}
		parts = append(parts, location)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind, and on code when the target carries one.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}

	return t.Code == "" || e.Code == t.Code
}

func structuralError(code, template, message string) *Error {
	return &Error{
		Kind:     KindStructural,
		Code:     code,
		Message:  message,
		Template: template,
		Offset:   -1,
	}
}

func bindingsError(code, variable, message string) *Error {
	return &Error{
		Kind:     KindBindings,
		Code:     code,
		Message:  message,
		Variable: variable,
		Offset:   -1,
	}
}

// IsStructural reports whether err is a structural or contract error.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}

// IsBindings reports whether err was caused by unresolvable bindings.
func IsBindings(err error) bool {
	return errors.Is(err, ErrInvalidBindings)
}
