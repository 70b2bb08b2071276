package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TemplateError records one failure found while checking templates.
type TemplateError struct {
	Template  string
	Source    string
	File      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (te *TemplateError) Error() string {
	if te.File != "" {
		return fmt.Sprintf("%s: %s: %s: %s", te.File, te.Template, te.Severity, te.Message)
	}
	return fmt.Sprintf("%s: %s: %s", te.Template, te.Severity, te.Message)
}

// ErrorCollector collects template errors and general errors
type ErrorCollector struct {
	templateErrors []TemplateError
	errors         []error
	mutex          sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		templateErrors: make([]TemplateError, 0),
		errors:         make([]error, 0),
	}
}

// Add adds a template error to the collector
func (ec *ErrorCollector) Add(err TemplateError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	err.Timestamp = time.Now()
	ec.templateErrors = append(ec.templateErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns all collected template errors
func (ec *ErrorCollector) GetErrors() []TemplateError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]TemplateError, len(ec.templateErrors))
	copy(result, ec.templateErrors)
	return result
}

// GetAllErrors returns all collected errors (template and general)
func (ec *ErrorCollector) GetAllErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	allErrors := make([]error, 0, len(ec.templateErrors)+len(ec.errors))
	for i := range ec.templateErrors {
		te := ec.templateErrors[i]
		allErrors = append(allErrors, &te)
	}
	allErrors = append(allErrors, ec.errors...)

	return allErrors
}

// HasErrors returns true if there are any errors at error severity or above
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.errors) > 0 {
		return true
	}
	for _, err := range ec.templateErrors {
		if err.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.templateErrors = ec.templateErrors[:0]
	ec.errors = ec.errors[:0]
}

// GetErrorsByTemplate returns errors for a specific named template
func (ec *ErrorCollector) GetErrorsByTemplate(name string) []TemplateError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var templateErrors []TemplateError
	for _, err := range ec.templateErrors {
		if err.Template == name {
			templateErrors = append(templateErrors, err)
		}
	}
	return templateErrors
}

// Templates returns the sorted names of templates that have errors
func (ec *ErrorCollector) Templates() []string {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for _, err := range ec.templateErrors {
		if !seen[err.Template] {
			seen[err.Template] = true
			names = append(names, err.Template)
		}
	}
	sort.Strings(names)
	return names
}
