package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage    Category = "usage"
	CategoryContract Category = "contract"
	CategoryRender   Category = "render"
	CategoryConfig   Category = "config"
)

// CompError is a structured error with a code, hint and example.
type CompError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (usage, contract, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CompError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CompError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *CompError with the same code.
func (e *CompError) Is(target error) bool {
	t, ok := target.(*CompError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *CompError) WithSuggestion(s string) *CompError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *CompError) WithExample(ex string) *CompError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *CompError) WithDetail(d string) *CompError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *CompError) WithDetailf(format string, args ...any) *CompError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// Wrap wraps another error.
func (e *CompError) Wrap(err error) *CompError {
	e.Wrapped = err
	return e
}

// New creates a CompError from a registered error code.
func New(code string) *CompError {
	template, ok := registry[code]
	if !ok {
		return &CompError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CompError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		Example:    template.Example,
	}
}

// Newf creates a new CompError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *CompError {
	return &CompError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// HasCode reports whether err (or anything it wraps) is a CompError with the code.
func HasCode(err error, code string) bool {
	var ce *CompError
	for err != nil {
		if !stderrors.As(err, &ce) {
			return false
		}
		if ce.Code == code {
			return true
		}
		err = ce.Wrapped
	}
	return false
}

// CategoryOf returns the category of the outermost CompError in err's chain.
func CategoryOf(err error) Category {
	var ce *CompError
	if stderrors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
