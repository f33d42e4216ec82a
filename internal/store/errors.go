package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationErrorItem describes one failed constraint on a write.
type ValidationErrorItem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError is returned when an incoming document violates the
// schema: out-of-enum value, missing required field, malformed date.
type ValidationError struct {
	Errors  []ValidationErrorItem `json:"validation_errors,omitempty"`
	Message string                `json:"error"`
}

func (e *ValidationError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, item := range e.Errors {
			if item.Path != "" {
				parts = append(parts, item.Path+": "+item.Message)
			} else {
				parts = append(parts, item.Message)
			}
		}
		return strings.Join(parts, "; ")
	}
	return "validation failed"
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationf(path, msg string) *ValidationError {
	return &ValidationError{Errors: []ValidationErrorItem{{Path: path, Message: msg}}}
}
