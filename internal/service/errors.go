package service

import (
	"fmt"
	"strings"
)

// FieldError describes a single field constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when one or more product or category fields
// fail their constraints. The wrapped operation performs no writes.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(messages, "; ")
}

// FieldMessages returns the violations keyed by field name, for the fail
// response body.
func (e *ValidationError) FieldMessages() map[string]string {
	messages := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		// First violation per field wins.
		if _, ok := messages[f.Field]; !ok {
			messages[f.Field] = f.Message
		}
	}
	return messages
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
