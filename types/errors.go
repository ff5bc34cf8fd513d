package types

import (
	"fmt"
	"strings"
)

// ValidationError is an error used to encode when a request body
// is missing required fields or cannot be decoded
type ValidationError struct {
	Fields []string
	Reason string
}

// NewValidationError constructs a new ValidationError for the given missing fields
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{
		Fields: fields,
	}
}

// NewMalformedBodyError constructs a ValidationError for a body that is not valid JSON
func NewMalformedBodyError(cause error) *ValidationError {
	return &ValidationError{
		Reason: fmt.Sprintf("invalid request body: %s", cause),
	}
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}

	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

// requireFields returns a ValidationError naming every blank field,
// or nil if all of them are present.
// Whitespace-only values count as blank
func requireFields(fields ...[2]string) error {
	missing := []string{}
	for _, field := range fields {
		if strings.TrimSpace(field[1]) == "" {
			missing = append(missing, field[0])
		}
	}

	if len(missing) > 0 {
		return NewValidationError(missing...)
	}

	return nil
}
