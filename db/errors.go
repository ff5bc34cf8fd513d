package db

import "fmt"

// NotFoundError is an error used to encode when a key or record ID isn't found
// for Get, Update, and counter operations
type NotFoundError struct {
	ID string
}

// NewNotFoundError constructs a new NotFoundError
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{
		ID: id,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object with ID '%s' not found in the database",
		e.ID)
}
