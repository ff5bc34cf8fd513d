package util

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/types"
)

// ResponseCodeFromError resolves a status code from an error
func ResponseCodeFromError(err error) int {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var notFoundErr *db.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// Error creates a standardized error response
func Error(w http.ResponseWriter, r *http.Request, originalError error) {
	ErrorWithCode(w, r, originalError, ResponseCodeFromError(originalError))
}

// ErrorWithCode creates a standardized error response with a status code
func ErrorWithCode(w http.ResponseWriter, r *http.Request, originalError error, statusCode int) {
	render.Status(r, statusCode)
	render.JSON(w, r, types.Response{
		Success: false,
		Error:   fmt.Sprint(originalError),
	})
}

// Data creates a standardized success response carrying data
func Data(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, types.Response{
		Success: true,
		Data:    data,
	})
}

// Success creates a bare success acknowledgement
func Success(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, types.Response{
		Success: true,
	})
}

// DecodeJSON decodes a request body, converting decoding failures
// into validation errors
func DecodeJSON(r *http.Request, v interface{}) error {
	err := render.DecodeJSON(r.Body, v)
	if err != nil {
		return types.NewMalformedBodyError(err)
	}

	return nil
}
