// Package httpx provides HTTP response utilities.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gradebook/gradebook/internal/shared"
)

// APIError is the body written for every failed request.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is the body written for successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an APIError body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, APIError{Status: status, Message: message})
}

// Message sends a MessageResponse body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageResponse{Message: message})
}

// ErrMalformedBody is returned by DecodeJSON for unreadable request bodies.
var ErrMalformedBody = shared.NewError(shared.ErrBadRequest, "Malformed request. Please check your request body.")

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrMalformedBody
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return shared.BadRequestf("Invalid value for field '%s'", typeErr.Field)
		}
		var classified *shared.Error
		if errors.As(err, &classified) {
			return classified
		}
		return ErrMalformedBody
	}
	return nil
}
