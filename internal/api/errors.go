package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a server-reported failure: the backend answered with a
// non-2xx status and, usually, a message in the body. The message is
// surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// UserMessage is the server's message verbatim, without the transport
// framing Error() adds.
func (e *APIError) UserMessage() string { return e.Message }

// decodeAPIError extracts the server's message from an error body,
// falling back to the generic status text when the body carries none.
func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		if msg != "" {
			return &APIError{StatusCode: status, Message: msg}
		}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}

// ErrorMessage returns the user-facing message for err: the server's
// own words for an APIError, a generic fallback otherwise.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsUnauthorized reports whether err is a server-side 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
