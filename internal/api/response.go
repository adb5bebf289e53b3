// Package api holds the wire types shared by every handler: the error
// envelope, the generic message response and JSON helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// MessageResponse is the generic confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:      true,
		Message:    message,
		StatusCode: statusCode,
	})
}

// WriteMessage writes the standard confirmation body.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message, Success: true})
}
