package http

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape for every failed REST request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// MessagesBody wraps a message history response.
type MessagesBody[T any] struct {
	Success  bool `json:"success"`
	Messages []T  `json:"messages"`
}

// NotifiedBody reports how many connections a broadcast reached.
type NotifiedBody struct {
	Success  bool `json:"success"`
	Notified int  `json:"notified"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Header already sent, nothing more to do.
		_ = err
	}
}

// WriteError writes a failure response in the standard shape.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorBody{Success: false, Error: message, Code: code})
}

// WriteMessages writes a message history response.
func WriteMessages[T any](w http.ResponseWriter, messages []T) {
	if messages == nil {
		messages = []T{}
	}
	WriteJSON(w, http.StatusOK, MessagesBody[T]{Success: true, Messages: messages})
}

// WriteNotified writes a broadcast result response.
func WriteNotified(w http.ResponseWriter, notified int) {
	WriteJSON(w, http.StatusOK, NotifiedBody{Success: true, Notified: notified})
}
