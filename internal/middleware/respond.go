package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody is the flat {"error","message"} shape used by every API error.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errText, Message: message})
}
