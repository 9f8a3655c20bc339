package fakebackend

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse mirrors the backend's error body.
type ErrorResponse struct {
	Error string `json:"error,omitempty"`
	// Detail is what the backend's framework emits for HTTP exceptions.
	Detail string `json:"detail,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message})
}

func respondWithDetail(w http.ResponseWriter, status int, detail string) {
	respondWithJSON(w, status, ErrorResponse{Detail: detail})
}
