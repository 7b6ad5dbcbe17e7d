package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bearwatch/internal/logger"
)

// errorResponse is the JSON shape for failed requests.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a {success:false, error} response and logs server errors.
func respondError(w http.ResponseWriter, logger *logger.Logger, status int, message string) {
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed: %s", message)
	}
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// atoiDefault parses s as a positive integer, falling back to def.
func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
