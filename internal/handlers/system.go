package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bearwatch/internal/logger"
	"bearwatch/internal/services/detector"
	"bearwatch/internal/services/storage"
)

// HealthHandler handles GET /health.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "bearwatch",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ModelInfoHandler handles GET /model-info.
func ModelInfoHandler(engine *detector.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"model_info": engine.ModelInfo(),
		})
	}
}

// SetConfidenceHandler handles POST /set-confidence with body {threshold: float}.
// Missing or out-of-range thresholds get a 400 and leave the engine unchanged.
func SetConfidenceHandler(engine *detector.Engine, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, logger, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Threshold *float64 `json:"threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Threshold == nil {
			respondError(w, logger, http.StatusBadRequest, "threshold is required")
			return
		}

		if err := engine.SetThreshold(*body.Threshold); err != nil {
			respondError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("confidence threshold set to %.2f", *body.Threshold),
		})
	}
}

// UploadsHandler handles GET /uploads/{filename}, streaming a stored file.
func UploadsHandler(store *storage.UploadStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := strings.TrimPrefix(r.URL.Path, "/uploads/")

		path, err := store.Path(filename)
		if err != nil {
			respondError(w, logger, http.StatusBadRequest, "invalid filename")
			return
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			respondError(w, logger, http.StatusNotFound, "file not found")
			return
		}

		http.ServeFile(w, r, path)
	}
}
