package handlers

import (
	"net/http"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
	"bearwatch/internal/repository"
	"bearwatch/internal/services/storage"
)

// RecordResponse augments a stored record with retrievable image URLs.
type RecordResponse struct {
	models.DetectionRecord
	ImageURL       string `json:"image_url,omitempty"`
	ResultImageURL string `json:"result_image_url,omitempty"`
}

// RecentDetectionsHandler handles GET /recent-detections?limit=N,
// returning the newest records first (default 10).
func RecentDetectionsHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), 10)

		records, err := repo.GetRecent(limit)
		if err != nil {
			logger.Error("Failed to query recent detections: %v", err)
			respondError(w, logger, http.StatusInternalServerError, "failed to query detections")
			return
		}

		result := make([]RecordResponse, 0, len(records))
		for _, rec := range records {
			resp := RecordResponse{DetectionRecord: rec}
			if rec.ImageFilename != "" {
				resp.ImageURL = "/uploads/" + rec.ImageFilename
			}
			if rec.ResultImageFilename != "" {
				resp.ResultImageURL = "/uploads/" + rec.ResultImageFilename
			}
			result = append(result, resp)
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// statisticsPayload extends the aggregate stats with upload-directory usage.
type statisticsPayload struct {
	models.DetectionStats
	UploadDirectoryBytes int64 `json:"upload_directory_bytes"`
}

// StatisticsHandler handles GET /statistics.
func StatisticsHandler(repo repository.DetectionRepository, store *storage.UploadStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.Stats()
		if err != nil {
			logger.Error("Failed to compute statistics: %v", err)
			respondError(w, logger, http.StatusInternalServerError, "failed to compute statistics")
			return
		}

		payload := statisticsPayload{DetectionStats: *stats}
		if size, err := store.DirectorySize(); err == nil {
			payload.UploadDirectoryBytes = size
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"statistics": payload,
		})
	}
}
