package handlers

import (
	"net/http"
	"time"

	"bearwatch/internal/config"
	"bearwatch/internal/logger"
	"bearwatch/internal/models"
	"bearwatch/internal/repository"
	"bearwatch/internal/services/detector"
	"bearwatch/internal/services/storage"
)

// Annotator draws detections onto a copy of a stored image and returns
// the generated filename.
type Annotator interface {
	Annotate(imagePath string, detections []models.Detection, outputDir string) (string, error)
}

// Notifier pushes a persisted detection record to live subscribers.
type Notifier interface {
	NotifyDetection(rec models.DetectionRecord)
}

// DetectResponse is the JSON payload of a successful detect request.
type DetectResponse struct {
	BearDetected   bool    `json:"bear_detected"`
	Confidence     float64 `json:"confidence"`
	DetectedAt     string  `json:"detected_at"`
	Location       string  `json:"location"`
	ImageURL       string  `json:"image_url"`
	DetectionID    int64   `json:"detection_id"`
	ResultImageURL string  `json:"result_image_url,omitempty"`
	Warning        string  `json:"warning,omitempty"`
}

// DetectHandler handles POST /detect: store the upload, run detection,
// annotate qualifying detections, persist one record and respond.
// Engine and annotation failures degrade to a warning; the record is only
// written after both storage and detection have completed.
func DetectHandler(cfg *config.Config, logger *logger.Logger, store *storage.UploadStore,
	engine *detector.Engine, annotator Annotator, repo repository.DetectionRepository, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, logger, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		maxBytes := cfg.MaxUploadSizeMB << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			respondError(w, logger, http.StatusBadRequest, "failed to parse upload form")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			respondError(w, logger, http.StatusBadRequest, "no image file uploaded")
			return
		}
		defer file.Close()

		if header.Filename == "" {
			respondError(w, logger, http.StatusBadRequest, "no file selected")
			return
		}
		if !store.Allowed(header.Filename) {
			respondError(w, logger, http.StatusBadRequest, "unsupported file format")
			return
		}

		cameraID := r.FormValue("camera_id")
		if cameraID == "" {
			cameraID = "unknown"
		}
		location := r.FormValue("location")
		if location == "" {
			location = "未知位置"
		}

		filename, err := store.Save(file, header.Filename)
		if err != nil {
			respondError(w, logger, http.StatusInternalServerError, "failed to store uploaded image")
			return
		}

		imagePath, err := store.Path(filename)
		if err != nil {
			respondError(w, logger, http.StatusInternalServerError, "failed to resolve stored image")
			return
		}

		result, err := engine.Detect(imagePath)
		if err != nil {
			logger.Error("Detection failed for %s: %v", filename, err)
			respondError(w, logger, http.StatusInternalServerError, "detection failed")
			return
		}

		var resultFilename string
		if result.BearDetected && len(result.Detections) > 0 {
			resultFilename, err = annotator.Annotate(imagePath, result.Detections, store.Dir())
			if err != nil {
				// Annotation failure is non-fatal, respond without a result image.
				logger.Error("Annotation failed for %s: %v", filename, err)
				resultFilename = ""
			}
		}

		rec := models.DetectionRecord{
			CameraID:            cameraID,
			Location:            location,
			BearDetected:        result.BearDetected,
			DetectedAt:          time.Now().UTC(),
			ImageFilename:       filename,
			ResultImageFilename: resultFilename,
		}
		if result.BearDetected {
			confidence := result.Confidence
			rec.Confidence = &confidence
		}

		id, err := repo.Insert(&rec)
		if err != nil {
			logger.Error("Failed to persist detection record: %v", err)
			respondError(w, logger, http.StatusInternalServerError, "failed to persist detection record")
			return
		}
		rec.ID = id

		notifier.NotifyDetection(rec)

		resp := DetectResponse{
			BearDetected: rec.BearDetected,
			Confidence:   result.Confidence,
			DetectedAt:   rec.DetectedAt.Format(time.RFC3339),
			Location:     rec.Location,
			ImageURL:     "/uploads/" + filename,
			DetectionID:  id,
			Warning:      result.Err,
		}
		if resultFilename != "" {
			resp.ResultImageURL = "/uploads/" + resultFilename
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
