package models

import "time"

// Box is a bounding box in source-image pixel coordinates.
type Box struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Detection is a single labeled bounding box with a confidence score.
// The same shape is used for raw model output and for filtered results.
type Detection struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Box   Box     `json:"box"`
}

// DetectionResult is the outcome of running the engine on one image.
// Err carries a non-fatal failure description (upstream call failed,
// malformed response); the rest of the result is then empty.
type DetectionResult struct {
	BearDetected bool
	Confidence   float64
	Detections   []Detection
	Err          string
}

// DetectionRecord represents one persisted detection event.
// Records are created once per detect request and never updated.
// Confidence is nil when no qualifying detection occurred.
type DetectionRecord struct {
	ID                  int64     `json:"id"`
	CameraID            string    `json:"camera_id"`
	Location            string    `json:"location"`
	BearDetected        bool      `json:"bear_detected"`
	Confidence          *float64  `json:"confidence"`
	DetectedAt          time.Time `json:"detected_at"`
	ImageFilename       string    `json:"image_filename"`
	ResultImageFilename string    `json:"result_image_filename,omitempty"`
}

// DetectionStats contains aggregate statistics about stored records.
type DetectionStats struct {
	TotalDetections int     `json:"total_detections"`
	BearDetections  int     `json:"bear_detections"`
	DetectionRate   float64 `json:"detection_rate"`
	RecentCount     int     `json:"recent_count"`
}

// ModelInfo describes the detection model behind the engine.
type ModelInfo struct {
	ModelType           string   `json:"model_type"`
	ModelPath           string   `json:"model_path"`
	ConfidenceThreshold float64  `json:"confidence_threshold"`
	ClassNames          []string `json:"class_names"`
}
