package detector

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// DefaultThreshold is the minimum confidence a raw detection must meet
// to be retained when no threshold is configured.
const DefaultThreshold = 0.5

var (
	// ErrImageNotFound is returned when the input image file does not exist.
	ErrImageNotFound = errors.New("image file not found")

	// ErrInvalidThreshold is returned when a confidence threshold is outside [0,1].
	ErrInvalidThreshold = errors.New("confidence threshold must be between 0 and 1")
)

// bearKeywords is the canonical keyword set for the bear-class predicate.
// A label qualifies when it contains any keyword, case-insensitively.
var bearKeywords = []string{"kumay", "bear", "black bear", "taiwan black bear", "熊"}

// BearClassNames returns the class names the engine treats as bears.
func BearClassNames() []string {
	names := make([]string, len(bearKeywords))
	copy(names, bearKeywords)
	return names
}

// IsBearLabel reports whether a model output label denotes a bear.
func IsBearLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, keyword := range bearKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RawSource produces unfiltered detections for an image. Implementations
// wrap either a local network or a remote inference API; filtering and
// scoring are the engine's job.
type RawSource interface {
	Raw(imagePath string) ([]models.Detection, error)
	Info() models.ModelInfo
}

// Engine wraps a raw-detection source and applies the confidence threshold
// and bear-class filtering to its output. The threshold is guarded by a
// lock so it can be changed while requests are in flight.
type Engine struct {
	source    RawSource
	logger    *logger.Logger
	mu        sync.RWMutex
	threshold float64
}

// NewEngine creates a detection engine around the given source.
// Out-of-range thresholds fall back to DefaultThreshold.
func NewEngine(source RawSource, threshold float64, logger *logger.Logger) *Engine {
	if threshold < 0 || threshold > 1 {
		logger.Warning("Configured confidence threshold %.2f out of range, using default %.2f", threshold, DefaultThreshold)
		threshold = DefaultThreshold
	}

	return &Engine{
		source:    source,
		logger:    logger,
		threshold: threshold,
	}
}

// Detect runs the underlying model on the image at imagePath and filters
// the raw output. A missing file returns ErrImageNotFound. Any failure of
// the source itself (unreadable file, network error, malformed response)
// is absorbed into a degraded result whose Err field describes the cause.
func (e *Engine) Detect(imagePath string) (*models.DetectionResult, error) {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
	}

	raw, err := e.source.Raw(imagePath)
	if err != nil {
		e.logger.Error("Detection failed for %s: %v", imagePath, err)
		return &models.DetectionResult{Err: err.Error()}, nil
	}

	threshold := e.Threshold()
	result := &models.DetectionResult{}

	for _, det := range raw {
		if det.Score < threshold || !IsBearLabel(det.Label) {
			continue
		}
		result.Detections = append(result.Detections, det)
		if det.Score > result.Confidence {
			result.Confidence = det.Score
		}
	}

	result.BearDetected = len(result.Detections) > 0
	if result.BearDetected {
		e.logger.Info("Bear detected in %s: %d box(es), max confidence %.2f",
			imagePath, len(result.Detections), result.Confidence)
	}

	return result, nil
}

// Threshold returns the current confidence threshold.
func (e *Engine) Threshold() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// SetThreshold updates the confidence threshold. Values outside [0,1]
// return ErrInvalidThreshold and leave the previous threshold unchanged.
func (e *Engine) SetThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	e.mu.Lock()
	e.threshold = threshold
	e.mu.Unlock()

	e.logger.Info("Confidence threshold set to %.2f", threshold)
	return nil
}

// ModelInfo describes the underlying model, with the live threshold filled in.
func (e *Engine) ModelInfo() models.ModelInfo {
	info := e.source.Info()
	info.ConfidenceThreshold = e.Threshold()
	return info
}
