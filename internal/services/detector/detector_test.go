package detector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// stubSource returns canned raw detections or a canned error.
type stubSource struct {
	detections []models.Detection
	err        error
}

func (s *stubSource) Raw(imagePath string) ([]models.Detection, error) {
	return s.detections, s.err
}

func (s *stubSource) Info() models.ModelInfo {
	return models.ModelInfo{ModelType: "stub", ClassNames: BearClassNames()}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(t.TempDir())
}

// writeTestImage creates a dummy file so Detect's existence check passes.
func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := os.WriteFile(path, []byte("not a real jpeg"), 0644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}

func TestEngine_SetThreshold(t *testing.T) {
	tests := []struct {
		threshold float64
		wantErr   bool
	}{
		{0, false},
		{0.5, false},
		{1, false},
		{0.999, false},
		{-0.01, true},
		{1.01, true},
		{42, true},
	}

	for _, tt := range tests {
		engine := NewEngine(&stubSource{}, 0.5, testLogger(t))

		err := engine.SetThreshold(tt.threshold)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("SetThreshold(%v) error = %v, want ErrInvalidThreshold", tt.threshold, err)
			}
			if engine.Threshold() != 0.5 {
				t.Errorf("SetThreshold(%v) changed threshold to %v, want prior value kept", tt.threshold, engine.Threshold())
			}
		} else {
			if err != nil {
				t.Errorf("SetThreshold(%v) unexpected error: %v", tt.threshold, err)
			}
			if engine.Threshold() != tt.threshold {
				t.Errorf("Threshold() = %v, want %v", engine.Threshold(), tt.threshold)
			}
		}
	}
}

func TestEngine_Detect_FiltersByScoreAndLabel(t *testing.T) {
	source := &stubSource{detections: []models.Detection{
		{Label: "taiwan black bear", Score: 0.82, Box: models.Box{XMin: 10, YMin: 10, XMax: 200, YMax: 200}},
		{Label: "bear", Score: 0.61},
		{Label: "bear", Score: 0.31},   // below threshold
		{Label: "person", Score: 0.95}, // not a bear
	}}

	engine := NewEngine(source, 0.5, testLogger(t))
	result, err := engine.Detect(writeTestImage(t))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !result.BearDetected {
		t.Error("BearDetected = false, want true")
	}
	if result.Confidence != 0.82 {
		t.Errorf("Confidence = %v, want max retained score 0.82", result.Confidence)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("len(Detections) = %d, want 2", len(result.Detections))
	}
	if result.Detections[0].Box.XMax != 200 {
		t.Errorf("Box.XMax = %v, want 200", result.Detections[0].Box.XMax)
	}
	if result.Err != "" {
		t.Errorf("Err = %q, want empty", result.Err)
	}
}

func TestEngine_Detect_NoQualifyingDetections(t *testing.T) {
	tests := []struct {
		name       string
		detections []models.Detection
	}{
		{"empty", nil},
		{"all below threshold", []models.Detection{
			{Label: "bear", Score: 0.2},
			{Label: "kumay", Score: 0.49},
		}},
		{"no bear labels", []models.Detection{
			{Label: "dog", Score: 0.9},
			{Label: "person", Score: 0.99},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&stubSource{detections: tt.detections}, 0.5, testLogger(t))
			result, err := engine.Detect(writeTestImage(t))
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}

			if result.BearDetected {
				t.Error("BearDetected = true, want false")
			}
			if result.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", result.Confidence)
			}
			if len(result.Detections) != 0 {
				t.Errorf("len(Detections) = %d, want 0", len(result.Detections))
			}
		})
	}
}

func TestEngine_Detect_MissingFile(t *testing.T) {
	engine := NewEngine(&stubSource{}, 0.5, testLogger(t))

	_, err := engine.Detect(filepath.Join(t.TempDir(), "does-not-exist.jpg"))
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Detect error = %v, want ErrImageNotFound", err)
	}
}

func TestEngine_Detect_SourceFailureDegrades(t *testing.T) {
	source := &stubSource{err: errors.New("inference request failed: connection refused")}
	engine := NewEngine(source, 0.5, testLogger(t))

	result, err := engine.Detect(writeTestImage(t))
	if err != nil {
		t.Fatalf("Detect returned error %v, want degraded result instead", err)
	}

	if result.BearDetected {
		t.Error("BearDetected = true, want false on source failure")
	}
	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", result.Confidence)
	}
	if result.Err == "" {
		t.Error("Err is empty, want failure description")
	}
}

func TestEngine_ThresholdAffectsFiltering(t *testing.T) {
	source := &stubSource{detections: []models.Detection{
		{Label: "bear", Score: 0.6},
	}}
	engine := NewEngine(source, 0.5, testLogger(t))
	image := writeTestImage(t)

	result, err := engine.Detect(image)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !result.BearDetected {
		t.Fatal("BearDetected = false at threshold 0.5, want true")
	}

	if err := engine.SetThreshold(0.7); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	result, err = engine.Detect(image)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.BearDetected {
		t.Error("BearDetected = true at threshold 0.7, want false")
	}
}

func TestIsBearLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"bear", true},
		{"Bear", true},
		{"BLACK BEAR", true},
		{"taiwan black bear", true},
		{"kumay", true},
		{"Kumay (Ursus thibetanus formosanus)", true},
		{"台灣黑熊", true},
		{"dog", false},
		{"person", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBearLabel(tt.label); got != tt.want {
			t.Errorf("IsBearLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestEngine_ModelInfo(t *testing.T) {
	engine := NewEngine(&stubSource{}, 0.5, testLogger(t))
	if err := engine.SetThreshold(0.8); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	info := engine.ModelInfo()
	if info.ConfidenceThreshold != 0.8 {
		t.Errorf("ConfidenceThreshold = %v, want live value 0.8", info.ConfidenceThreshold)
	}
	if len(info.ClassNames) == 0 {
		t.Error("ClassNames is empty")
	}
}
