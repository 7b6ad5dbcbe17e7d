package detector

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// cocoClassNames maps SSD MobileNet COCO class ids to labels.
// Only the classes a trail camera cares about are named; everything else
// falls through as unknown and never matches the bear predicate.
var cocoClassNames = map[int]string{
	1:  "person",
	16: "bird",
	17: "cat",
	18: "dog",
	19: "horse",
	21: "cow",
	23: "bear",
}

// LocalModel runs an OpenCV DNN network (SSD MobileNet graph) in-process.
// The network is loaded lazily on the first detection call.
type LocalModel struct {
	modelPath  string
	configPath string
	logger     *logger.Logger

	mu     sync.Mutex
	net    gocv.Net
	loaded bool
}

// NewLocalModel creates a local raw-detection source. The model files are
// not touched until the first call to Raw.
func NewLocalModel(modelPath, configPath string, logger *logger.Logger) *LocalModel {
	return &LocalModel{
		modelPath:  modelPath,
		configPath: configPath,
		logger:     logger,
	}
}

// loadNet reads and configures the network. Callers must hold mu.
func (m *LocalModel) loadNet() error {
	if m.loaded {
		return nil
	}

	if _, err := os.Stat(m.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", m.modelPath)
	}
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return fmt.Errorf("model config file not found: %s", m.configPath)
	}

	net := gocv.ReadNet(m.modelPath, m.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", m.modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return fmt.Errorf("failed to set network backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return fmt.Errorf("failed to set network target: %w", err)
	}

	m.net = net
	m.loaded = true
	m.logger.Info("Detection network loaded from %s", m.modelPath)
	return nil
}

// Raw runs the network on the image and decodes the SSD output
// (N rows of [batch, classID, confidence, left, top, right, bottom],
// coordinates normalized to [0,1]) into pixel-space detections.
func (m *LocalModel) Raw(imagePath string) ([]models.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadNet(); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image: %s", imagePath)
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	cols := float64(mat.Cols())
	rows := float64(mat.Rows())

	var detections []models.Detection

	reshaped := output.Reshape(1, output.Total()/7)
	defer reshaped.Close()

	for i := 0; i < reshaped.Rows(); i++ {
		score := float64(reshaped.GetFloatAt(i, 2))
		if score <= 0 {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		label, known := cocoClassNames[classID]
		if !known {
			label = fmt.Sprintf("unknown_%d", classID)
		}

		detections = append(detections, models.Detection{
			Label: label,
			Score: score,
			Box: models.Box{
				XMin: float64(reshaped.GetFloatAt(i, 3)) * cols,
				YMin: float64(reshaped.GetFloatAt(i, 4)) * rows,
				XMax: float64(reshaped.GetFloatAt(i, 5)) * cols,
				YMax: float64(reshaped.GetFloatAt(i, 6)) * rows,
			},
		})
	}

	return detections, nil
}

// Info describes the local model.
func (m *LocalModel) Info() models.ModelInfo {
	return models.ModelInfo{
		ModelType:  "OpenCV DNN (SSD MobileNet)",
		ModelPath:  m.modelPath,
		ClassNames: BearClassNames(),
	}
}

// Close releases the loaded network, if any.
func (m *LocalModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		m.loaded = false
		return m.net.Close()
	}
	return nil
}
