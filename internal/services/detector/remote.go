package detector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// RemoteAPI sends images to a Hugging Face Inference API object-detection
// endpoint. A single failed call degrades the result; there is no retry.
type RemoteAPI struct {
	apiURL string
	token  string
	client *http.Client
	logger *logger.Logger
}

// NewRemoteAPI creates a remote raw-detection source. An empty URL or
// token is allowed at construction time; the first detection call will
// fail with a descriptive error instead.
func NewRemoteAPI(apiURL, token string, logger *logger.Logger) *RemoteAPI {
	if apiURL == "" || token == "" {
		logger.Warning("HF_API_URL or HF_API_TOKEN not set, remote detection calls will fail")
	}

	return &RemoteAPI{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{},
		logger: logger,
	}
}

// hfDetection is one entry of the Hugging Face object-detection response.
type hfDetection struct {
	Score float64    `json:"score"`
	Label string     `json:"label"`
	Box   models.Box `json:"box"`
}

// Raw posts the image bytes to the inference endpoint and parses the
// returned detection list.
func (r *RemoteAPI) Raw(imagePath string) ([]models.Detection, error) {
	if r.apiURL == "" || r.token == "" {
		return nil, fmt.Errorf("hugging face api url or token not configured")
	}

	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(imagePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequest(http.MethodPost, r.apiURL, bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference request failed with status %d: %s", resp.StatusCode, body)
	}

	var raw []hfDetection
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("inference api returned invalid json: %w", err)
	}

	detections := make([]models.Detection, 0, len(raw))
	for _, det := range raw {
		detections = append(detections, models.Detection{
			Label: det.Label,
			Score: det.Score,
			Box:   det.Box,
		})
	}

	return detections, nil
}

// Info describes the remote model.
func (r *RemoteAPI) Info() models.ModelInfo {
	return models.ModelInfo{
		ModelType:  "Hugging Face Inference API",
		ModelPath:  r.apiURL,
		ClassNames: BearClassNames(),
	}
}
