package annotator

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// ErrInvalidImage is returned when the source image cannot be decoded.
var ErrInvalidImage = errors.New("image could not be decoded")

var (
	boxColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	textColor = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

const (
	boxThickness  = 2
	fontScale     = 0.7
	fontThickness = 2
	labelPadding  = 5
)

// Annotator draws detection boxes and label tags onto copies of source
// images. The original file is never modified.
type Annotator struct {
	logger *logger.Logger
}

// New creates an Annotator.
func New(logger *logger.Logger) *Annotator {
	return &Annotator{logger: logger}
}

// Annotate draws each detection onto a copy of the image at imagePath and
// writes the result as a JPEG into outputDir (created if absent). It
// returns the generated filename, not the full path.
func (a *Annotator) Annotate(imagePath string, detections []models.Detection, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, imagePath)
	}

	for _, det := range detections {
		if err := a.drawDetection(&mat, det); err != nil {
			return "", err
		}
	}

	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	outputFilename := name + "_detected.jpg"
	outputPath := filepath.Join(outputDir, outputFilename)

	if ok := gocv.IMWrite(outputPath, mat); !ok {
		return "", fmt.Errorf("failed to write annotated image: %s", outputPath)
	}

	a.logger.Info("Annotated image written: %s (%d detection(s))", outputFilename, len(detections))
	return outputFilename, nil
}

// drawDetection draws one bounding box plus a filled label tag reading
// "label: score". The tag sits above the box, or below it when it would
// clip the top edge of the image.
func (a *Annotator) drawDetection(mat *gocv.Mat, det models.Detection) error {
	xmin := int(det.Box.XMin)
	ymin := int(det.Box.YMin)
	xmax := int(det.Box.XMax)
	ymax := int(det.Box.YMax)

	if err := gocv.Rectangle(mat, image.Rect(xmin, ymin, xmax, ymax), boxColor, boxThickness); err != nil {
		return fmt.Errorf("failed to draw rectangle: %w", err)
	}

	text := fmt.Sprintf("%s: %.2f", det.Label, det.Score)
	textSize := gocv.GetTextSize(text, gocv.FontHersheySimplex, fontScale, fontThickness)

	tagTop := ymin - textSize.Y - labelPadding
	tagBottom := ymin - labelPadding
	if tagTop < 0 {
		tagTop = ymax + labelPadding
		tagBottom = ymax + labelPadding + textSize.Y
	}

	tag := image.Rect(xmin, tagTop, xmin+textSize.X, tagBottom)
	if err := gocv.Rectangle(mat, tag, boxColor, -1); err != nil {
		return fmt.Errorf("failed to draw label background: %w", err)
	}
	if err := gocv.PutText(mat, text, image.Pt(xmin, tagBottom-2), gocv.FontHersheySimplex, fontScale, textColor, fontThickness); err != nil {
		return fmt.Errorf("failed to draw label text: %w", err)
	}

	return nil
}
