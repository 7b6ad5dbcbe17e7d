package repository

import (
	"bearwatch/internal/models"
)

// DetectionRepository defines the interface for detection record operations.
// Records are append-only: created once per detect request, never updated.
type DetectionRepository interface {
	// Create operations
	Insert(rec *models.DetectionRecord) (int64, error)
	InsertBatch(records []models.DetectionRecord) error

	// Read operations
	GetByID(id int64) (*models.DetectionRecord, error)
	GetRecent(limit int) ([]models.DetectionRecord, error)
	Stats() (*models.DetectionStats, error)
}
