package sqlite

import (
	"database/sql"
	"fmt"
	"math"

	"bearwatch/internal/models"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Insert adds a new detection record to the database and returns its id.
func (r *DetectionRepository) Insert(rec *models.DetectionRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO detections (camera_id, location, bear_detected, confidence, detected_at, image_filename, result_image_filename)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.CameraID, rec.Location, rec.BearDetected, nullableFloat(rec.Confidence), rec.DetectedAt,
		nullableString(rec.ImageFilename), nullableString(rec.ResultImageFilename))
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection record: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple records in a single transaction.
func (r *DetectionRepository) InsertBatch(records []models.DetectionRecord) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO detections (camera_id, location, bear_detected, confidence, detected_at, image_filename, result_image_filename)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.CameraID, rec.Location, rec.BearDetected, nullableFloat(rec.Confidence),
			rec.DetectedAt, nullableString(rec.ImageFilename), nullableString(rec.ResultImageFilename)); err != nil {
			return fmt.Errorf("failed to insert detection record: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a single detection record.
func (r *DetectionRepository) GetByID(id int64) (*models.DetectionRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`
		SELECT id, camera_id, location, bear_detected, confidence, detected_at, image_filename, result_image_filename
		FROM detections WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query detection record: %w", err)
	}
	return rec, nil
}

// GetRecent retrieves the newest records first, at most limit of them.
func (r *DetectionRepository) GetRecent(limit int) ([]models.DetectionRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, camera_id, location, bear_detected, confidence, detected_at, image_filename, result_image_filename
		FROM detections ORDER BY detected_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection records: %w", err)
	}
	defer rows.Close()

	var records []models.DetectionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection record: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// Stats returns aggregate statistics over all stored records.
// DetectionRate is a percentage rounded to two decimals, 0 when the table is empty.
func (r *DetectionRepository) Stats() (*models.DetectionStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.DetectionStats{}

	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&stats.TotalDetections)
	if err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}

	err = r.db.Conn().QueryRow(`SELECT COUNT(*) FROM detections WHERE bear_detected = 1`).Scan(&stats.BearDetections)
	if err != nil {
		return nil, fmt.Errorf("failed to count bear detections: %w", err)
	}

	if stats.TotalDetections > 0 {
		rate := float64(stats.BearDetections) / float64(stats.TotalDetections) * 100
		stats.DetectionRate = math.Round(rate*100) / 100
	}

	stats.RecentCount = stats.TotalDetections
	if stats.RecentCount > 10 {
		stats.RecentCount = 10
	}

	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*models.DetectionRecord, error) {
	var rec models.DetectionRecord
	var confidence sql.NullFloat64
	var imageFilename, resultImageFilename sql.NullString

	err := s.Scan(&rec.ID, &rec.CameraID, &rec.Location, &rec.BearDetected, &confidence,
		&rec.DetectedAt, &imageFilename, &resultImageFilename)
	if err != nil {
		return nil, err
	}

	if confidence.Valid {
		rec.Confidence = &confidence.Float64
	}
	rec.ImageFilename = imageFilename.String
	rec.ResultImageFilename = resultImageFilename.String

	return &rec, nil
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
