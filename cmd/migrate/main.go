package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bearwatch/internal/models"
	"bearwatch/internal/repository/sqlite"
)

// Backfills detection records from an existing upload directory. Originals
// are uploads named "<uuid>_<name>.<ext>"; a sibling "<base>_detected.jpg"
// marks a positive detection. Camera and location metadata is not
// recoverable from filenames, so records get the request defaults.
func main() {
	uploadsDir := flag.String("uploads", "static/uploads", "Directory containing stored uploads")
	dbPath := flag.String("db", "data/detections.db", "Database path")
	flag.Parse()

	fmt.Printf("Backfilling records from %s into %s\n", *uploadsDir, *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	entries, err := os.ReadDir(*uploadsDir)
	if err != nil {
		log.Fatalf("Failed to read uploads directory: %v", err)
	}

	// Index annotated results so originals can claim them.
	results := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, "_detected.jpg") {
			results[strings.TrimSuffix(name, "_detected.jpg")] = name
		}
	}

	var records []models.DetectionRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, "_detected.jpg") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", name, err)
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		resultName, bearDetected := results[base]

		records = append(records, models.DetectionRecord{
			CameraID:            "unknown",
			Location:            "未知位置",
			BearDetected:        bearDetected,
			DetectedAt:          info.ModTime().UTC(),
			ImageFilename:       name,
			ResultImageFilename: resultName,
		})
	}

	if len(records) == 0 {
		fmt.Println("No uploads found to backfill")
		return
	}

	repo := sqlite.NewDetectionRepository(db)
	if err := repo.InsertBatch(records); err != nil {
		log.Fatalf("Failed to insert records: %v", err)
	}

	fmt.Printf("✅ Backfilled %d records\n", len(records))

	stats, err := repo.Stats()
	if err == nil {
		fmt.Printf("\n📊 Database statistics:\n")
		fmt.Printf("   Total detections: %d\n", stats.TotalDetections)
		fmt.Printf("   Bear detections:  %d\n", stats.BearDetections)
		fmt.Printf("   Detection rate:   %.2f%%\n", stats.DetectionRate)
	}
}
