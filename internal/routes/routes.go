package routes

import (
	"net/http"

	"bearwatch/internal/config"
	"bearwatch/internal/handlers"
	"bearwatch/internal/logger"
	"bearwatch/internal/repository"
	"bearwatch/internal/services/detector"
	"bearwatch/internal/services/hub"
	"bearwatch/internal/services/storage"
)

// SetupRoutes registers all HTTP endpoints on a fresh mux.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, store *storage.UploadStore,
	engine *detector.Engine, annotator handlers.Annotator, repo repository.DetectionRepository,
	eventHub *hub.Hub) http.Handler {
	mux := http.NewServeMux()

	// Detection pipeline
	mux.HandleFunc("/detect", handlers.DetectHandler(cfg, logger, store, engine, annotator, repo, eventHub))

	// Records
	mux.HandleFunc("/recent-detections", handlers.RecentDetectionsHandler(repo, logger))
	mux.HandleFunc("/statistics", handlers.StatisticsHandler(repo, store, logger))

	// Stored files
	mux.HandleFunc("/uploads/", handlers.UploadsHandler(store, logger))

	// System
	mux.HandleFunc("/health", handlers.HealthHandler())
	mux.HandleFunc("/model-info", handlers.ModelInfoHandler(engine))
	mux.HandleFunc("/set-confidence", handlers.SetConfidenceHandler(engine, logger))

	// Live event feed
	mux.HandleFunc("/ws", handlers.WebsocketHandler(eventHub, logger))

	return mux
}
