package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"bearwatch/internal/config"
	"bearwatch/internal/logger"
	"bearwatch/internal/repository"
	"bearwatch/internal/repository/sqlite"
	"bearwatch/internal/routes"
	"bearwatch/internal/services/annotator"
	"bearwatch/internal/services/detector"
	"bearwatch/internal/services/hub"
	"bearwatch/internal/services/storage"
)

// App is the composition root: it owns every service and wires them into
// the HTTP router. The detection engine is constructed here once and
// shared across requests.
type App struct {
	config    *config.Config
	logger    *logger.Logger
	db        *sqlite.DB
	repo      repository.DetectionRepository
	store     *storage.UploadStore
	engine    *detector.Engine
	annotator *annotator.Annotator
	hub       *hub.Hub
}

// New builds the application from configuration.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := storage.NewUploadStore(cfg.UploadDirectory, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	var source detector.RawSource
	switch cfg.DetectorMode {
	case config.DetectorLocal:
		source = detector.NewLocalModel(cfg.ModelPath, cfg.ModelConfigPath, log)
	case config.DetectorRemote:
		source = detector.NewRemoteAPI(cfg.HFAPIURL, cfg.HFAPIToken, log)
	default:
		return nil, fmt.Errorf("unknown detector mode: %q", cfg.DetectorMode)
	}

	return &App{
		config:    cfg,
		logger:    log,
		db:        db,
		repo:      sqlite.NewDetectionRepository(db),
		store:     store,
		engine:    detector.NewEngine(source, cfg.ConfidenceThreshold, log),
		annotator: annotator.New(log),
		hub:       hub.New(log),
	}, nil
}

// Run starts the background hub and the HTTP server. Blocks until the
// server stops.
func (a *App) Run() error {
	go a.hub.Run()

	router := routes.SetupRoutes(a.config, a.logger, a.store, a.engine, a.annotator, a.repo, a.hub)

	fmt.Printf("🐻 Bearwatch detection server\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Uploads: %s\n", a.config.UploadDirectory)
	fmt.Printf("🗄️  Database: %s\n", a.config.DBPath)
	fmt.Printf("🤖 Detector: %s\n", a.config.DetectorMode)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}

// Close releases the database and, for the local detector, the network.
func (a *App) Close() error {
	return a.db.Close()
}
