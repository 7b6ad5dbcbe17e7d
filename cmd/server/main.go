package main

import (
	"log"

	"github.com/joho/godotenv"

	"bearwatch/internal/app"
	"bearwatch/internal/config"
	"bearwatch/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logg := logger.New(cfg.LogDirectory)

	application, err := app.New(cfg, logg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
