package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Detector mode values for the DETECTOR environment variable.
const (
	DetectorLocal  = "local"
	DetectorRemote = "remote"
)

type Config struct {
	Port                int
	UploadDirectory     string
	DBPath              string
	LogDirectory        string
	DetectorMode        string // "local" (OpenCV DNN) or "remote" (Hugging Face API)
	ModelPath           string
	ModelConfigPath     string
	HFAPIURL            string
	HFAPIToken          string
	ConfidenceThreshold float64
	MaxUploadSizeMB     int64
}

func Load() *Config {
	return &Config{
		Port:                getEnvAsInt("PORT", 8080),
		UploadDirectory:     getEnv("UPLOAD_DIR", filepath.Join(".", "static", "uploads")),
		DBPath:              getEnv("DB_PATH", filepath.Join(".", "data", "detections.db")),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		DetectorMode:        getEnv("DETECTOR", DetectorRemote),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		HFAPIURL:            getEnv("HF_API_URL", ""),
		HFAPIToken:          getEnv("HF_API_TOKEN", ""),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		MaxUploadSizeMB:     getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
