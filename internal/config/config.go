package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries everything the binaries read from the environment.
type Config struct {
	Port           string
	MediaDir       string
	ResultsDBPath  string
	DatabaseURL    string
	MigrationsPath string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	WorkerCount        int
	FrameSize          int
	DetectorConfidence float64
	OCRConfidence      float64
}

// Load reads configuration from the environment, applying defaults for
// everything except the credentials and the job database URL.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		MediaDir:       getEnv("MEDIA_DIR", "./media"),
		ResultsDBPath:  getEnv("RESULTS_DB_PATH", "./analysis_results.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
	}

	var err error
	if cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.FrameSize, err = getEnvInt("FRAME_SIZE", 512); err != nil {
		return nil, err
	}
	if cfg.DetectorConfidence, err = getEnvFloat("DETECTOR_CONFIDENCE", 0.25); err != nil {
		return nil, err
	}
	if cfg.OCRConfidence, err = getEnvFloat("OCR_CONFIDENCE", 0.5); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}
