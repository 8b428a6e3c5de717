package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Optional sinks
	OutputDir       string
	PathstoreURL    string
	PathstoreAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Per-document processing deadline
	DocTimeout time.Duration

	// Engine thresholds
	TitleBandY      float64
	MinHeadingRunes int
	TitleYTolerance float64
	MaxHeadingLevel int
}

func Load() Config {
	def := outline.DefaultConfig()
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("OUTLINE_API_KEY"),

		OutputDir:       os.Getenv("OUTPUT_DIR"),
		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		DocTimeout: envDuration("DOC_TIMEOUT", 2*time.Minute),

		TitleBandY:      envFloat("TITLE_BAND_Y", def.TitleBandY),
		MinHeadingRunes: envInt("MIN_HEADING_RUNES", def.MinHeadingRunes),
		TitleYTolerance: envFloat("TITLE_Y_TOLERANCE", def.TitleYTolerance),
		MaxHeadingLevel: envInt("MAX_HEADING_LEVEL", def.MaxLevel),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.DocTimeout <= 0 {
		cfg.DocTimeout = 2 * time.Minute
	}
	if cfg.TitleBandY <= 0 {
		cfg.TitleBandY = def.TitleBandY
	}
	if cfg.MinHeadingRunes <= 0 {
		cfg.MinHeadingRunes = def.MinHeadingRunes
	}
	if cfg.TitleYTolerance <= 0 {
		cfg.TitleYTolerance = def.TitleYTolerance
	}
	if cfg.MaxHeadingLevel <= 0 || cfg.MaxHeadingLevel > def.MaxLevel {
		cfg.MaxHeadingLevel = def.MaxLevel
	}

	return cfg
}

// Validate checks settings the HTTP service cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OUTLINE_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

// Engine returns the outline thresholds.
func (c Config) Engine() outline.Config {
	cfg := outline.DefaultConfig()
	cfg.TitleBandY = c.TitleBandY
	cfg.MinHeadingRunes = c.MinHeadingRunes
	cfg.TitleYTolerance = c.TitleYTolerance
	cfg.MaxLevel = c.MaxHeadingLevel
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
