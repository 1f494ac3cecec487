// Package config loads the engine's environment-driven configuration,
// following the same Load()/getEnv* shape the teacher repo uses.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AnalyzerWeights are the per-modality combiner weights (spec §4.G). They
// must be non-negative and sum to 1.
type AnalyzerWeights struct {
	Text   float64
	Audio  float64
	Visual float64
}

func (w AnalyzerWeights) Validate() error {
	if w.Text < 0 || w.Audio < 0 || w.Visual < 0 {
		return fmt.Errorf("analyzer weights must be non-negative, got text=%.3f audio=%.3f visual=%.3f", w.Text, w.Audio, w.Visual)
	}
	sum := w.Text + w.Audio + w.Visual
	const eps = 1e-6
	if sum < 1-eps || sum > 1+eps {
		return fmt.Errorf("analyzer weights must sum to 1, got %.6f (text=%.3f audio=%.3f visual=%.3f)", sum, w.Text, w.Audio, w.Visual)
	}
	return nil
}

// ProcessingConfig holds encoder/concurrency knobs (spec §6).
type ProcessingConfig struct {
	MaxConcurrentClips int
	FFmpegPreset       string
	OutputCRF          int
	AudioBitrate       string
}

// AIConfig configures the optional AI co-processor (spec §4.K, §6).
type AIConfig struct {
	Enabled         bool
	Model           string
	BackupModel     string
	VisionModel     string
	RateLimitPerSec float64
	APIKey          string
}

// Config is the engine's full runtime configuration.
type Config struct {
	// Storage
	StorageDir string

	// Limits
	MaxDuration   float64 // seconds
	MaxFileSize   int64   // bytes
	RetentionDays int

	// Queue transport
	RedisURL string

	// Combiner weights
	AnalyzerWeights AnalyzerWeights

	// Encoding
	Processing ProcessingConfig

	// Acquisition
	HostedCookiesFile  string
	HostedExtractorBin string // external extractor binary name, e.g. "yt-dlp"
	TranscriberBin     string // local speech-to-text binary name, e.g. "whisper-cli"

	// AI co-processor
	AI AIConfig

	// HTTP surface (internal/api)
	APIPort            string
	CorsAllowedOrigins string
}

func Load() (*Config, error) {
	// Best-effort .env load, ignored in production — same as the teacher.
	_ = godotenv.Load()

	cfg := &Config{
		StorageDir:    getEnv("STORAGE_DIR", "./data"),
		MaxDuration:   getEnvFloat("MAX_DURATION_SECONDS", 3600),
		MaxFileSize:   getEnvInt64("MAX_FILE_SIZE_BYTES", 2*1024*1024*1024),
		RetentionDays: getEnvInt("RETENTION_DAYS", 7),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),

		AnalyzerWeights: AnalyzerWeights{
			Text:   getEnvFloat("ANALYZER_WEIGHT_TEXT", 0.4),
			Audio:  getEnvFloat("ANALYZER_WEIGHT_AUDIO", 0.3),
			Visual: getEnvFloat("ANALYZER_WEIGHT_VISUAL", 0.3),
		},

		Processing: ProcessingConfig{
			MaxConcurrentClips: getEnvInt("MAX_CONCURRENT_CLIPS", 3),
			FFmpegPreset:       getEnv("FFMPEG_PRESET", "veryfast"),
			OutputCRF:          getEnvInt("OUTPUT_CRF", 23),
			AudioBitrate:       getEnv("AUDIO_BITRATE", "128k"),
		},

		HostedCookiesFile:  getEnv("HOSTED_COOKIES_FILE", ""),
		HostedExtractorBin: getEnv("HOSTED_EXTRACTOR_BIN", "yt-dlp"),
		TranscriberBin:     getEnv("TRANSCRIBER_BIN", "whisper-cli"),

		AI: AIConfig{
			Enabled:         getEnvBool("AI_ENABLED", false),
			Model:           getEnv("AI_MODEL", "gpt-4o-mini"),
			BackupModel:     getEnv("AI_BACKUP_MODEL", "gpt-4o-mini"),
			VisionModel:     getEnv("AI_VISION_MODEL", ""),
			RateLimitPerSec: getEnvFloat("AI_RATE_LIMIT_PER_SEC", 1.0),
			APIKey:          getEnv("AI_API_KEY", ""),
		},

		APIPort:            getEnv("API_PORT", "8080"),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
	}

	if cfg.StorageDir == "" {
		return nil, fmt.Errorf("STORAGE_DIR is required")
	}

	if err := cfg.AnalyzerWeights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer weights: %w", err)
	}

	if cfg.Processing.MaxConcurrentClips < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_CLIPS must be >= 1")
	}

	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is required when AI_ENABLED=true")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
