// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// ErrModelPathRequired is returned when VAD_MODEL_PATH is not set.
var ErrModelPathRequired = errors.New("config: VAD_MODEL_PATH is required")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// VAD settings
	VADModelPath    string  `env:"VAD_MODEL_PATH, required" json:"vad_model_path"`
	VADSampleRate   int     `env:"VAD_SAMPLE_RATE, default=16000" json:"vad_sample_rate"`
	VADThreshold    float64 `env:"VAD_THRESHOLD, default=0.5" json:"vad_threshold"`
	VADMinSilenceMs int     `env:"VAD_MIN_SILENCE_MS, default=500" json:"vad_min_silence_ms"`
	VADMinSpeechMs  int     `env:"VAD_MIN_SPEECH_MS, default=250" json:"vad_min_speech_ms"`
	VADSpeechPadMs  int     `env:"VAD_SPEECH_PAD_MS, default=30" json:"vad_speech_pad_ms"`

	// Workspace settings
	TempDir    string `env:"TEMP_DIR, default=/tmp/vadsplit" json:"temp_dir"`
	FFmpegPath string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`

	// Default prefix for segment filenames when a request does not set one.
	SegmentPrefix string `env:"SEGMENT_PREFIX, default=segment" json:"segment_prefix"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "VAD_MODEL_PATH") {
			return nil, ErrModelPathRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.VADModelPath == "" {
		return ErrModelPathRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, VADModelPath: %s, VADSampleRate: %d, TempDir: %s, SegmentPrefix: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.VADModelPath,
		c.VADSampleRate,
		c.TempDir,
		c.SegmentPrefix,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
