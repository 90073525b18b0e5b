// Package bootstrap provides dependency initialization for the split API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/voxport/vadsplit-api/internal/config"
	"github.com/voxport/vadsplit-api/internal/job"
	"github.com/voxport/vadsplit-api/internal/media"
	"github.com/voxport/vadsplit-api/internal/segment"
	"github.com/voxport/vadsplit-api/internal/storage"
	"github.com/voxport/vadsplit-api/internal/vad"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	SplitService *job.SplitService
	// Detector is exposed so main can release the model on shutdown.
	Detector vad.Detector
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() error {
	if d.Detector != nil {
		return d.Detector.Close()
	}
	return nil
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	detector, err := vad.NewSileroDetector(vad.SileroConfig{
		ModelPath:    cfg.VADModelPath,
		SampleRate:   cfg.VADSampleRate,
		Threshold:    float32(cfg.VADThreshold),
		MinSilenceMs: cfg.VADMinSilenceMs,
		MinSpeechMs:  cfg.VADMinSpeechMs,
		SpeechPadMs:  cfg.VADSpeechPadMs,
	})
	if err != nil {
		return nil, fmt.Errorf("create VAD detector: %w", err)
	}

	normalizer := media.NewFFmpegNormalizer(cfg.FFmpegPath)
	exporter := segment.New(logger)
	repo := job.NewMemoryRepository()

	svc := job.NewSplitService(
		repo,
		detector,
		normalizer,
		exporter,
		store,
		logger,
		job.WithSampleRate(cfg.VADSampleRate),
		job.WithDefaultPrefix(cfg.SegmentPrefix),
	)

	return &Dependencies{
		SplitService: svc,
		Detector:     detector,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
