package job

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/voxport/vadsplit-api/internal/audio"
	"github.com/voxport/vadsplit-api/internal/media"
	"github.com/voxport/vadsplit-api/internal/segment"
	"github.com/voxport/vadsplit-api/internal/storage"
	"github.com/voxport/vadsplit-api/internal/vad"
)

// ErrNormalizerRequired is returned when the input audio needs transcoding
// but no normalizer is configured.
var ErrNormalizerRequired = errors.New("job: input audio needs normalization but no normalizer is configured")

// Exporter is the port the service uses to write segment files.
// *segment.Exporter satisfies it.
type Exporter interface {
	Export(ctx context.Context, inputPath string, intervals []vad.Interval, opts segment.Options) (int, error)
}

// SplitInput contains the input parameters for a split request.
type SplitInput struct {
	// AudioBase64 is the base64-encoded source WAV recording.
	AudioBase64 string
	// Prefix is used in segment filenames; the service default applies
	// when empty.
	Prefix string
	// PushToS3 indicates whether to upload the exported segments to S3.
	PushToS3 bool
}

// SplitService orchestrates the split pipeline: store the upload, bring the
// audio into the detector's sample format, detect speech intervals, export
// one WAV per interval, and optionally deliver segments to S3.
type SplitService struct {
	repo       Repository
	detector   vad.Detector
	normalizer media.Normalizer
	exporter   Exporter
	store      storage.Storage
	logger     *slog.Logger

	// sampleRate is the rate the detector operates at.
	sampleRate int
	// defaultPrefix applies when a request does not name one.
	defaultPrefix string
}

// ServiceOption configures a SplitService.
type ServiceOption func(*SplitService)

// WithSampleRate sets the detector sample rate (default 16000).
func WithSampleRate(rate int) ServiceOption {
	return func(s *SplitService) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithDefaultPrefix sets the fallback segment filename prefix.
func WithDefaultPrefix(prefix string) ServiceOption {
	return func(s *SplitService) {
		if prefix != "" {
			s.defaultPrefix = prefix
		}
	}
}

// NewSplitService creates a new SplitService.
func NewSplitService(
	repo Repository,
	detector vad.Detector,
	normalizer media.Normalizer,
	exporter Exporter,
	store storage.Storage,
	logger *slog.Logger,
	opts ...ServiceOption,
) *SplitService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SplitService{
		repo:          repo,
		detector:      detector,
		normalizer:    normalizer,
		exporter:      exporter,
		store:         store,
		logger:        logger,
		sampleRate:    16000,
		defaultPrefix: "segment",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob creates a new job and persists it in PENDING state.
func (s *SplitService) CreateJob(ctx context.Context, input SplitInput) (*Job, error) {
	job := New()
	job.Prefix = input.Prefix
	if job.Prefix == "" {
		job.Prefix = s.defaultPrefix
	}
	job.PushToS3 = input.PushToS3

	s.logger.Info("creating split job",
		slog.String("job_id", job.ID),
		slog.String("prefix", job.Prefix),
		slog.Bool("push_to_s3", input.PushToS3),
	)

	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return job, nil
}

// GetJob retrieves a job by ID.
func (s *SplitService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ProcessExistingJob runs the split pipeline for a previously created job.
// The first error fails the job; segments written before the failure remain
// on disk.
func (s *SplitService) ProcessExistingJob(ctx context.Context, jobID string, input SplitInput) (*Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.Start(); err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.process(ctx, job, input); err != nil {
		_ = job.Fail(err.Error())
		if saveErr := s.repo.Save(ctx, job); saveErr != nil {
			s.logger.Error("failed to persist failed job",
				slog.String("job_id", job.ID),
				slog.String("error", saveErr.Error()),
			)
		}
		s.logger.Error("split job failed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return job, err
	}

	if err := job.Complete(); err != nil {
		return nil, fmt.Errorf("complete job: %w", err)
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("split audio into segments",
		slog.String("job_id", job.ID),
		slog.Int("segments", job.SegmentCount),
	)
	return job, nil
}

// process executes the pipeline steps against the given job.
func (s *SplitService) process(ctx context.Context, job *Job, input SplitInput) error {
	raw, err := base64.StdEncoding.DecodeString(input.AudioBase64)
	if err != nil {
		return fmt.Errorf("decode audio payload: %w", err)
	}

	inputPath, err := s.store.SaveUpload(ctx, job.ID, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	job.InputAudioPath = inputPath

	sourcePath, err := s.prepareAudio(ctx, inputPath)
	if err != nil {
		return err
	}

	clip, err := audio.Load(sourcePath)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}

	samples, err := clip.MonoFloat32()
	if err != nil {
		return fmt.Errorf("extract samples: %w", err)
	}

	intervals, err := s.detector.Detect(ctx, samples)
	if err != nil {
		return fmt.Errorf("detect speech: %w", err)
	}
	s.logger.Info("speech detection finished",
		slog.String("job_id", job.ID),
		slog.Int("intervals", len(intervals)),
		slog.Duration("audio", clip.Duration()),
	)

	outputDir, err := s.store.SegmentDir(job.ID)
	if err != nil {
		return err
	}

	count, err := s.exporter.Export(ctx, sourcePath, intervals, segment.Options{
		OutputDir: outputDir,
		Prefix:    job.Prefix,
	})
	if err != nil {
		return fmt.Errorf("export segments: %w", err)
	}

	segments := make([]Segment, 0, count)
	for i, iv := range intervals[:count] {
		name := fmt.Sprintf("%s-%d.wav", job.Prefix, i+1)
		segments = append(segments, Segment{
			Index:    i + 1,
			Start:    iv.Start,
			End:      iv.End,
			FileName: name,
			Path:     filepath.Join(outputDir, name),
		})
	}

	if input.PushToS3 {
		if err := s.uploadSegments(ctx, job.ID, segments); err != nil {
			return err
		}
	}

	job.SetSegments(segments)
	return nil
}

// prepareAudio returns a path to audio in the detector's format, normalizing
// through ffmpeg when the source does not match.
func (s *SplitService) prepareAudio(ctx context.Context, inputPath string) (string, error) {
	clip, err := audio.Load(inputPath)
	if err != nil {
		return "", fmt.Errorf("load audio: %w", err)
	}

	if clip.SampleRate() == s.sampleRate && clip.Channels() == 1 {
		return inputPath, nil
	}

	if s.normalizer == nil {
		return "", fmt.Errorf("%w: got %d Hz, %d channel(s)",
			ErrNormalizerRequired, clip.SampleRate(), clip.Channels())
	}

	normPath := inputPath[:len(inputPath)-len(filepath.Ext(inputPath))] + "_norm.wav"
	if err := s.normalizer.Normalize(ctx, inputPath, normPath, s.sampleRate); err != nil {
		return "", fmt.Errorf("normalize audio: %w", err)
	}

	s.logger.Debug("normalized input audio",
		slog.Int("sample_rate", s.sampleRate),
		slog.String("path", normPath),
	)
	return normPath, nil
}

// uploadSegments pushes each exported file to S3 and records its URL.
func (s *SplitService) uploadSegments(ctx context.Context, jobID string, segments []Segment) error {
	for i := range segments {
		f, err := s.store.Open(ctx, segments[i].Path)
		if err != nil {
			return fmt.Errorf("open segment %d: %w", segments[i].Index, err)
		}

		url, err := s.store.Upload(ctx, storage.SegmentKey(jobID, segments[i].FileName), f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("upload segment %d: %w", segments[i].Index, err)
		}
		segments[i].URL = url
	}
	return nil
}
