package vad

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamer45/silero-vad-go/speech"
)

// Compile-time check that SileroDetector implements Detector.
var _ Detector = (*SileroDetector)(nil)

// Static errors for detector construction.
var (
	// ErrModelPathRequired is returned when no ONNX model path is provided.
	ErrModelPathRequired = errors.New("vad: model path is required")
	// ErrUnsupportedSampleRate is returned for rates the model cannot handle.
	ErrUnsupportedSampleRate = errors.New("vad: sample rate must be 8000 or 16000")
)

// SileroConfig configures the Silero detector.
type SileroConfig struct {
	// ModelPath is the path to the silero_vad.onnx model file.
	ModelPath string
	// SampleRate of the audio that will be analyzed. Must be 8000 or 16000.
	SampleRate int
	// Threshold is the speech probability above which a frame counts as
	// speech. Zero means the library default (0.5).
	Threshold float32
	// MinSilenceMs is the minimum silence duration that ends a speech run.
	MinSilenceMs int
	// MinSpeechMs is the minimum duration for a run to count as speech.
	MinSpeechMs int
	// SpeechPadMs pads each detected interval on both sides.
	SpeechPadMs int
}

// SileroDetector runs the Silero VAD model through onnxruntime.
// It is not safe for concurrent use; the underlying session keeps state
// between calls and Detect resets it.
type SileroDetector struct {
	sd         *speech.Detector
	sampleRate int
}

// NewSileroDetector loads the Silero model and prepares a detector.
// The caller must Close the detector to release the onnxruntime session.
func NewSileroDetector(cfg SileroConfig) (*SileroDetector, error) {
	if cfg.ModelPath == "" {
		return nil, ErrModelPathRequired
	}
	if cfg.SampleRate != 8000 && cfg.SampleRate != 16000 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedSampleRate, cfg.SampleRate)
	}

	sd, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            cfg.ModelPath,
		SampleRate:           cfg.SampleRate,
		Threshold:            cfg.Threshold,
		MinSilenceDurationMs: cfg.MinSilenceMs,
		MinSpeechDurationMs:  cfg.MinSpeechMs,
		SpeechPadMs:          cfg.SpeechPadMs,
		LogLevel:             speech.LogLevelError,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech detector: %w", err)
	}

	return &SileroDetector{sd: sd, sampleRate: cfg.SampleRate}, nil
}

// Detect implements Detector. A trailing segment the model left unfinished
// (end reported as 0) is repaired to the end of the audio.
func (d *SileroDetector) Detect(ctx context.Context, samples []float32) ([]Interval, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	segments, err := d.sd.Detect(samples)
	if err != nil {
		return nil, fmt.Errorf("detect speech: %w", err)
	}

	totalSec := float64(len(samples)) / float64(d.sampleRate)
	intervals := make([]Interval, 0, len(segments))
	for _, seg := range segments {
		end := seg.SpeechEndAt
		if end <= 0 {
			end = totalSec
		}
		intervals = append(intervals, Interval{Start: seg.SpeechStartAt, End: end})
	}
	return intervals, nil
}

// Close implements Detector.
func (d *SileroDetector) Close() error {
	if err := d.sd.Destroy(); err != nil {
		return fmt.Errorf("destroy speech detector: %w", err)
	}
	return nil
}
