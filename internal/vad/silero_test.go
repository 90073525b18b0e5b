package vad

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
)

// modelPath skips the test unless a Silero model is available. Running the
// real detector requires the ONNX model file and a linked onnxruntime.
func modelPath(t *testing.T) string {
	t.Helper()
	path := os.Getenv("SILERO_MODEL_PATH")
	if path == "" {
		t.Skip("SILERO_MODEL_PATH not set, skipping detector integration test")
	}
	return path
}

func TestNewSileroDetector_MissingModelPath(t *testing.T) {
	_, err := NewSileroDetector(SileroConfig{SampleRate: 16000})
	if !errors.Is(err, ErrModelPathRequired) {
		t.Errorf("error = %v, want ErrModelPathRequired", err)
	}
}

func TestNewSileroDetector_BadSampleRate(t *testing.T) {
	_, err := NewSileroDetector(SileroConfig{ModelPath: "model.onnx", SampleRate: 44100})
	if !errors.Is(err, ErrUnsupportedSampleRate) {
		t.Errorf("error = %v, want ErrUnsupportedSampleRate", err)
	}
}

func TestIntervalDuration(t *testing.T) {
	iv := Interval{Start: 1.5, End: 4.25}
	if got := iv.Duration(); got != 2.75 {
		t.Errorf("Duration() = %f, want 2.75", got)
	}
}

func TestSileroDetector_Detect(t *testing.T) {
	path := modelPath(t)

	det, err := NewSileroDetector(SileroConfig{
		ModelPath:    path,
		SampleRate:   16000,
		MinSilenceMs: 100,
		MinSpeechMs:  100,
	})
	if err != nil {
		t.Fatalf("NewSileroDetector() error = %v", err)
	}
	defer det.Close()

	// Two seconds of silence, one second of a loud tone, two more of silence.
	// The model should not report silence-only regions as speech.
	samples := make([]float32, 5*16000)
	for i := 2 * 16000; i < 3*16000; i++ {
		samples[i] = 0.8 * float32(math.Sin(2*math.Pi*220*float64(i)/16000))
	}

	intervals, err := det.Detect(context.Background(), samples)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	for _, iv := range intervals {
		if iv.End < iv.Start {
			t.Errorf("interval end %f before start %f", iv.End, iv.Start)
		}
		if iv.End > 5.0 {
			t.Errorf("interval end %f beyond audio length", iv.End)
		}
	}
}

func TestSileroDetector_CancelledContext(t *testing.T) {
	path := modelPath(t)

	det, err := NewSileroDetector(SileroConfig{ModelPath: path, SampleRate: 16000})
	if err != nil {
		t.Fatalf("NewSileroDetector() error = %v", err)
	}
	defer det.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := det.Detect(ctx, make([]float32, 16000)); err == nil {
		t.Error("expected error with cancelled context")
	}
}
