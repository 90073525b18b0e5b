// Package vad provides speech interval detection for audio samples.
// It defines the Detector port and an implementation backed by the Silero
// voice-activity-detection model.
package vad

import "context"

// Interval is a detected speech region within a recording, with start and
// end offsets in seconds from the beginning of the audio. End is always
// greater than or equal to Start.
type Interval struct {
	// Start is the speech onset in seconds.
	Start float64 `json:"start"`
	// End is the speech offset in seconds.
	End float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (i Interval) Duration() float64 {
	return i.End - i.Start
}

// Detector locates speech intervals in mono PCM audio. Implementations
// return intervals in the order the model emits them, which is
// chronological in practice.
type Detector interface {
	// Detect runs voice-activity detection over normalized float32 samples
	// in [-1, 1] and returns the detected speech intervals.
	Detect(ctx context.Context, samples []float32) ([]Interval, error)

	// Close releases any resources held by the detector.
	Close() error
}
