// Package media provides audio preprocessing for the split pipeline.
// The speech detector only accepts 8/16 kHz mono PCM, so recordings in any
// other layout are normalized first.
package media

import "context"

// Normalizer defines the interface for audio normalization operations.
// Implementations should use ffmpeg or similar tools for transcoding.
type Normalizer interface {
	// Normalize transcodes the audio file at src into a mono 16-bit PCM WAV
	// at dst with the given sample rate, overwriting dst if it exists.
	Normalize(ctx context.Context, src, dst string, sampleRate int) error

	// ProbeDuration returns the duration in seconds of a media file.
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
