package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Static errors for media operations.
var (
	// ErrInvalidSampleRate is returned when the target sample rate is not positive.
	ErrInvalidSampleRate = errors.New("invalid sample rate: must be positive")
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// Compile-time check that FFmpegNormalizer implements Normalizer.
var _ Normalizer = (*FFmpegNormalizer)(nil)

// FFmpegNormalizer implements Normalizer using the ffmpeg CLI.
type FFmpegNormalizer struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegNormalizer creates a new FFmpegNormalizer.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegNormalizer(ffmpegPath string) *FFmpegNormalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegNormalizer{ffmpegPath: ffmpegPath}
}

// Normalize transcodes src to a mono 16-bit PCM WAV at the requested rate.
func (p *FFmpegNormalizer) Normalize(ctx context.Context, src, dst string, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}

	args := []string{
		"-y",      // Overwrite output file without asking
		"-i", src, // Input file
		"-ar", strconv.Itoa(sampleRate), // Target sample rate
		"-ac", "1", // Downmix to mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		dst,
	}

	return p.runFFmpeg(ctx, args)
}

// ProbeDuration returns the duration in seconds of a media file.
// It uses ffprobe to extract the duration metadata.
func (p *FFmpegNormalizer) ProbeDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - path comes from trusted internal code
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegNormalizer) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
