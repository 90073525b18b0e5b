// Package segment exports per-utterance WAV files from a source recording
// and a sequence of detected speech intervals.
package segment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/voxport/vadsplit-api/internal/audio"
	"github.com/voxport/vadsplit-api/internal/vad"
)

// Options configures a single export run.
type Options struct {
	// OutputDir is where segment files are written. When empty, the
	// directory of the input file is used. Created if missing, including
	// parents.
	OutputDir string
	// Prefix is used verbatim in output filenames: {prefix}-{n}.wav with n
	// starting at 1. Not validated; the caller is responsible for choosing
	// something filesystem-safe.
	Prefix string
}

// Exporter writes one WAV file per speech interval. It is stateless across
// runs; a single export is a synchronous, single-pass batch.
type Exporter struct {
	logger   *slog.Logger
	progress io.Writer
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithProgressWriter redirects the human-readable progress lines, which go
// to os.Stdout by default. The lines are for observability only and are not
// a stable machine-readable format.
func WithProgressWriter(w io.Writer) Option {
	return func(e *Exporter) {
		e.progress = w
	}
}

// New creates an Exporter.
func New(logger *slog.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		logger:   logger,
		progress: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export slices the WAV file at inputPath into one output file per interval,
// in input order, and returns the number of segments written.
//
// Interval seconds are converted to integer millisecond offsets by
// truncation (not rounding), and each slice is half-open: the sample at the
// end offset is excluded. A degenerate interval (start == end, or start
// beyond end) still produces a counted, zero-length segment file, so the
// return value always equals len(intervals).
//
// The first I/O error aborts the run. Files written before the failure are
// left on disk; there is no rollback.
func (e *Exporter) Export(ctx context.Context, inputPath string, intervals []vad.Interval, opts Options) (int, error) {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	clip, err := audio.Load(inputPath)
	if err != nil {
		return 0, fmt.Errorf("load source audio: %w", err)
	}

	for i, iv := range intervals {
		select {
		case <-ctx.Done():
			return i, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		// Truncating conversion keeps slice boundaries bit-compatible with
		// earlier runs over the same timestamps.
		startMS := int(iv.Start * 1000)
		endMS := int(iv.End * 1000)

		name := fmt.Sprintf("%s-%d.wav", opts.Prefix, i+1)
		outPath := filepath.Join(outputDir, name)

		if err := clip.SliceMS(startMS, endMS).Save(outPath); err != nil {
			return i, fmt.Errorf("export segment %d: %w", i+1, err)
		}

		fmt.Fprintf(e.progress, "Saved %s: %vs to %vs\n", name, iv.Start, iv.End)
		e.logger.Debug("segment exported",
			slog.String("file", outPath),
			slog.Float64("start_sec", iv.Start),
			slog.Float64("end_sec", iv.End),
		)
	}

	return len(intervals), nil
}
