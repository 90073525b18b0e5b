// Command vadsplit splits a WAV recording into per-utterance files using
// Silero voice activity detection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxport/vadsplit-api/internal/audio"
	"github.com/voxport/vadsplit-api/internal/media"
	"github.com/voxport/vadsplit-api/internal/segment"
	"github.com/voxport/vadsplit-api/internal/vad"
)

func main() {
	inputPath := flag.String("input", "", "Path to the source WAV file")
	modelPath := flag.String("model", os.Getenv("VAD_MODEL_PATH"), "Path to the Silero VAD ONNX model")
	outputDir := flag.String("output-dir", "", "Directory for segment files (default: input file's directory)")
	prefix := flag.String("prefix", "segment", "Segment filename prefix ({prefix}-{n}.wav)")
	sampleRate := flag.Int("sr", 16000, "Detector sample rate (8000 or 16000)")
	threshold := flag.Float64("threshold", 0.5, "Speech detection probability threshold")
	minSilence := flag.Int("min-silence", 500, "Minimum silence duration (ms)")
	minSpeech := flag.Int("min-speech", 250, "Minimum speech duration (ms)")
	speechPad := flag.Int("speech-pad", 30, "Padding added around speech segments (ms)")
	ffmpegPath := flag.String("ffmpeg", "", "Path to the ffmpeg binary (default: ffmpeg from PATH)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(logger, options{
		inputPath:  *inputPath,
		modelPath:  *modelPath,
		outputDir:  *outputDir,
		prefix:     *prefix,
		sampleRate: *sampleRate,
		threshold:  *threshold,
		minSilence: *minSilence,
		minSpeech:  *minSpeech,
		speechPad:  *speechPad,
		ffmpegPath: *ffmpegPath,
	}); err != nil {
		logger.Error("split failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type options struct {
	inputPath  string
	modelPath  string
	outputDir  string
	prefix     string
	sampleRate int
	threshold  float64
	minSilence int
	minSpeech  int
	speechPad  int
	ffmpegPath string
}

func run(logger *slog.Logger, opts options) error {
	if opts.inputPath == "" {
		return fmt.Errorf("the -input flag is required")
	}
	if opts.modelPath == "" {
		return fmt.Errorf("the -model flag or VAD_MODEL_PATH is required")
	}

	ctx := context.Background()

	sourcePath, err := prepareAudio(ctx, logger, opts)
	if err != nil {
		return err
	}

	clip, err := audio.Load(sourcePath)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}
	logger.Debug("audio loaded",
		slog.Int("sample_rate", clip.SampleRate()),
		slog.Duration("duration", clip.Duration()),
	)

	samples, err := clip.MonoFloat32()
	if err != nil {
		return fmt.Errorf("extract samples: %w", err)
	}

	detector, err := vad.NewSileroDetector(vad.SileroConfig{
		ModelPath:    opts.modelPath,
		SampleRate:   opts.sampleRate,
		Threshold:    float32(opts.threshold),
		MinSilenceMs: opts.minSilence,
		MinSpeechMs:  opts.minSpeech,
		SpeechPadMs:  opts.speechPad,
	})
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}
	defer func() {
		if err := detector.Close(); err != nil {
			logger.Error("failed to release detector", slog.String("error", err.Error()))
		}
	}()

	intervals, err := detector.Detect(ctx, samples)
	if err != nil {
		return fmt.Errorf("detect speech: %w", err)
	}

	exporter := segment.New(logger)
	count, err := exporter.Export(ctx, sourcePath, intervals, segment.Options{
		OutputDir: opts.outputDir,
		Prefix:    opts.prefix,
	})
	if err != nil {
		return fmt.Errorf("export segments: %w", err)
	}

	fmt.Printf("Split audio into %d segments\n", count)
	return nil
}

// prepareAudio transcodes the input through ffmpeg when it is not already
// mono at the detector sample rate.
func prepareAudio(ctx context.Context, logger *slog.Logger, opts options) (string, error) {
	clip, err := audio.Load(opts.inputPath)
	if err != nil {
		return "", fmt.Errorf("load audio: %w", err)
	}

	if clip.SampleRate() == opts.sampleRate && clip.Channels() == 1 {
		return opts.inputPath, nil
	}

	normalizer := media.NewFFmpegNormalizer(opts.ffmpegPath)
	ext := filepath.Ext(opts.inputPath)
	normPath := strings.TrimSuffix(opts.inputPath, ext) + "_norm.wav"
	if err := normalizer.Normalize(ctx, opts.inputPath, normPath, opts.sampleRate); err != nil {
		return "", fmt.Errorf("normalize audio: %w", err)
	}

	logger.Info("normalized input audio",
		slog.Int("from_rate", clip.SampleRate()),
		slog.Int("to_rate", opts.sampleRate),
		slog.String("path", normPath),
	)
	return normPath, nil
}
