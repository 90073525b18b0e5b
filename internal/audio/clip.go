// Package audio provides an in-memory WAV clip that can be sliced on
// millisecond boundaries and written back out as WAV.
package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Static errors for clip operations.
var (
	// ErrInvalidWAV is returned when the input is not a decodable WAV file.
	ErrInvalidWAV = errors.New("audio: not a valid WAV file")
	// ErrEmptyClip is returned when a clip contains no audio data at all
	// after decoding.
	ErrEmptyClip = errors.New("audio: clip contains no samples")
)

// Clip is a fully decoded WAV file held in memory. The PCM buffer is
// read-only after Load; slicing returns new clips sharing no mutable state
// with the source.
type Clip struct {
	buf *gaudio.IntBuffer
}

// Load reads and decodes a WAV file fully into memory.
// It returns ErrInvalidWAV (wrapped) for files that are missing the RIFF
// structure or use a compression the decoder does not support.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format chunk", ErrInvalidWAV)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}

	return &Clip{buf: buf}, nil
}

// SampleRate returns the clip sample rate in Hz.
func (c *Clip) SampleRate() int {
	return c.buf.Format.SampleRate
}

// Channels returns the number of interleaved channels.
func (c *Clip) Channels() int {
	return c.buf.Format.NumChannels
}

// BitDepth returns the source bit depth of the PCM data.
func (c *Clip) BitDepth() int {
	if c.buf.SourceBitDepth == 0 {
		return 16
	}
	return c.buf.SourceBitDepth
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	ch := c.Channels()
	if ch == 0 {
		return 0
	}
	return len(c.buf.Data) / ch
}

// Duration returns the total playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate() == 0 {
		return 0
	}
	return time.Duration(float64(c.Frames()) / float64(c.SampleRate()) * float64(time.Second))
}

// SliceMS returns the half-open slice [startMS, endMS) of the clip in
// milliseconds. Offsets are clamped to the clip bounds; startMS >= endMS
// yields an empty clip. The returned clip owns its own data.
func (c *Clip) SliceMS(startMS, endMS int) *Clip {
	startFrame := msToFrame(startMS, c.SampleRate())
	endFrame := msToFrame(endMS, c.SampleRate())

	total := c.Frames()
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > total {
		endFrame = total
	}
	if startFrame > endFrame {
		startFrame = endFrame
	}

	ch := c.Channels()
	data := make([]int, (endFrame-startFrame)*ch)
	copy(data, c.buf.Data[startFrame*ch:endFrame*ch])

	return &Clip{
		buf: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: ch,
				SampleRate:  c.SampleRate(),
			},
			Data:           data,
			SourceBitDepth: c.BitDepth(),
		},
	}
}

// Save encodes the clip as a PCM WAV file at path, silently overwriting any
// existing file. An empty clip produces a valid WAV file with a zero-length
// data chunk.
func (c *Clip) Save(path string) error {
	f, err := os.Create(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	enc := wav.NewEncoder(f, c.SampleRate(), c.BitDepth(), c.Channels(), 1)
	if err := enc.Write(c.buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize WAV file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// MonoFloat32 returns the clip samples as normalized float32 values in
// [-1, 1], downmixing interleaved channels by averaging. This is the input
// format the speech detector expects.
func (c *Clip) MonoFloat32() ([]float32, error) {
	ch := c.Channels()
	if ch == 0 || len(c.buf.Data) == 0 {
		return nil, ErrEmptyClip
	}

	scale := float32(int(1) << (c.BitDepth() - 1))
	frames := c.Frames()
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for j := 0; j < ch; j++ {
			sum += float32(c.buf.Data[i*ch+j])
		}
		out[i] = sum / float32(ch) / scale
	}
	return out, nil
}

// msToFrame converts a millisecond offset to a frame index, truncating.
func msToFrame(ms, sampleRate int) int {
	return ms * sampleRate / 1000
}
