// Package synth generates the sample buffers behind every placeholder asset:
// sine tones, stereo binaural beats and noise.
package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
)

// DefaultSampleRate is the rate every asset is synthesized and exported at.
const DefaultSampleRate = 44100

// ErrInvalidParameter is returned for non-positive durations, frequencies or
// sample rates, and for unknown noise kinds.
var ErrInvalidParameter = errors.New("invalid parameter")

// Buffer is an in-memory block of float samples in [-1, 1].
// Channels holds one slice per channel; all slices have the same length.
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// newBuffer allocates a zeroed buffer with the given channel count.
func newBuffer(sampleRate, channels, frames int) *Buffer {
	b := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float64, channels),
	}
	for i := range b.Channels {
		b.Channels[i] = make([]float64, frames)
	}
	return b
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// NumChannels returns 1 for mono and 2 for stereo buffers.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// IsStereo reports whether the buffer carries separate left/right channels.
func (b *Buffer) IsStereo() bool {
	return len(b.Channels) == 2
}

// Channel returns the samples of channel i.
func (b *Buffer) Channel(i int) []float64 {
	return b.Channels[i]
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Attenuate scales every sample down by db decibels.
func (b *Buffer) Attenuate(db float64) {
	gain := DbToLinear(-db)
	for _, ch := range b.Channels {
		for i := range ch {
			ch[i] *= gain
		}
	}
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, ch := range b.Channels {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// PCM16 returns interleaved 16-bit signed little-endian PCM.
// The channel count of the buffer is preserved.
func (b *Buffer) PCM16() []byte {
	frames := b.Frames()
	channels := b.NumChannels()
	out := make([]byte, frames*channels*2)
	off := 0
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			s := clamp16(b.Channels[c][i])
			out[off] = byte(s)
			out[off+1] = byte(s >> 8)
			off += 2
		}
	}
	return out
}

// Streamer exposes the buffer as a beep.Streamer. Mono buffers are
// duplicated to both beep channels.
func (b *Buffer) Streamer() beep.Streamer {
	return &bufferStreamer{buf: b}
}

// Format returns the beep format describing the buffer at 16-bit precision.
func (b *Buffer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(b.SampleRate),
		NumChannels: b.NumChannels(),
		Precision:   2,
	}
}

type bufferStreamer struct {
	buf *Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	left := s.buf.Channels[0]
	right := left
	if s.buf.IsStereo() {
		right = s.buf.Channels[1]
	}
	for n < len(samples) && s.pos < frames {
		samples[n][0] = left[s.pos]
		samples[n][1] = right[s.pos]
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}

// DbToLinear converts a decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibels.
// Inverse of DbToLinear, floored at -120 dB.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return -120.0
	}
	return 20.0 * math.Log10(linear)
}

// frameCount converts a millisecond duration to a frame count at rate.
func frameCount(durationMs, sampleRate int) int {
	return int(math.Round(float64(durationMs) * float64(sampleRate) / 1000.0))
}

// validateTiming rejects non-positive durations and sample rates.
func validateTiming(durationMs, sampleRate int) error {
	if durationMs <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d ms", ErrInvalidParameter, durationMs)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d Hz", ErrInvalidParameter, sampleRate)
	}
	return nil
}

// clamp16 converts a float64 in [-1, 1] to int16, clamping to avoid overflow.
func clamp16(f float64) int16 {
	s := f * 32767.0
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
