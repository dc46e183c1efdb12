package synth

import (
	"fmt"
	"math"
)

// ToneAttenuationDB keeps tones and binaural beats at a comfortable level.
const ToneAttenuationDB = 20.0

// Tone generates a mono sine wave at frequencyHz lasting durationMs,
// attenuated by ToneAttenuationDB.
func Tone(frequencyHz float64, durationMs, sampleRate int) (*Buffer, error) {
	if err := validateTiming(durationMs, sampleRate); err != nil {
		return nil, err
	}
	if err := validateFrequency(frequencyHz, sampleRate); err != nil {
		return nil, err
	}

	buf := newBuffer(sampleRate, 1, frameCount(durationMs, sampleRate))
	fillSine(buf.Channels[0], frequencyHz, sampleRate)
	buf.Attenuate(ToneAttenuationDB)
	return buf, nil
}

// fillSine writes a full-scale sine at freq into dst.
func fillSine(dst []float64, freq float64, sampleRate int) {
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range dst {
		dst[i] = math.Sin(step * float64(i))
	}
}

// validateFrequency requires 0 < freq < Nyquist.
func validateFrequency(freq float64, sampleRate int) error {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: frequency must be positive, got %g Hz", ErrInvalidParameter, freq)
	}
	if nyquist := float64(sampleRate) / 2; freq >= nyquist {
		return fmt.Errorf("%w: frequency %g Hz is at or above Nyquist (%g Hz)", ErrInvalidParameter, freq, nyquist)
	}
	return nil
}
