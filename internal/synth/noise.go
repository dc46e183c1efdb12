package synth

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// NoiseAttenuationDB is applied to every noise buffer.
const NoiseAttenuationDB = 15.0

// NoiseKind selects the spectral colour of generated noise.
type NoiseKind string

const (
	NoiseWhite NoiseKind = "white" // flat spectrum
	NoisePink  NoiseKind = "pink"  // -3 dB/octave
	NoiseBrown NoiseKind = "brown" // -6 dB/octave
)

// NoiseKinds lists every supported kind in display order.
var NoiseKinds = []NoiseKind{NoiseWhite, NoisePink, NoiseBrown}

// ParseNoiseKind converts a catalog string to a NoiseKind.
// An empty string selects white noise.
func ParseNoiseKind(s string) (NoiseKind, error) {
	kind := NoiseKind(strings.ToLower(strings.TrimSpace(s)))
	if kind == "" {
		return NoiseWhite, nil
	}
	for _, k := range NoiseKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown noise kind %q", ErrInvalidParameter, s)
}

// NewRand returns a random source for noise generation. A zero seed draws
// the seed from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Noise generates a mono noise buffer of the requested kind, attenuated by
// NoiseAttenuationDB. A nil rng is replaced with a clock-seeded source.
func Noise(kind NoiseKind, durationMs, sampleRate int, rng *rand.Rand) (*Buffer, error) {
	if err := validateTiming(durationMs, sampleRate); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(0)
	}

	buf := newBuffer(sampleRate, 1, frameCount(durationMs, sampleRate))
	dst := buf.Channels[0]

	switch kind {
	case NoiseWhite:
		fillWhite(dst, rng)
	case NoisePink:
		fillPink(dst, rng)
		normalise(dst)
	case NoiseBrown:
		fillBrown(dst, rng)
		normalise(dst)
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %q", ErrInvalidParameter, kind)
	}

	buf.Attenuate(NoiseAttenuationDB)
	return buf, nil
}

// fillWhite draws independent uniform samples in [-1, 1).
func fillWhite(dst []float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = rng.Float64()*2 - 1
	}
}

// fillPink runs white noise through Paul Kellet's refined pink filter.
func fillPink(dst []float64, rng *rand.Rand) {
	var b0, b1, b2, b3, b4, b5, b6 float64
	for i := range dst {
		white := rng.Float64()*2 - 1
		b0 = 0.99886*b0 + white*0.0555179
		b1 = 0.99332*b1 + white*0.0750759
		b2 = 0.96900*b2 + white*0.1538520
		b3 = 0.86650*b3 + white*0.3104856
		b4 = 0.55000*b4 + white*0.5329522
		b5 = -0.7616*b5 - white*0.0168980
		dst[i] = b0 + b1 + b2 + b3 + b4 + b5 + b6 + white*0.5362
		b6 = white * 0.115926
	}
}

// fillBrown integrates white noise with a small leak so it stays bounded.
func fillBrown(dst []float64, rng *rand.Rand) {
	last := 0.0
	for i := range dst {
		white := rng.Float64()*2 - 1
		last = (last + 0.02*white) / 1.02
		dst[i] = last
	}
}

// normalise scales dst so its peak magnitude is 1.
func normalise(dst []float64) {
	peak := 0.0
	for _, s := range dst {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return
	}
	for i := range dst {
		dst[i] /= peak
	}
}
