package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/linuxmatters/harmonygen/internal/synth"
)

// Kind identifies which synthesizer a Generator dispatches to.
type Kind string

const (
	KindTone     Kind = "tone"     // mono sine at FrequencyHz
	KindBinaural Kind = "binaural" // stereo, BaseHz left and BaseHz+BeatHz right
	KindNoise    Kind = "noise"    // mono noise of colour Noise
)

// Generator is a tagged description of how to synthesize one asset.
// Only the fields belonging to Kind are meaningful.
type Generator struct {
	Kind        Kind    `yaml:"kind"`
	FrequencyHz float64 `yaml:"frequency_hz,omitempty"`
	BaseHz      float64 `yaml:"base_hz,omitempty"`
	BeatHz      float64 `yaml:"beat_hz,omitempty"`
	Noise       string  `yaml:"noise,omitempty"`
	DurationMs  int     `yaml:"duration_ms"`
}

// Tone returns a tone generator.
func Tone(freqHz float64, durationMs int) Generator {
	return Generator{Kind: KindTone, FrequencyHz: freqHz, DurationMs: durationMs}
}

// Binaural returns a binaural beat generator.
func Binaural(baseHz, beatHz float64, durationMs int) Generator {
	return Generator{Kind: KindBinaural, BaseHz: baseHz, BeatHz: beatHz, DurationMs: durationMs}
}

// Noise returns a noise generator.
func Noise(kind synth.NoiseKind, durationMs int) Generator {
	return Generator{Kind: KindNoise, Noise: string(kind), DurationMs: durationMs}
}

// Render synthesizes the buffer described by g. rng is only consumed by
// noise generators and may be nil.
func (g Generator) Render(sampleRate int, rng *rand.Rand) (*synth.Buffer, error) {
	switch g.Kind {
	case KindTone:
		return synth.Tone(g.FrequencyHz, g.DurationMs, sampleRate)
	case KindBinaural:
		return synth.BinauralBeat(g.BaseHz, g.BeatHz, g.DurationMs, sampleRate)
	case KindNoise:
		kind, err := synth.ParseNoiseKind(g.Noise)
		if err != nil {
			return nil, err
		}
		return synth.Noise(kind, g.DurationMs, sampleRate, rng)
	default:
		return nil, fmt.Errorf("%w: unknown generator kind %q", synth.ErrInvalidParameter, g.Kind)
	}
}

// Validate checks the parameters for g's kind without synthesizing.
func (g Generator) Validate() error {
	if g.DurationMs <= 0 {
		return fmt.Errorf("duration_ms must be positive, got %d", g.DurationMs)
	}
	switch g.Kind {
	case KindTone:
		if g.FrequencyHz <= 0 {
			return fmt.Errorf("frequency_hz must be positive, got %g", g.FrequencyHz)
		}
	case KindBinaural:
		if g.BaseHz <= 0 {
			return fmt.Errorf("base_hz must be positive, got %g", g.BaseHz)
		}
		if g.BeatHz < 0 {
			return fmt.Errorf("beat_hz must not be negative, got %g", g.BeatHz)
		}
	case KindNoise:
		if _, err := synth.ParseNoiseKind(g.Noise); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("generator kind is missing")
	default:
		return fmt.Errorf("unknown generator kind %q", g.Kind)
	}
	return nil
}

// String summarises the generator for logs and reports.
func (g Generator) String() string {
	switch g.Kind {
	case KindTone:
		return fmt.Sprintf("tone %gHz %dms", g.FrequencyHz, g.DurationMs)
	case KindBinaural:
		return fmt.Sprintf("binaural %gHz+%gHz %dms", g.BaseHz, g.BeatHz, g.DurationMs)
	case KindNoise:
		noise := g.Noise
		if noise == "" {
			noise = string(synth.NoiseWhite)
		}
		return fmt.Sprintf("%s noise %dms", noise, g.DurationMs)
	default:
		return fmt.Sprintf("%s %dms", g.Kind, g.DurationMs)
	}
}
