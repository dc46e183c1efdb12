package audition

import (
	"errors"
	"testing"

	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/synth"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int
		seconds    int
		want       int
	}{
		{"default_limit", 60000, 0, DefaultSeconds * 1000},
		{"negative_limit", 60000, -3, DefaultSeconds * 1000},
		{"explicit_limit", 60000, 2, 2000},
		{"shorter_than_limit", 500, 10, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Clip(catalog.Tone(440, tt.durationMs), tt.seconds)
			if g.DurationMs != tt.want {
				t.Errorf("DurationMs = %d, want %d", g.DurationMs, tt.want)
			}
			if g.Kind != catalog.KindTone || g.FrequencyHz != 440 {
				t.Errorf("Clip changed the generator: %+v", g)
			}
		})
	}
}

func TestRenderIsStereo(t *testing.T) {
	tests := []struct {
		name  string
		entry catalog.Entry
	}{
		{"tone", catalog.Entry{Category: "ambient", Filename: "whistle.mp3", Generator: catalog.Tone(440, 60000)}},
		{"binaural", catalog.Entry{Category: "focus", Filename: "alpha-focus.mp3", Generator: catalog.Binaural(200, 10, 60000)}},
		{"noise", catalog.Entry{Category: "ambient", Filename: "rain.mp3", Generator: catalog.Noise(synth.NoiseWhite, 60000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm, err := Render(tt.entry, 1, 8000, synth.NewRand(1))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			// 1 second, 2 channels, 2 bytes per sample
			if want := 8000 * 2 * 2; len(pcm) != want {
				t.Errorf("len(pcm) = %d, want %d", len(pcm), want)
			}
		})
	}
}

func TestRenderDuplicatesMono(t *testing.T) {
	entry := catalog.Entry{Category: "ambient", Filename: "whistle.mp3", Generator: catalog.Tone(440, 1000)}
	pcm, err := Render(entry, 1, 8000, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i+3 < len(pcm); i += 4 {
		if pcm[i] != pcm[i+2] || pcm[i+1] != pcm[i+3] {
			t.Fatalf("frame %d differs between channels", i/4)
		}
	}
}

func TestRenderInvalidGenerator(t *testing.T) {
	entry := catalog.Entry{Category: "ambient", Filename: "bad.mp3", Generator: catalog.Tone(-5, 1000)}
	_, err := Render(entry, 1, 8000, nil)
	if !errors.Is(err, synth.ErrInvalidParameter) {
		t.Errorf("Render error = %v, want ErrInvalidParameter", err)
	}
}
