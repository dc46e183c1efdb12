package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linuxmatters/harmonygen/internal/synth"
)

func TestDefaultCatalogShape(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	want := []struct {
		name  string
		count int
	}{
		{"focus", 3},
		{"relax", 2},
		{"deep", 2},
		{"ambient", 7},
	}
	if len(c.Categories) != len(want) {
		t.Fatalf("got %d categories, want %d", len(c.Categories), len(want))
	}
	for i, w := range want {
		cat := c.Categories[i]
		if cat.Name != w.name {
			t.Errorf("category %d = %q, want %q", i, cat.Name, w.name)
		}
		if len(cat.Entries) != w.count {
			t.Errorf("category %q has %d entries, want %d", cat.Name, len(cat.Entries), w.count)
		}
	}

	if got := c.Count(); got != 14 {
		t.Errorf("Count() = %d, want 14", got)
	}
}

func TestDefaultCatalogGenerators(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	tests := []struct {
		key  string
		want Generator
	}{
		{"focus/alpha-focus.mp3", Binaural(200, 10, 60000)},
		{"focus/beta-focus.mp3", Binaural(200, 20, 60000)},
		{"focus/gamma-focus.mp3", Binaural(200, 40, 60000)},
		{"relax/theta-relax.mp3", Binaural(200, 6, 60000)},
		{"relax/alpha-calm.mp3", Binaural(200, 10, 60000)},
		{"deep/deep-focus.mp3", Binaural(200, 15, 60000)},
		{"deep/study-wave.mp3", Binaural(200, 18, 60000)},
		{"ambient/rain.mp3", Noise(synth.NoiseWhite, 60000)},
		{"ambient/whistle.mp3", Tone(440, 60000)},
		{"ambient/nature.mp3", Noise(synth.NoiseWhite, 60000)},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, ok := c.Find(tt.key)
			if !ok {
				t.Fatalf("entry %q not found", tt.key)
			}
			if e.Generator != tt.want {
				t.Errorf("generator = %+v, want %+v", e.Generator, tt.want)
			}
			if e.Description == "" {
				t.Error("description is empty")
			}
		})
	}
}

func TestEntriesOrderAndCategory(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	entries := c.Entries()
	if len(entries) != 14 {
		t.Fatalf("len(Entries()) = %d, want 14", len(entries))
	}
	if entries[0].Key() != "focus/alpha-focus.mp3" {
		t.Errorf("first entry = %q, want focus/alpha-focus.mp3", entries[0].Key())
	}
	if entries[13].Key() != "ambient/nature.mp3" {
		t.Errorf("last entry = %q, want ambient/nature.mp3", entries[13].Key())
	}
	for _, e := range entries {
		if e.Category == "" {
			t.Errorf("entry %q has no category", e.Filename)
		}
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "empty",
			yaml:    "categories: []\n",
			wantMsg: "no categories",
		},
		{
			name: "unknown_field",
			yaml: `categories:
  - name: focus
    colour: red
    entries: []
`,
			wantMsg: "colour",
		},
		{
			name: "duplicate_category",
			yaml: `categories:
  - name: focus
    entries:
      - {file: a.mp3, generator: {kind: tone, frequency_hz: 440, duration_ms: 1000}}
  - name: focus
    entries:
      - {file: b.mp3, generator: {kind: tone, frequency_hz: 440, duration_ms: 1000}}
`,
			wantMsg: "defined more than once",
		},
		{
			name: "duplicate_file_ignoring_extension",
			yaml: `categories:
  - name: focus
    entries:
      - {file: a.mp3, generator: {kind: tone, frequency_hz: 440, duration_ms: 1000}}
      - {file: a.wav, generator: {kind: tone, frequency_hz: 440, duration_ms: 1000}}
`,
			wantMsg: "listed more than once",
		},
		{
			name: "path_in_filename",
			yaml: `categories:
  - name: focus
    entries:
      - {file: ../escape.mp3, generator: {kind: tone, frequency_hz: 440, duration_ms: 1000}}
`,
			wantMsg: "must not contain a path",
		},
		{
			name: "unknown_kind",
			yaml: `categories:
  - name: focus
    entries:
      - {file: a.mp3, generator: {kind: chirp, duration_ms: 1000}}
`,
			wantMsg: "unknown generator kind",
		},
		{
			name: "zero_duration",
			yaml: `categories:
  - name: focus
    entries:
      - {file: a.mp3, generator: {kind: tone, frequency_hz: 440}}
`,
			wantMsg: "duration_ms must be positive",
		},
		{
			name: "unknown_noise",
			yaml: `categories:
  - name: ambient
    entries:
      - {file: a.mp3, generator: {kind: noise, noise: violet, duration_ms: 1000}}
`,
			wantMsg: "unknown noise kind",
		},
		{
			name: "negative_beat",
			yaml: `categories:
  - name: focus
    entries:
      - {file: a.mp3, generator: {kind: binaural, base_hz: 200, beat_hz: -4, duration_ms: 1000}}
`,
			wantMsg: "beat_hz must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("error %v does not wrap ErrInvalidCatalog", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := &Catalog{Categories: []Category{
		{Name: "focus", Entries: []Entry{
			{Filename: "", Generator: Tone(440, 1000)},
			{Filename: "b.mp3", Generator: Tone(-1, 1000)},
		}},
		{Name: "", Entries: []Entry{
			{Filename: "c.mp3", Generator: Tone(440, 1000)},
		}},
	}}

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"file is empty", "frequency_hz must be positive", "name is empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `categories:
  - name: test
    entries:
      - file: beep
        description: Test beep
        generator: {kind: tone, frequency_hz: 1000, duration_ms: 250}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := c.Entries()
	if len(entries) != 1 || entries[0].Key() != "test/beep" {
		t.Fatalf("Entries() = %+v, want single test/beep", entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestFilter(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	// Requested order is ignored in favour of catalog order
	sub, err := c.Filter("ambient", "focus")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if got := sub.CategoryNames(); strings.Join(got, ",") != "focus,ambient" {
		t.Errorf("CategoryNames() = %v, want [focus ambient]", got)
	}
	if sub.Count() != 10 {
		t.Errorf("Count() = %d, want 10", sub.Count())
	}

	same, err := c.Filter()
	if err != nil || same != c {
		t.Errorf("Filter() with no names should return the catalog unchanged")
	}

	if _, err := c.Filter("focus", "sleep"); err == nil || !strings.Contains(err.Error(), "sleep") {
		t.Errorf("Filter(sleep) error = %v, want unknown category error", err)
	}
}

func TestFind(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	tests := []struct {
		key    string
		wantOK bool
	}{
		{"focus/alpha-focus.mp3", true},
		{"focus/alpha-focus", true},
		{"focus/alpha-focus.wav", true},
		{"relax/alpha-focus.mp3", false},
		{"alpha-focus.mp3", false},
		{"ambient/thunder", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, ok := c.Find(tt.key)
			if ok != tt.wantOK {
				t.Errorf("Find(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
		})
	}
}

func TestGeneratorRenderDispatch(t *testing.T) {
	tests := []struct {
		name       string
		gen        Generator
		wantStereo bool
	}{
		{"tone", Tone(440, 100), false},
		{"binaural", Binaural(200, 10, 100), true},
		{"white", Noise(synth.NoiseWhite, 100), false},
		{"pink", Noise(synth.NoisePink, 100), false},
		{"default_noise", Generator{Kind: KindNoise, DurationMs: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := tt.gen.Render(synth.DefaultSampleRate, synth.NewRand(3))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if buf.IsStereo() != tt.wantStereo {
				t.Errorf("IsStereo() = %v, want %v", buf.IsStereo(), tt.wantStereo)
			}
			if buf.Frames() != 4410 {
				t.Errorf("Frames() = %d, want 4410", buf.Frames())
			}
		})
	}
}

func TestGeneratorRenderUnknownKind(t *testing.T) {
	_, err := Generator{Kind: "chirp", DurationMs: 100}.Render(synth.DefaultSampleRate, nil)
	if !errors.Is(err, synth.ErrInvalidParameter) {
		t.Errorf("error = %v, want synth.ErrInvalidParameter", err)
	}
}

func TestGeneratorString(t *testing.T) {
	tests := []struct {
		gen  Generator
		want string
	}{
		{Tone(440, 60000), "tone 440Hz 60000ms"},
		{Binaural(200, 10, 60000), "binaural 200Hz+10Hz 60000ms"},
		{Noise(synth.NoisePink, 1000), "pink noise 1000ms"},
		{Generator{Kind: KindNoise, DurationMs: 5}, "white noise 5ms"},
	}

	for _, tt := range tests {
		if got := tt.gen.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTrimAudioExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rain.mp3", "rain"},
		{"rain.WAV", "rain"},
		{"rain", "rain"},
		{"rain.ogg", "rain.ogg"},
		{"white-noise.mp3", "white-noise"},
	}

	for _, tt := range tests {
		if got := TrimAudioExt(tt.in); got != tt.want {
			t.Errorf("TrimAudioExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
