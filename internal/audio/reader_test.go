package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/wav"
	"github.com/linuxmatters/harmonygen/internal/synth"
)

// writeWAV encodes buf to a file in a temp directory and returns its path
func writeWAV(t *testing.T, name string, buf *synth.Buffer) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := wav.Encode(f, buf.Streamer(), buf.Format()); err != nil {
		t.Fatalf("failed to encode WAV: %v", err)
	}
	return path
}

func TestProbeWAV(t *testing.T) {
	tests := []struct {
		name         string
		render       func() (*synth.Buffer, error)
		wantChannels int
		wantDuration time.Duration
	}{
		{
			name:         "mono_tone",
			render:       func() (*synth.Buffer, error) { return synth.Tone(440, 1000, 44100) },
			wantChannels: 1,
			wantDuration: time.Second,
		},
		{
			name:         "stereo_binaural",
			render:       func() (*synth.Buffer, error) { return synth.BinauralBeat(200, 10, 500, 44100) },
			wantChannels: 2,
			wantDuration: 500 * time.Millisecond,
		},
		{
			name:         "low_rate",
			render:       func() (*synth.Buffer, error) { return synth.Tone(100, 2000, 8000) },
			wantChannels: 1,
			wantDuration: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := tt.render()
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			path := writeWAV(t, tt.name+".wav", buf)

			meta, err := Probe(path)
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if meta.Format != "wav" {
				t.Errorf("Format = %q, want wav", meta.Format)
			}
			if meta.Channels != tt.wantChannels {
				t.Errorf("Channels = %d, want %d", meta.Channels, tt.wantChannels)
			}
			if meta.SampleRate != buf.SampleRate {
				t.Errorf("SampleRate = %d, want %d", meta.SampleRate, buf.SampleRate)
			}
			if meta.Duration != tt.wantDuration {
				t.Errorf("Duration = %v, want %v", meta.Duration, tt.wantDuration)
			}

			info, _ := os.Stat(path)
			if meta.Size != info.Size() {
				t.Errorf("Size = %d, want %d", meta.Size, info.Size())
			}
		})
	}
}

func TestProbeSniffsHeaderWithoutExtension(t *testing.T) {
	buf, err := synth.Tone(440, 100, 44100)
	if err != nil {
		t.Fatalf("Tone: %v", err)
	}
	path := writeWAV(t, "clip.bin", buf)

	meta, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if meta.Format != "wav" {
		t.Errorf("Format = %q, want wav", meta.Format)
	}
}

func TestProbeErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("not audio at all"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Probe(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
	if _, err := Probe(empty); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := Probe(text); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("text file error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestMP3Channels(t *testing.T) {
	id3 := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 5, 0, 0, 0, 0, 0}

	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"stereo_frame", []byte{0xFF, 0xFB, 0x90, 0x04, 0, 0}, 2},
		{"mono_frame", []byte{0xFF, 0xFB, 0x90, 0xC4, 0, 0}, 1},
		{"after_id3_tag", append(append([]byte{}, id3...), 0xFF, 0xFB, 0x90, 0xC4, 0, 0), 1},
		{"leading_garbage", []byte{0x00, 0x12, 0xFF, 0x00, 0xFF, 0xFB, 0x90, 0x44, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "frame.mp3")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			got, err := mp3Channels(f)
			if err != nil {
				t.Fatalf("mp3Channels: %v", err)
			}
			if got != tt.want {
				t.Errorf("mp3Channels = %d, want %d", got, tt.want)
			}
		})
	}
}
