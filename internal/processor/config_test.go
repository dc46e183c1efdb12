package processor

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	cfg := DefaultEncoderConfig()

	got := cfg.BuildArgs(44100, 2, "/out/focus/.harmonygen-1.mp3")
	want := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le", "-ar", "44100", "-ac", "2", "-i", "pipe:0",
		"-codec:a", "libmp3lame", "-b:a", "192k", "-ar", "44100",
		"-f", "mp3", "/out/focus/.harmonygen-1.mp3",
	}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("BuildArgs() =\n  %v\nwant\n  %v", got, want)
	}
}

func TestBuildArgsResamples(t *testing.T) {
	cfg := DefaultEncoderConfig()
	cfg.Bitrate = 128
	cfg.SampleRate = 48000
	cfg.LogLevel = ""

	args := strings.Join(cfg.BuildArgs(22050, 1, "x.mp3"), " ")
	for _, want := range []string{
		"-loglevel error",
		"-f s16le -ar 22050 -ac 1 -i pipe:0",
		"-b:a 128k -ar 48000",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestEncoderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*EncoderConfig)
		wantErr string
	}{
		{"defaults", func(*EncoderConfig) {}, ""},
		{"wav_any_rate", func(c *EncoderConfig) { c.Format = FormatWAV; c.SampleRate = 96000; c.Bitrate = 0 }, ""},
		{"unknown_format", func(c *EncoderConfig) { c.Format = "ogg" }, "unknown output format"},
		{"zero_rate", func(c *EncoderConfig) { c.SampleRate = 0 }, "sample rate must be positive"},
		{"zero_jobs", func(c *EncoderConfig) { c.Jobs = 0 }, "jobs must be at least 1"},
		{"bitrate_high", func(c *EncoderConfig) { c.Bitrate = 512 }, "bitrate"},
		{"bitrate_low", func(c *EncoderConfig) { c.Bitrate = 4 }, "bitrate"},
		{"mp3_rate", func(c *EncoderConfig) { c.SampleRate = 96000 }, "cannot carry 96000 Hz"},
		{"no_ffmpeg", func(c *EncoderConfig) { c.FFmpegPath = "" }, "ffmpeg path is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEncoderConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"mp3", FormatMP3, false},
		{"WAV", FormatWAV, false},
		{" mp3 ", FormatMP3, false},
		{"flac", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		format   Format
		wantName string
		wantExt  string
	}{
		{FormatMP3, "ffmpeg libmp3lame 192k", ".mp3"},
		{FormatWAV, "wav pcm_s16le", ".wav"},
	}

	for _, tt := range tests {
		cfg := DefaultEncoderConfig()
		cfg.Format = tt.format
		enc, err := NewEncoder(cfg)
		if err != nil {
			t.Fatalf("NewEncoder(%s): %v", tt.format, err)
		}
		if enc.Name() != tt.wantName || enc.Extension() != tt.wantExt {
			t.Errorf("NewEncoder(%s) = %q %q, want %q %q", tt.format, enc.Name(), enc.Extension(), tt.wantName, tt.wantExt)
		}
	}

	cfg := DefaultEncoderConfig()
	cfg.Format = "ogg"
	if _, err := NewEncoder(cfg); !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("NewEncoder(ogg) error = %v, want ErrEncoderUnavailable", err)
	}
}

func TestHasEncoder(t *testing.T) {
	listing := `Encoders:
 V..... = Video
 A..... = Audio
 ------
 A....D aac                  AAC (Advanced Audio Coding)
 A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3) (codec mp3)
 A....D pcm_s16le            PCM signed 16-bit little-endian
`

	tests := []struct {
		codec string
		want  bool
	}{
		{"libmp3lame", true},
		{"aac", true},
		{"libshine", false},
		{"mp3", false},
	}
	for _, tt := range tests {
		if got := hasEncoder(listing, tt.codec); got != tt.want {
			t.Errorf("hasEncoder(%q) = %v, want %v", tt.codec, got, tt.want)
		}
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"one\n", "one"},
		{"first\nsecond\n\n  \n", "second"},
		{"pipe:0: Invalid data found when processing input\r\n", "pipe:0: Invalid data found when processing input"},
	}
	for _, tt := range tests {
		if got := lastLine(tt.in); got != tt.want {
			t.Errorf("lastLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFFmpegMissingBinary(t *testing.T) {
	_, err := DetectFFmpeg(t.Context(), "/nonexistent/ffmpeg-harmonygen", "libmp3lame")
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("error = %v, want ErrEncoderUnavailable", err)
	}
}
