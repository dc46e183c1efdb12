package processor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Format identifies the output container written by an Encoder
type Format string

const (
	FormatMP3 Format = "mp3" // ffmpeg + libmp3lame
	FormatWAV Format = "wav" // 16-bit PCM, written in-process
)

// Formats lists the supported output formats in help order
var Formats = []Format{FormatMP3, FormatWAV}

// ParseFormat maps a flag value onto a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (supported: mp3, wav)", s)
}

// mp3SampleRates are the rates the MPEG audio layers can carry
var mp3SampleRates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

// EncoderConfig holds configuration for the output encoder
type EncoderConfig struct {
	// Output container
	Format Format

	// Constant bitrate in kbps, MP3 only (default: 192)
	Bitrate int

	// Rate the generators render at and the encoder writes (default: 44100)
	SampleRate int

	// External encoder binary, looked up on PATH when not absolute
	FFmpegPath string
	Codec      string // FFmpeg audio encoder name (default: libmp3lame)
	LogLevel   string // FFmpeg -loglevel (default: error)

	// Directory handling
	CreateDirs   bool // Create missing category directories (default: true)
	SkipExisting bool // Leave existing outputs untouched

	// Parallelism: number of entries processed at once (default: 1)
	Jobs int

	// Noise seed, 0 seeds from the clock
	Seed uint64
}

// DefaultEncoderConfig returns the settings used for the placeholder assets:
// 192 kbps MP3 at 44.1 kHz, generated one entry at a time.
func DefaultEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		Format:     FormatMP3,
		Bitrate:    192,
		SampleRate: 44100,
		FFmpegPath: "ffmpeg",
		Codec:      "libmp3lame",
		LogLevel:   "error",
		CreateDirs: true,
		Jobs:       1,
	}
}

// Validate rejects settings the encoders cannot honour.
func (cfg *EncoderConfig) Validate() error {
	if !slices.Contains(Formats, cfg.Format) {
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", cfg.Jobs)
	}
	if cfg.Format != FormatMP3 {
		return nil
	}
	if cfg.Bitrate < 8 || cfg.Bitrate > 320 {
		return fmt.Errorf("MP3 bitrate must be between 8 and 320 kbps, got %d", cfg.Bitrate)
	}
	if !slices.Contains(mp3SampleRates, cfg.SampleRate) {
		return fmt.Errorf("MP3 cannot carry %d Hz audio", cfg.SampleRate)
	}
	if cfg.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg path is empty")
	}
	return nil
}

// Extension returns the file extension, with dot, for the configured format.
func (cfg *EncoderConfig) Extension() string {
	return "." + string(cfg.Format)
}

// argBuilderFunc produces one group of FFmpeg arguments
type argBuilderFunc func(cfg *EncoderConfig, in pcmInput, outputPath string) []string

// pcmInput describes the raw PCM stream written to ffmpeg's stdin
type pcmInput struct {
	sampleRate int
	channels   int
}

// argBuilders is the FFmpeg command line in order: global options, the raw
// PCM input on stdin, then the encoder and output file.
var argBuilders = []argBuilderFunc{
	buildGlobalArgs,
	buildInputArgs,
	buildCodecArgs,
	buildOutputArgs,
}

func buildGlobalArgs(cfg *EncoderConfig, _ pcmInput, _ string) []string {
	level := cfg.LogLevel
	if level == "" {
		level = "error"
	}
	// -y: the output is our own temp file, already created empty
	return []string{"-hide_banner", "-loglevel", level, "-y"}
}

func buildInputArgs(_ *EncoderConfig, in pcmInput, _ string) []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(in.sampleRate),
		"-ac", strconv.Itoa(in.channels),
		"-i", "pipe:0",
	}
}

func buildCodecArgs(cfg *EncoderConfig, _ pcmInput, _ string) []string {
	return []string{
		"-codec:a", cfg.Codec,
		"-b:a", fmt.Sprintf("%dk", cfg.Bitrate),
		"-ar", strconv.Itoa(cfg.SampleRate),
	}
}

func buildOutputArgs(cfg *EncoderConfig, _ pcmInput, outputPath string) []string {
	return []string{"-f", string(cfg.Format), outputPath}
}

// BuildArgs returns the ffmpeg arguments that read interleaved s16le PCM
// at inputRate with the given channel count from stdin and write outputPath.
func (cfg *EncoderConfig) BuildArgs(inputRate, channels int, outputPath string) []string {
	in := pcmInput{sampleRate: inputRate, channels: channels}
	var args []string
	for _, build := range argBuilders {
		args = append(args, build(cfg, in, outputPath)...)
	}
	return args
}
