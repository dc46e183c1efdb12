package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gopxl/beep/wav"

	"github.com/linuxmatters/harmonygen/internal/synth"
)

// ErrEncoderUnavailable means the configured encoder cannot run at all.
// It is a setup failure, not a per-file one.
var ErrEncoderUnavailable = errors.New("encoder unavailable")

// Encoder writes a synthesized buffer to a file
type Encoder interface {
	// Name describes the encoder for reports, e.g. "ffmpeg libmp3lame 192k"
	Name() string
	// Extension is the file extension, with dot, of the files it writes
	Extension() string
	// Encode writes buf to path, which already exists and is empty
	Encode(ctx context.Context, buf *synth.Buffer, path string) error
}

// NewEncoder returns the encoder for cfg.Format.
func NewEncoder(cfg *EncoderConfig) (Encoder, error) {
	switch cfg.Format {
	case FormatMP3:
		return &FFmpegEncoder{config: cfg}, nil
	case FormatWAV:
		return &WAVEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: no encoder for format %q", ErrEncoderUnavailable, cfg.Format)
	}
}

// FFmpegEncoder pipes raw PCM through an external ffmpeg process
type FFmpegEncoder struct {
	config *EncoderConfig
}

func (e *FFmpegEncoder) Name() string {
	return fmt.Sprintf("ffmpeg %s %dk", e.config.Codec, e.config.Bitrate)
}

func (e *FFmpegEncoder) Extension() string {
	return e.config.Extension()
}

// Encode streams buf as interleaved s16le PCM into ffmpeg's stdin.
// Cancelling ctx kills the ffmpeg process.
func (e *FFmpegEncoder) Encode(ctx context.Context, buf *synth.Buffer, path string) error {
	args := e.config.BuildArgs(buf.SampleRate, buf.NumChannels(), path)
	cmd := exec.CommandContext(ctx, e.config.FFmpegPath, args...)
	cmd.Stdin = bytes.NewReader(buf.PCM16())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// lastLine returns the final non-empty line of ffmpeg's stderr, which
// carries the reason when -loglevel error is set.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// FFmpegInfo describes a detected ffmpeg binary
type FFmpegInfo struct {
	Path    string // Resolved absolute path
	Version string // First line of `ffmpeg -version`
}

// DetectFFmpeg checks that the ffmpeg at path runs and offers codec.
// Any failure wraps ErrEncoderUnavailable.
func DetectFFmpeg(ctx context.Context, path, codec string) (*FFmpegInfo, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrEncoderUnavailable, path, err)
	}

	out, err := exec.CommandContext(ctx, resolved, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list encoders of %s: %v", ErrEncoderUnavailable, resolved, err)
	}
	if !hasEncoder(string(out), codec) {
		return nil, fmt.Errorf("%w: %s was built without the %s encoder", ErrEncoderUnavailable, resolved, codec)
	}

	info := &FFmpegInfo{Path: resolved}
	if out, err := exec.CommandContext(ctx, resolved, "-version").Output(); err == nil {
		info.Version, _, _ = strings.Cut(string(out), "\n")
		info.Version = strings.TrimSpace(info.Version)
	}
	return info, nil
}

// hasEncoder scans `ffmpeg -encoders` output, where each encoder line is
// " A....D libmp3lame   description".
func hasEncoder(listing, codec string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == codec {
			return true
		}
	}
	return false
}

// WAVEncoder writes 16-bit PCM WAV files without any external tool
type WAVEncoder struct{}

func (e *WAVEncoder) Name() string {
	return "wav pcm_s16le"
}

func (e *WAVEncoder) Extension() string {
	return ".wav"
}

// Encode writes buf to path, keeping its channel count and sample rate.
func (e *WAVEncoder) Encode(ctx context.Context, buf *synth.Buffer, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := wav.Encode(f, buf.Streamer(), buf.Format()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return f.Close()
}
