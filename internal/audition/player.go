// Package audition plays a catalog entry through the sound card without
// writing any files.
package audition

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/synth"
)

// DefaultSeconds is how much of an entry is played when no limit is given
const DefaultSeconds = 10

var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

// getContext opens the shared output device. oto allows one context per
// process, so the first sample rate wins.
func getContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
			otoRate = sampleRate
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz", otoRate)
	}
	return otoCtx, nil
}

// Clip shortens g to at most seconds. Zero or negative means DefaultSeconds.
func Clip(g catalog.Generator, seconds int) catalog.Generator {
	if seconds <= 0 {
		seconds = DefaultSeconds
	}
	g.DurationMs = min(g.DurationMs, seconds*1000)
	return g
}

// Render synthesizes the first seconds of entry as stereo 16-bit PCM ready
// for playback. Mono generators are duplicated to both channels.
func Render(entry catalog.Entry, seconds, sampleRate int, rng *rand.Rand) ([]byte, error) {
	buf, err := Clip(entry.Generator, seconds).Render(sampleRate, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", entry.Key(), err)
	}
	return stereo(buf).PCM16(), nil
}

// stereo returns buf unchanged when it already has two channels, otherwise
// a buffer sharing its first channel on both sides.
func stereo(buf *synth.Buffer) *synth.Buffer {
	if buf.IsStereo() {
		return buf
	}
	mono := buf.Channel(0)
	return &synth.Buffer{
		SampleRate: buf.SampleRate,
		Channels:   [][]float64{mono, mono},
	}
}

// Play renders entry and plays it, blocking until playback completes or ctx
// is cancelled.
func Play(ctx context.Context, entry catalog.Entry, seconds, sampleRate int, rng *rand.Rand) error {
	pcm, err := Render(entry, seconds, sampleRate, rng)
	if err != nil {
		return err
	}

	otoContext, err := getContext(sampleRate)
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}

	player := otoContext.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			_ = player.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return player.Close()
}
