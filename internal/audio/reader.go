// Package audio reads back encoded output files to confirm what was written
package audio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned for files that are neither MP3 nor WAV
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Metadata contains audio file metadata
type Metadata struct {
	Size       int64         // bytes on disk
	Duration   time.Duration // decoded length
	SampleRate int
	Channels   int
	Format     string // "mp3" or "wav"
}

// Probe decodes the file at path and reports its size, length and layout.
// The format is taken from the extension, falling back to the header.
func Probe(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("audio file is empty: %s", path)
	}

	format, err := detectFormat(f, path)
	if err != nil {
		return nil, err
	}

	var meta *Metadata
	switch format {
	case "wav":
		meta, err = probeWAV(f)
	case "mp3":
		meta, err = probeMP3(f)
	}
	if err != nil {
		return nil, err
	}
	meta.Size = info.Size()
	meta.Format = format
	return meta, nil
}

func detectFormat(f *os.File, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "wav", nil
	case ".mp3":
		return "mp3", nil
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return "", fmt.Errorf("failed to read header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	switch {
	case bytes.Equal(head, []byte("RIFF")):
		return "wav", nil
	case bytes.HasPrefix(head, []byte("ID3")), head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return "mp3", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func probeWAV(f *os.File) (*Metadata, error) {
	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	return &Metadata{
		Duration:   format.SampleRate.D(s.Len()),
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
	}, nil
}

func probeMP3(f *os.File) (*Metadata, error) {
	channels, err := mp3Channels(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// go-mp3 always decodes to 16-bit stereo: 4 bytes per frame
	frames := dec.Length() / 4
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("mp3 reports invalid sample rate %d", rate)
	}

	return &Metadata{
		Duration:   time.Duration(frames) * time.Second / time.Duration(rate),
		SampleRate: rate,
		Channels:   channels,
	}, nil
}

// mp3Channels reads the channel mode from the first MPEG frame header,
// skipping an ID3v2 tag if present. Mode 3 is single channel.
func mp3Channels(f *os.File) (int, error) {
	r := bufio.NewReader(f)

	// Short reads are fine here; the frame scan below reports a missing header
	head, _ := r.Peek(10)
	if len(head) == 10 && bytes.HasPrefix(head, []byte("ID3")) {
		// Syncsafe size: 7 bits per byte, excluding the 10-byte header
		size := int(head[6])<<21 | int(head[7])<<14 | int(head[8])<<7 | int(head[9])
		if _, err := r.Discard(10 + size); err != nil {
			return 0, fmt.Errorf("failed to skip ID3 tag: %w", err)
		}
	}

	// Frame sync is eleven set bits; give up after 64 KiB of garbage
	for scanned := 0; scanned < 64*1024; scanned++ {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b != 0xFF {
			continue
		}
		hdr, err := r.Peek(3)
		if err != nil {
			break
		}
		if hdr[0]&0xE0 != 0xE0 {
			continue
		}
		if hdr[2]>>6 == 3 {
			return 1, nil
		}
		return 2, nil
	}
	return 0, fmt.Errorf("no mp3 frame header found")
}
