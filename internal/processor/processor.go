// Package processor renders catalog entries and writes them to disk
package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/harmonygen/internal/analysis"
	"github.com/linuxmatters/harmonygen/internal/audio"
	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/synth"
)

// ErrMissingDirectory is returned for an entry whose category directory
// does not exist when directory creation is disabled
var ErrMissingDirectory = errors.New("category directory does not exist")

// ErrCancelled marks entries that never started because the run was stopped
var ErrCancelled = errors.New("cancelled before start")

// TempPrefix marks in-progress outputs. Prune removes leftovers.
const TempPrefix = ".harmonygen-"

// RenderFunc synthesizes the buffer for one entry
type RenderFunc func(entry catalog.Entry, sampleRate int, rng *rand.Rand) (*synth.Buffer, error)

// DefaultRender dispatches on the entry's generator.
func DefaultRender(entry catalog.Entry, sampleRate int, rng *rand.Rand) (*synth.Buffer, error) {
	return entry.Generator.Render(sampleRate, rng)
}

// Pipeline writes catalog entries under Root as <category>/<name><ext>
type Pipeline struct {
	Root    string
	Encoder Encoder
	Config  *EncoderConfig

	// Render defaults to DefaultRender
	Render RenderFunc

	// Analyse measures each rendered buffer for the run report
	Analyse bool

	// Log receives debug detail; nil discards it
	Log *zap.SugaredLogger
}

// Result is the outcome of one entry
type Result struct {
	Index        int
	Entry        catalog.Entry
	Path         string
	Size         int64         // bytes on disk
	Duration     time.Duration // decoded from the written file
	Skipped      bool
	Err          error
	Elapsed      time.Duration
	Measurements *analysis.Measurements
}

// Cancelled reports whether the entry was never started.
func (r *Result) Cancelled() bool {
	return errors.Is(r.Err, ErrCancelled)
}

// Summary totals a run
type Summary struct {
	Total     int
	Created   int
	Skipped   int
	Failed    int // includes Cancelled
	Cancelled int
	Bytes     int64
	Elapsed   time.Duration
}

func (s *Summary) add(r *Result) {
	switch {
	case r.Err != nil:
		s.Failed++
		if r.Cancelled() {
			s.Cancelled++
		}
	case r.Skipped:
		s.Skipped++
	default:
		s.Created++
		s.Bytes += r.Size
	}
}

// NewPipeline returns a pipeline writing under root with the encoder for cfg.
func NewPipeline(root string, cfg *EncoderConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Root: root, Encoder: enc, Config: cfg}, nil
}

// OutputPath returns where entry is written. The catalog extension is
// replaced with the encoder's.
func (p *Pipeline) OutputPath(entry catalog.Entry) string {
	name := catalog.TrimAudioExt(entry.Filename) + p.Encoder.Extension()
	return filepath.Join(p.Root, entry.Category, name)
}

// ProcessEntry renders, encodes and verifies one entry. Failures are
// returned in Result.Err and never panic or abort the caller.
func (p *Pipeline) ProcessEntry(ctx context.Context, index int, entry catalog.Entry) *Result {
	return p.process(ctx, index, entry, p.seed())
}

func (p *Pipeline) process(ctx context.Context, index int, entry catalog.Entry, seed uint64) *Result {
	start := time.Now()
	res := &Result{Index: index, Entry: entry, Path: p.OutputPath(entry)}
	defer func() { res.Elapsed = time.Since(start) }()

	log := p.logger().With("entry", entry.Key())

	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrCancelled, err)
		return res
	}

	dir := filepath.Dir(res.Path)
	if err := p.ensureDir(dir); err != nil {
		res.Err = err
		log.Debugf("directory check failed: %v", err)
		return res
	}

	if p.Config.SkipExisting {
		if info, err := os.Stat(res.Path); err == nil && info.Mode().IsRegular() {
			res.Skipped = true
			res.Size = info.Size()
			log.Debugf("skipping existing %s", res.Path)
			return res
		}
	}

	render := p.Render
	if render == nil {
		render = DefaultRender
	}
	buf, err := render(entry, p.Config.SampleRate, synth.NewRand(seed+uint64(index)))
	if err != nil {
		res.Err = fmt.Errorf("failed to generate %s: %w", entry.Generator, err)
		return res
	}
	log.Debugf("rendered %d frames x %d channels at %d Hz", buf.Frames(), buf.NumChannels(), buf.SampleRate)

	if p.Analyse {
		res.Measurements = analysis.Measure(buf)
	}

	if err := p.writeAtomic(ctx, buf, res.Path); err != nil {
		res.Err = err
		return res
	}

	meta, err := audio.Probe(res.Path)
	if err != nil {
		res.Err = fmt.Errorf("failed to verify output: %w", err)
		return res
	}
	res.Size = meta.Size
	res.Duration = meta.Duration
	log.Debugf("wrote %s: %d bytes, %v, %d channels", res.Path, meta.Size, meta.Duration, meta.Channels)
	return res
}

// writeAtomic encodes into a temp file beside path and renames it into
// place, so path is either the previous file or a complete new one.
func (p *Pipeline) writeAtomic(ctx context.Context, buf *synth.Buffer, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempPrefix+"*"+p.Encoder.Extension())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := p.Encoder.Encode(ctx, buf, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode: %w", err)
	}
	// CreateTemp uses 0600
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func (p *Pipeline) ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check directory: %w", err)
	}
	if !p.Config.CreateDirs {
		return fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Run processes entries and returns the totals. With Config.Jobs > 1
// entries are processed concurrently, but onStart and onResult are always
// called in catalog order from the calling goroutine. Either may be nil.
// Once ctx is cancelled no new entry starts; the rest are reported with
// ErrCancelled.
func (p *Pipeline) Run(ctx context.Context, entries []catalog.Entry, onStart func(index int, entry catalog.Entry), onResult func(*Result)) *Summary {
	start := time.Now()
	summary := &Summary{Total: len(entries)}
	seed := p.seed()

	jobs := max(p.Config.Jobs, 1)
	p.logger().Debugf("processing %d entries with %d jobs (seed %d)", len(entries), jobs, seed)

	results := make([]chan *Result, len(entries))
	for i := range results {
		results[i] = make(chan *Result, 1)
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	go func() {
		for i, entry := range entries {
			g.Go(func() error {
				results[i] <- p.process(ctx, i, entry, seed)
				return nil
			})
		}
	}()

	for i, entry := range entries {
		if onStart != nil {
			onStart(i, entry)
		}
		res := <-results[i]
		summary.add(res)
		if res.Err != nil {
			p.logger().Debugf("%s failed: %v", entry.Key(), res.Err)
		}
		if onResult != nil {
			onResult(res)
		}
	}

	// Every result has been received, so this only reaps the workers
	_ = g.Wait()
	summary.Elapsed = time.Since(start)
	return summary
}

// seed resolves Config.Seed, drawing one from the clock when unset so every
// entry in a run shares a base.
func (p *Pipeline) seed() uint64 {
	if p.Config.Seed != 0 {
		return p.Config.Seed
	}
	return uint64(time.Now().UnixNano()) | 1
}

func (p *Pipeline) logger() *zap.SugaredLogger {
	if p.Log == nil {
		return zap.NewNop().Sugar()
	}
	return p.Log
}
