package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/linuxmatters/harmonygen/internal/audition"
	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/cli"
	"github.com/linuxmatters/harmonygen/internal/logging"
	"github.com/linuxmatters/harmonygen/internal/processor"
	"github.com/linuxmatters/harmonygen/internal/synth"
	"github.com/linuxmatters/harmonygen/internal/ui"
)

var (
	version = "0.0.1"
)

// DebugLogFile is written to the working directory with --debug
const DebugLogFile = "harmonygen-debug.log"

// CLI defines the command-line interface
type CLI struct {
	Version         bool     `short:"v" help:"Show version information"`
	Catalog         string   `short:"c" type:"existingfile" env:"HARMONYGEN_CATALOG" help:"Path to a YAML catalog (built-in catalog when omitted)"`
	Output          string   `short:"o" type:"path" default:"public/audio" env:"HARMONYGEN_OUTPUT" help:"Output directory"`
	Format          string   `short:"f" default:"mp3" enum:"mp3,wav" help:"Output format (mp3 or wav)"`
	Bitrate         int      `default:"192" help:"MP3 bitrate in kbps"`
	SampleRate      int      `default:"44100" help:"Output sample rate in Hz"`
	FFmpeg          string   `name:"ffmpeg" default:"ffmpeg" env:"HARMONYGEN_FFMPEG" placeholder:"path" help:"ffmpeg binary used for MP3 encoding"`
	Only            []string `placeholder:"category" help:"Only generate these categories"`
	SkipExisting    bool     `help:"Keep files that already exist"`
	NoCreateDirs    bool     `help:"Fail entries whose category directory is missing"`
	Prune           bool     `help:"Remove audio files not in the catalog"`
	Jobs            int      `short:"j" default:"1" help:"Entries to generate in parallel"`
	Seed            uint64   `default:"0" help:"Noise seed, 0 for random"`
	Logs            bool     `help:"Save a run report with spectral measurements"`
	TUI             bool     `name:"tui" help:"Show the interactive progress view"`
	List            bool     `help:"List the catalog and exit"`
	Audition        string   `placeholder:"category/file" help:"Play one entry instead of writing files"`
	AuditionSeconds int      `default:"10" help:"Seconds of the entry to play"`
	Debug           bool     `help:"Write a debug log to ` + DebugLogFile + `"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one invocation and returns the process exit code. Setup
// failures return 1; per-entry failures are reported but still return 0.
func run(args []string, stdout io.Writer) int {
	cliArgs := &CLI{}
	exitCode := -1
	parser, err := kong.New(cliArgs,
		kong.Name("harmonygen"),
		kong.Description("Placeholder audio generator for binaural beats, noise and tones"),
		kong.UsageOnError(),
		kong.Writers(stdout, os.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	ctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help
		return exitCode
	}
	if err != nil {
		cli.PrintError(err.Error())
		if ctx != nil {
			_ = ctx.PrintUsage(false)
		}
		return 1
	}

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		return 0
	}

	runID := logging.NewRunID()
	if cliArgs.Debug {
		if err := logging.InitDebug(DebugLogFile, runID); err != nil {
			cli.PrintError(err.Error())
			return 1
		}
		defer logging.Sync()
	}
	logging.Debugf("harmonygen %s starting: %v", version, args)

	cat, source, err := loadCatalog(cliArgs.Catalog)
	if err == nil {
		cat, err = cat.Filter(cliArgs.Only...)
	}
	if err != nil {
		printSetupError(err)
		return 1
	}

	if cliArgs.List {
		printCatalog(stdout, cat, source)
		return 0
	}

	cfg, err := encoderConfig(cliArgs)
	if err != nil {
		printSetupError(err)
		return 1
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cliArgs.Audition != "" {
		return runAudition(sigCtx, stdout, cat, cliArgs.Audition, cliArgs.AuditionSeconds, cfg)
	}

	var encoderInfo string
	if cfg.Format == processor.FormatMP3 {
		info, err := processor.DetectFFmpeg(sigCtx, cfg.FFmpegPath, cfg.Codec)
		if err != nil {
			printSetupError(err)
			return 1
		}
		encoderInfo = info.Version
		logging.Debugf("using %s (%s)", info.Path, info.Version)
	}

	pipeline, err := processor.NewPipeline(cliArgs.Output, cfg)
	if err != nil {
		printSetupError(err)
		return 1
	}
	pipeline.Analyse = cliArgs.Logs
	pipeline.Log = logging.Logger()

	entries := cat.Entries()
	startTime := time.Now()

	var out *outcome
	if cliArgs.TUI && term.IsTerminal(int(os.Stdout.Fd())) {
		out, err = runTUI(sigCtx, pipeline, entries, cliArgs.Prune)
		if err != nil {
			cli.PrintError(fmt.Sprintf("UI error: %v", err))
			return 1
		}
	} else {
		console := ui.NewConsole(stdout, cliArgs.Output)
		console.Begin(len(entries))
		out = generate(sigCtx, pipeline, entries, console, cliArgs.Prune)
	}

	if cliArgs.Logs {
		reportPath, err := logging.GenerateReport(logging.ReportData{
			RunID:         runID,
			OutputRoot:    cliArgs.Output,
			CatalogSource: source,
			Encoder:       pipeline.Encoder.Name(),
			EncoderInfo:   encoderInfo,
			Config:        cfg,
			StartTime:     startTime,
			EndTime:       time.Now(),
			Results:       out.results,
			Summary:       out.summary,
			Pruned:        out.pruned,
		})
		if err != nil {
			cli.PrintError(err.Error())
		} else {
			fmt.Fprintf(stdout, "\n📝 Report: %s\n", reportPath)
		}
	}

	logging.Debugf("run complete: %d created, %d skipped, %d failed",
		out.summary.Created, out.summary.Skipped, out.summary.Failed)
	return 0
}

// loadCatalog reads the catalog at path, or the built-in one when path is
// empty. source names where it came from for the report.
func loadCatalog(path string) (*catalog.Catalog, string, error) {
	if path == "" {
		cat, err := catalog.Default()
		return cat, "built-in", err
	}
	cat, err := catalog.Load(path)
	return cat, path, err
}

// encoderConfig maps flags onto the default encoder configuration.
func encoderConfig(c *CLI) (*processor.EncoderConfig, error) {
	format, err := processor.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}

	cfg := processor.DefaultEncoderConfig()
	cfg.Format = format
	cfg.Bitrate = c.Bitrate
	cfg.SampleRate = c.SampleRate
	cfg.FFmpegPath = c.FFmpeg
	cfg.CreateDirs = !c.NoCreateDirs
	cfg.SkipExisting = c.SkipExisting
	cfg.Jobs = c.Jobs
	cfg.Seed = c.Seed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printSetupError reports a fatal error with remediation advice.
func printSetupError(err error) {
	cli.PrintError(err.Error())
	switch {
	case errors.Is(err, processor.ErrEncoderUnavailable):
		cli.PrintHint("install ffmpeg with libmp3lame (or point --ffmpeg / HARMONYGEN_FFMPEG at it), or use --format wav")
	case errors.Is(err, catalog.ErrInvalidCatalog):
		cli.PrintHint("run harmonygen --list to see the built-in catalog")
	}
}

// printCatalog lists every entry grouped by category.
func printCatalog(w io.Writer, cat *catalog.Catalog, source string) {
	cli.PrintKeyValue(w, "Catalog", source)
	cli.PrintKeyValue(w, "Categories", fmt.Sprintf("%d", len(cat.Categories)))
	cli.PrintKeyValue(w, "Entries", fmt.Sprintf("%d", cat.Count()))
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.CatalogTable(cat))
}

// runAudition plays a single entry.
func runAudition(ctx context.Context, w io.Writer, cat *catalog.Catalog, key string, seconds int, cfg *processor.EncoderConfig) int {
	entry, ok := cat.Find(key)
	if !ok {
		cli.PrintError(fmt.Sprintf("no catalog entry %q", key))
		cli.PrintHint("use category/file as shown by harmonygen --list")
		return 1
	}

	clip := audition.Clip(entry.Generator, seconds)
	fmt.Fprintf(w, "🎧 Playing %s (%s, %.1fs)... ", entry.Key(), entry.Description, float64(clip.DurationMs)/1000)
	err := audition.Play(ctx, entry, seconds, cfg.SampleRate, synth.NewRand(cfg.Seed))
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "stopped")
		return 0
	case err != nil:
		fmt.Fprintln(w)
		cli.PrintError(err.Error())
		return 1
	}
	fmt.Fprintln(w, "done")
	return 0
}

// reporter receives pipeline progress. ui.Console prints it directly;
// tuiReporter forwards it to the Bubbletea program.
type reporter interface {
	EntryStart(index int, entry catalog.Entry)
	EntryResult(r *processor.Result)
	Pruned(removed []string, err error)
	Summary(s *processor.Summary)
}

// outcome collects everything the run report needs
type outcome struct {
	summary *processor.Summary
	results []*processor.Result
	pruned  []string
}

// generate runs the pipeline over entries, then prunes stale files when
// asked to and the run was not interrupted.
func generate(ctx context.Context, p *processor.Pipeline, entries []catalog.Entry, rep reporter, prune bool) *outcome {
	out := &outcome{}
	out.summary = p.Run(ctx, entries, rep.EntryStart, func(r *processor.Result) {
		out.results = append(out.results, r)
		rep.EntryResult(r)
	})

	if prune && ctx.Err() == nil {
		removed, err := p.Prune(entries)
		if err != nil {
			logging.Warnf("prune: %v", err)
		}
		out.pruned = removed
		rep.Pruned(removed, err)
	}

	rep.Summary(out.summary)
	return out
}

// tuiReporter forwards progress to a running Bubbletea program
type tuiReporter struct {
	p *tea.Program
}

func (r tuiReporter) EntryStart(index int, entry catalog.Entry) {
	r.p.Send(ui.EntryStartMsg{Index: index, Entry: entry})
}

func (r tuiReporter) EntryResult(res *processor.Result) {
	r.p.Send(ui.EntryCompleteMsg{Result: res})
}

func (r tuiReporter) Pruned(removed []string, err error) {
	r.p.Send(ui.PruneMsg{Removed: removed, Err: err})
}

func (r tuiReporter) Summary(s *processor.Summary) {
	r.p.Send(ui.AllCompleteMsg{Summary: s})
}

// runTUI generates in the background while the Bubbletea program renders
// progress. Quitting the UI cancels the remaining entries.
func runTUI(ctx context.Context, pipeline *processor.Pipeline, entries []catalog.Entry, prune bool) (*outcome, error) {
	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(entries, pipeline.Root)
	p := tea.NewProgram(model)

	done := make(chan *outcome, 1)
	go func() {
		done <- generate(genCtx, pipeline, entries, tuiReporter{p: p}, prune)
	}()

	_, err := p.Run()
	// Send returns immediately once the program has exited, so cancelling
	// lets the pipeline drain quickly
	cancel()
	out := <-done
	return out, err
}
