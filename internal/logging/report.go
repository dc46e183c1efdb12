package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/linuxmatters/harmonygen/internal/analysis"
	"github.com/linuxmatters/harmonygen/internal/processor"
)

// ReportFilename is written at the root of the output directory
const ReportFilename = "harmonygen-report.log"

// ============================================================================
// Spectral interpretation
// ============================================================================

// interpretFlatness describes tonality vs noisiness (Wiener entropy).
// Ratio of geometric mean to arithmetic mean of the power spectrum:
// 0 = pure tone, about 0.56 for a Hann-windowed white noise periodogram.
func interpretFlatness(flatness float64) string {
	switch {
	case flatness < 0.01:
		return "pure tone"
	case flatness < 0.1:
		return "tonal"
	case flatness < 0.3:
		return "coloured noise or mixed"
	default:
		return "broadband noise"
	}
}

// interpretCrest describes the peak-to-mean ratio of the power spectrum.
// White noise sits near 10; a single sine runs into the thousands.
func interpretCrest(crest float64) string {
	switch {
	case crest < 50:
		return "no dominant frequency"
	case crest < 500:
		return "some spectral peaks"
	case crest < 2000:
		return "clear spectral peak"
	default:
		return "single dominant frequency"
	}
}

// interpretBeat names the brainwave band a binaural beat frequency targets.
func interpretBeat(hz float64) string {
	switch {
	case hz < 0.5:
		return "no beat"
	case hz < 4:
		return "delta band"
	case hz < 8:
		return "theta band"
	case hz < 13:
		return "alpha band"
	case hz < 30:
		return "beta band"
	default:
		return "gamma band"
	}
}

// ============================================================================
// Report
// ============================================================================

// ReportData contains everything recorded about one generation run
type ReportData struct {
	RunID         string
	OutputRoot    string
	CatalogSource string // file path, or "built-in"
	Encoder       string
	EncoderInfo   string // e.g. the ffmpeg version line
	Config        *processor.EncoderConfig
	StartTime     time.Time
	EndTime       time.Time
	Results       []*processor.Result
	Summary       *processor.Summary
	Pruned        []string
}

// NewRunID returns an identifier tying the report to the debug log.
func NewRunID() string {
	return uuid.NewString()
}

// GenerateReport writes the run report to <OutputRoot>/harmonygen-report.log
// and returns its path.
func GenerateReport(data ReportData) (string, error) {
	if err := os.MkdirAll(data.OutputRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(data.OutputRoot, ReportFilename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, data); err != nil {
		return "", err
	}
	return path, f.Close()
}

// WriteReport renders the run report to w.
func WriteReport(w io.Writer, data ReportData) error {
	ew := &errWriter{w: w}

	writeReportHeader(ew, data)
	writeRunSummary(ew, data)
	writeSettings(ew, data)
	writeEntries(ew, data.Results)
	writeFailures(ew, data.Results)
	writePruned(ew, data.Pruned)

	return ew.err
}

// errWriter keeps the first write error so sections can ignore it
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = fmt.Errorf("failed to write report: %w", err)
	}
	return n, nil
}

// writeSection writes a section header with title and dashed underline.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len([]rune(title))))
}

func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Harmonygen Run Report")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Run:       %s\n", data.RunID)
	fmt.Fprintf(w, "Generated: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Output:    %s\n", data.OutputRoot)
	if data.CatalogSource != "" {
		fmt.Fprintf(w, "Catalog:   %s\n", data.CatalogSource)
	}
	fmt.Fprintln(w)
}

func writeRunSummary(w io.Writer, data ReportData) {
	writeSection(w, "Run Summary")

	s := data.Summary
	if s == nil {
		fmt.Fprintln(w, "No entries processed")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "Created:   %d of %d\n", s.Created, s.Total)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Skipped:   %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed:    %d", s.Failed)
		if s.Cancelled > 0 {
			fmt.Fprintf(w, " (%d cancelled)", s.Cancelled)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Written:   %s\n", humanize.IBytes(uint64(s.Bytes)))

	fmt.Fprintf(w, "Elapsed:   %s", formatDuration(s.Elapsed))
	if audio := totalAudio(data.Results); audio > 0 && s.Elapsed > 0 {
		fmt.Fprintf(w, " (%.0fx real-time)", float64(audio)/float64(s.Elapsed))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

func writeSettings(w io.Writer, data ReportData) {
	writeSection(w, "Encoder Settings")

	if data.Encoder != "" {
		fmt.Fprintf(w, "Encoder:     %s\n", data.Encoder)
	}
	if data.EncoderInfo != "" {
		fmt.Fprintf(w, "Binary:      %s\n", data.EncoderInfo)
	}
	if cfg := data.Config; cfg != nil {
		fmt.Fprintf(w, "Format:      %s\n", cfg.Format)
		if cfg.Format == processor.FormatMP3 {
			fmt.Fprintf(w, "Bitrate:     %d kbps\n", cfg.Bitrate)
		}
		fmt.Fprintf(w, "Sample rate: %d Hz\n", cfg.SampleRate)
		fmt.Fprintf(w, "Jobs:        %d\n", cfg.Jobs)
		if cfg.Seed != 0 {
			fmt.Fprintf(w, "Seed:        %d\n", cfg.Seed)
		} else {
			fmt.Fprintln(w, "Seed:        random")
		}
	}
	fmt.Fprintln(w)
}

func writeEntries(w io.Writer, results []*processor.Result) {
	category := ""
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if r.Entry.Category != category {
			category = r.Entry.Category
			writeSection(w, category+"/")
			fmt.Fprintln(w)
		}
		writeEntry(w, r)
	}
}

func writeEntry(w io.Writer, r *processor.Result) {
	fmt.Fprintf(w, "%s", r.Entry.Filename)
	if r.Entry.Description != "" {
		fmt.Fprintf(w, ": %s", r.Entry.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Generator: %s\n", r.Entry.Generator)
	fmt.Fprintf(w, "  File:      %s\n", r.Path)
	if r.Skipped {
		fmt.Fprintf(w, "  Status:    skipped, existing file kept (%s)\n", humanize.IBytes(uint64(r.Size)))
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(r.Size)))
	fmt.Fprintf(w, "  Duration:  %s\n", formatDuration(r.Duration))
	fmt.Fprintf(w, "  Elapsed:   %s\n", formatDuration(r.Elapsed))

	if m := r.Measurements; m != nil {
		fmt.Fprintln(w)
		writeMeasurements(w, m)
	}
	fmt.Fprintln(w)
}

// writeMeasurements tabulates the spectral analysis of the rendered buffer,
// one column per channel.
func writeMeasurements(w io.Writer, m *analysis.Measurements) {
	headers := []string{"Mono"}
	if len(m.Channels) == 2 {
		headers = []string{"Left", "Right"}
	}
	table := NewMetricTable(headers...)

	pick := func(f func(analysis.ChannelMeasurements) float64) []float64 {
		values := make([]float64, len(headers))
		for i := range headers {
			if i < len(m.Channels) {
				values[i] = f(m.Channels[i])
			} else {
				values[i] = math.NaN()
			}
		}
		return values
	}

	left := m.Left()
	table.AddMetricRow("Dominant", pick(func(c analysis.ChannelMeasurements) float64 { return c.DominantHz }), 1, "Hz", "")
	table.AddMetricRow("Flatness", pick(func(c analysis.ChannelMeasurements) float64 { return c.Flatness }), 3, "", interpretFlatness(left.Flatness))
	table.AddMetricRow("Crest", pick(func(c analysis.ChannelMeasurements) float64 { return c.Crest }), 1, "", interpretCrest(left.Crest))
	table.AddDBRow("Peak", pick(func(c analysis.ChannelMeasurements) float64 { return c.PeakDBFS }), 1, "")
	table.AddDBRow("RMS", pick(func(c analysis.ChannelMeasurements) float64 { return c.RMSDBFS }), 1, "")

	for _, line := range strings.Split(strings.TrimRight(table.String(), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if len(m.Channels) == 2 {
		beat := math.Abs(m.Right().DominantHz - left.DominantHz)
		fmt.Fprintf(w, "  Beat: %s Hz, %s\n", formatMetric(beat, 1), interpretBeat(beat))
	}
}

func writeFailures(w io.Writer, results []*processor.Result) {
	var failed []*processor.Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	writeSection(w, "Failures")
	for _, r := range failed {
		fmt.Fprintf(w, "%s: %v\n", r.Entry.Key(), r.Err)
	}
	fmt.Fprintln(w)
}

func writePruned(w io.Writer, pruned []string) {
	if len(pruned) == 0 {
		return
	}

	writeSection(w, "Pruned")
	for _, path := range pruned {
		fmt.Fprintln(w, path)
	}
	fmt.Fprintln(w)
}

func totalAudio(results []*processor.Result) time.Duration {
	var total time.Duration
	for _, r := range results {
		if r.Err == nil && !r.Skipped {
			total += r.Duration
		}
	}
	return total
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", minutes/60, minutes%60, seconds)
}
