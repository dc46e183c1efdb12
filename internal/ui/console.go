package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/processor"
)

// PlaceholderReminder closes every run: the generated files stand in for
// real recordings.
const PlaceholderReminder = "⚠️  For production, replace with professional recordings"

// NextSteps are printed after a successful run
var NextSteps = []string{
	"Start the dev server: npm run dev",
	"Open http://localhost:3000/player",
	"Test audio playback",
}

// Console prints one line per entry, grouped by category. Its methods match
// the callbacks taken by processor.Pipeline.Run and are not safe for
// concurrent use.
type Console struct {
	w     io.Writer
	root  string
	total int
	count int

	category string
	pending  bool // an entry line is waiting for its result

	header  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewConsole creates a reporter writing to w. Colour is only used when w is
// a terminal.
func NewConsole(w io.Writer, root string) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		root:    root,
		header:  r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(successColor),
		failure: r.NewStyle().Bold(true).Foreground(errorColor),
		muted:   r.NewStyle().Foreground(mutedColor),
	}
}

// Begin announces the run.
func (c *Console) Begin(total int) {
	c.total = total
	fmt.Fprintf(c.w, "📦 Generating %d audio files into %s...\n", total, c.root)
}

// EntryStart prints the category header when it changes, then the start of
// the entry line.
func (c *Console) EntryStart(index int, entry catalog.Entry) {
	c.endPending()

	if entry.Category != c.category {
		c.category = entry.Category
		fmt.Fprintf(c.w, "\n%s\n", c.header.Render("📁 "+entry.Category+"/"))
	}
	c.count = index + 1
	fmt.Fprintf(c.w, "  [%d/%d] Generating %s... ", c.count, c.total, entry.Filename)
	c.pending = true
}

// EntryResult completes the entry line.
func (c *Console) EntryResult(r *processor.Result) {
	if !c.pending {
		fmt.Fprintf(c.w, "  [%d/%d] %s... ", r.Index+1, c.total, r.Entry.Filename)
	}
	c.pending = false

	switch {
	case r.Err != nil:
		fmt.Fprintf(c.w, "%s %v\n", c.failure.Render("❌ Error:"), r.Err)
	case r.Skipped:
		fmt.Fprintf(c.w, "%s\n", c.muted.Render(fmt.Sprintf("⏭️  skipped, exists (%s)", humanize.IBytes(uint64(r.Size)))))
	default:
		fmt.Fprintf(c.w, "%s - %s\n", c.success.Render(fmt.Sprintf("✅ (%s)", humanize.IBytes(uint64(r.Size)))), r.Entry.Description)
	}
}

// Pruned lists files removed by --prune.
func (c *Console) Pruned(removed []string, err error) {
	c.endPending()
	if len(removed) == 0 && err == nil {
		return
	}

	fmt.Fprintf(c.w, "\n%s\n", c.header.Render("🧹 Pruned"))
	for _, path := range removed {
		fmt.Fprintf(c.w, "   %s\n", path)
	}
	if err != nil {
		fmt.Fprintf(c.w, "%s %v\n", c.failure.Render("❌ Error:"), err)
	}
}

// Summary prints the final counts, location and reminders.
func (c *Console) Summary(s *processor.Summary) {
	c.endPending()

	fmt.Fprintf(c.w, "\n%s\n\n", strings.Repeat("=", 60))
	switch {
	case s.Cancelled > 0:
		fmt.Fprintln(c.w, c.failure.Render("🛑 Generation interrupted"))
	case s.Failed > 0:
		fmt.Fprintln(c.w, c.failure.Render("⚠️  Generation finished with errors"))
	default:
		fmt.Fprintln(c.w, c.header.Render("✨ Generation complete!"))
	}

	fmt.Fprintf(c.w, "   📊 Created: %d of %d files\n", s.Created, s.Total)
	if s.Skipped > 0 {
		fmt.Fprintf(c.w, "   ⏭️  Skipped: %d existing\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(c.w, "   ❌ Failed: %d\n", s.Failed)
	}
	fmt.Fprintf(c.w, "   💾 Written: %s in %.1fs\n", humanize.IBytes(uint64(s.Bytes)), s.Elapsed.Seconds())
	fmt.Fprintf(c.w, "   📁 Location: %s\n", c.root)

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, "🎧 These files contain real audio (binaural beats, noise and tones)")
	fmt.Fprintln(c.w, "   You should hear sound when playing them!")
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, PlaceholderReminder)

	if s.Failed == 0 {
		fmt.Fprintf(c.w, "\n%s\n", c.header.Render("📚 Next steps:"))
		for i, step := range NextSteps {
			fmt.Fprintf(c.w, "   %d. %s\n", i+1, step)
		}
	}
}

// endPending terminates an entry line that never received its result.
func (c *Console) endPending() {
	if c.pending {
		fmt.Fprintln(c.w)
		c.pending = false
	}
}
