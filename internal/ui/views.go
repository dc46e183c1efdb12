package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	accentColor  = lipgloss.Color("#5B4BDB")
	successColor = lipgloss.Color("#00AA00")
	warnColor    = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
)

// renderProcessingView renders the main generation view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderEntryQueue(m))
	b.WriteString("\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render("Harmonygen 🎧 - Placeholder Audio Generator")

	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(fmt.Sprintf("Generating %d file(s) into %s", m.TotalEntries, m.OutputRoot))

	return title + "\n" + subtitle
}

// renderEntryQueue renders the visible part of the queue, keeping the active
// entry on screen when the terminal is short.
func renderEntryQueue(m Model) string {
	var b strings.Builder

	first, last := visibleRange(len(m.Entries), m.CurrentIndex, m.Height-8)
	category := ""
	for i := first; i < last; i++ {
		ep := m.Entries[i]
		if ep.Entry.Category != category {
			category = ep.Entry.Category
			b.WriteString(lipgloss.NewStyle().Bold(true).Render("📁 " + category + "/"))
			b.WriteString("\n")
		}
		b.WriteString(renderEntry(ep))
		b.WriteString("\n")
	}

	return b.String()
}

// visibleRange returns the window of at most rows entries around current.
func visibleRange(total, current, rows int) (int, int) {
	if rows <= 0 || total <= rows {
		return 0, total
	}
	first := max(current-rows/2, 0)
	last := first + rows
	if last > total {
		last = total
		first = total - rows
	}
	return first, last
}

// renderEntry renders a single entry in the queue
func renderEntry(ep EntryProgress) string {
	name := ep.Entry.Filename

	switch ep.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
		return fmt.Sprintf("  %s %s (%s) - %s", icon, name, humanize.IBytes(uint64(ep.Size)), ep.Entry.Description)

	case StatusSkipped:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("⏭")
		return fmt.Sprintf("  %s %s skipped, file exists", icon, name)

	case StatusRendering:
		icon := lipgloss.NewStyle().Foreground(warnColor).Render("⚙")
		elapsed := time.Since(ep.StartTime).Seconds()
		return fmt.Sprintf("  %s %s %s", icon, name,
			lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("%s, %.1fs", ep.Entry.Generator, elapsed)))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(errorColor).Render("✗")
		return fmt.Sprintf("  %s %s\n    Error: %v", icon, name, ep.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf("  %s %s", icon, name)
	}
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	finished := m.CompletedCount + m.SkippedCount + m.FailedCount
	var progress float64
	if m.TotalEntries > 0 {
		progress = float64(finished) / float64(m.TotalEntries)
	}

	var content strings.Builder
	content.WriteString(renderProgressBar(progress, 40))
	content.WriteString("\n")
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Entries) {
		fmt.Fprintf(&content, "Generating file %d of %d (%d created", m.CurrentIndex+1, m.TotalEntries, m.CompletedCount)
	} else {
		fmt.Fprintf(&content, "Overall progress: %d/%d (%d created", finished, m.TotalEntries, m.CompletedCount)
	}
	if m.FailedCount > 0 {
		fmt.Fprintf(&content, ", %d failed", m.FailedCount)
	}
	content.WriteString(")\n")
	fmt.Fprintf(&content, "⏱  Elapsed: %.1fs", time.Since(m.StartTime).Seconds())

	return box.Render(content.String())
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("✨ Generation complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, ep := range m.Entries {
		if ep.Status == StatusComplete || ep.Status == StatusError {
			b.WriteString(renderEntry(ep))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	fmt.Fprintf(&b, "📊 Created: %d of %d files", m.CompletedCount, m.TotalEntries)
	if m.SkippedCount > 0 {
		fmt.Fprintf(&b, ", %d skipped", m.SkippedCount)
	}
	if m.FailedCount > 0 {
		fmt.Fprintf(&b, ", %d failed", m.FailedCount)
	}
	b.WriteString("\n")
	if m.Summary != nil {
		fmt.Fprintf(&b, "💾 Written: %s\n", humanize.IBytes(uint64(m.Summary.Bytes)))
	}
	fmt.Fprintf(&b, "📁 Location: %s\n", m.OutputRoot)
	if len(m.Pruned) > 0 {
		fmt.Fprintf(&b, "🧹 Pruned: %d stale file(s)\n", len(m.Pruned))
	}
	if m.PruneErr != nil {
		fmt.Fprintf(&b, "⚠️  Prune failed: %v\n", m.PruneErr)
	}
	b.WriteString("\n")
	b.WriteString(PlaceholderReminder)
	b.WriteString("\n")

	return b.String()
}
