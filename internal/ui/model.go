// Package ui reports generation progress, either as plain console lines or
// as a Bubbletea terminal user interface.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/logging"
	"github.com/linuxmatters/harmonygen/internal/processor"
)

// EntryStatus represents the state of a single catalog entry
type EntryStatus int

const (
	StatusQueued EntryStatus = iota
	StatusRendering
	StatusComplete
	StatusSkipped
	StatusError
)

// EntryProgress tracks one catalog entry through the run
type EntryProgress struct {
	Entry  catalog.Entry
	Status EntryStatus

	StartTime   time.Time
	ElapsedTime time.Duration

	// Completion results
	OutputPath string
	Size       int64
	Duration   time.Duration

	Error error
}

// Model is the Bubbletea model for the generation UI
type Model struct {
	// Entry queue
	Entries        []EntryProgress
	CurrentIndex   int
	TotalEntries   int
	CompletedCount int
	SkippedCount   int
	FailedCount    int

	OutputRoot string

	// Global state
	StartTime   time.Time
	Done        bool
	Interrupted bool
	Summary     *processor.Summary
	Pruned      []string
	PruneErr    error

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model for the given entries
func NewModel(entries []catalog.Entry, outputRoot string) Model {
	progress := make([]EntryProgress, len(entries))
	for i, entry := range entries {
		progress[i] = EntryProgress{
			Entry:  entry,
			Status: StatusQueued,
		}
	}

	return Model{
		Entries:      progress,
		CurrentIndex: -1, // Nothing rendering yet
		TotalEntries: len(entries),
		OutputRoot:   outputRoot,
		StartTime:    time.Now(),
	}
}

// Init initializes the model. Progress arrives through tea.Program.Send.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Interrupted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case EntryStartMsg:
		logging.Debugf("ui: entry %d started: %s", msg.Index, msg.Entry.Key())
		if msg.Index < 0 || msg.Index >= len(m.Entries) {
			return m, nil
		}
		m.CurrentIndex = msg.Index
		m.Entries[msg.Index].Status = StatusRendering
		m.Entries[msg.Index].StartTime = time.Now()
		return m, nil

	case EntryCompleteMsg:
		r := msg.Result
		if r == nil || r.Index < 0 || r.Index >= len(m.Entries) {
			return m, nil
		}
		logging.Debugf("ui: entry %d complete: %s", r.Index, r.Entry.Key())
		m.Entries[r.Index] = completeEntry(m.Entries[r.Index], r)
		switch m.Entries[r.Index].Status {
		case StatusError:
			m.FailedCount++
		case StatusSkipped:
			m.SkippedCount++
		default:
			m.CompletedCount++
		}
		return m, nil

	case PruneMsg:
		m.Pruned = msg.Removed
		m.PruneErr = msg.Err
		return m, nil

	case AllCompleteMsg:
		logging.Debugf("ui: all entries processed")
		m.Done = true
		m.Summary = msg.Summary
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nEntries: %d\n", len(m.Entries))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// completeEntry records a pipeline result against its queue slot
func completeEntry(ep EntryProgress, r *processor.Result) EntryProgress {
	ep.OutputPath = r.Path
	ep.Size = r.Size
	ep.Duration = r.Duration
	ep.ElapsedTime = r.Elapsed
	ep.Error = r.Err

	switch {
	case r.Err != nil:
		ep.Status = StatusError
	case r.Skipped:
		ep.Status = StatusSkipped
	default:
		ep.Status = StatusComplete
	}
	return ep
}
