package ui

import (
	"github.com/linuxmatters/harmonygen/internal/catalog"
	"github.com/linuxmatters/harmonygen/internal/processor"
)

// EntryStartMsg indicates an entry has started rendering
type EntryStartMsg struct {
	Index int
	Entry catalog.Entry
}

// EntryCompleteMsg indicates an entry has been written, skipped or failed
type EntryCompleteMsg struct {
	Result *processor.Result
}

// PruneMsg reports stale files removed from the output directory
type PruneMsg struct {
	Removed []string
	Err     error
}

// AllCompleteMsg indicates every entry has been processed
type AllCompleteMsg struct {
	Summary *processor.Summary
}
