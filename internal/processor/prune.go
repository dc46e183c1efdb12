package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/harmonygen/internal/catalog"
)

// Prune removes files from the category directories of entries that the
// catalog would not write: audio files with no matching entry and stale
// temp files from interrupted runs. Other files and subdirectories are left
// alone. It returns the removed paths.
func (p *Pipeline) Prune(entries []catalog.Entry) ([]string, error) {
	keep := make(map[string]bool, len(entries))
	seen := make(map[string]bool)
	var dirs []string
	for _, e := range entries {
		path := p.OutputPath(e)
		keep[path] = true
		if dir := filepath.Dir(path); !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	var removed []string
	var errs []error
	for _, dir := range dirs {
		items, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read %s: %w", dir, err))
			continue
		}

		for _, item := range items {
			if !item.Type().IsRegular() {
				continue
			}
			name := item.Name()
			path := filepath.Join(dir, name)
			stale := strings.HasPrefix(name, TempPrefix)
			if !stale && (keep[path] || !catalog.IsAudioFile(name)) {
				continue
			}
			if err := os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
				continue
			}
			p.logger().Debugf("pruned %s", path)
			removed = append(removed, path)
		}
	}
	return removed, errors.Join(errs...)
}
