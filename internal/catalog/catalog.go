// Package catalog holds the declarative table of placeholder assets:
// which files to create, in which category, and how to synthesize each one.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an ordered list of categories.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

// Category groups entries that share an output directory.
type Category struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// Entry is one asset to generate. Category is filled in by Entries().
type Entry struct {
	Category    string    `yaml:"-"`
	Filename    string    `yaml:"file"`
	Description string    `yaml:"description"`
	Generator   Generator `yaml:"generator"`
}

// Key returns "category/filename", the identifier used on the command line.
func (e Entry) Key() string {
	return e.Category + "/" + e.Filename
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML catalog data.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories defined", ErrInvalidCatalog)
	}

	var errs []error
	seenCategories := make(map[string]bool)
	for ci, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("category %d: name is empty", ci+1))
		case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
			errs = append(errs, fmt.Errorf("category %q: name must be a single directory", name))
		case seenCategories[name]:
			errs = append(errs, fmt.Errorf("category %q: defined more than once", name))
		}
		seenCategories[name] = true

		if len(cat.Entries) == 0 {
			errs = append(errs, fmt.Errorf("category %q: no entries", name))
		}

		seenFiles := make(map[string]bool)
		for ei, entry := range cat.Entries {
			where := fmt.Sprintf("%s[%d]", name, ei+1)
			file := strings.TrimSpace(entry.Filename)
			switch {
			case file == "":
				errs = append(errs, fmt.Errorf("%s: file is empty", where))
				continue
			case strings.ContainsAny(file, `/\`) || file == "." || file == "..":
				errs = append(errs, fmt.Errorf("%s: file %q must not contain a path", where, file))
			case seenFiles[TrimAudioExt(file)]:
				errs = append(errs, fmt.Errorf("%s: file %q listed more than once", where, file))
			}
			seenFiles[TrimAudioExt(file)] = true

			if err := entry.Generator.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s (%s): %w", where, file, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n%w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

// Entries flattens the catalog into generation order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, cat := range c.Categories {
		for _, e := range cat.Entries {
			e.Category = cat.Name
			out = append(out, e)
		}
	}
	return out
}

// Count returns the total number of entries.
func (c *Catalog) Count() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Entries)
	}
	return n
}

// CategoryNames returns the category names in catalog order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// Filter returns a catalog limited to the named categories, keeping catalog
// order. An empty list returns c unchanged.
func (c *Catalog) Filter(categories ...string) (*Catalog, error) {
	if len(categories) == 0 {
		return c, nil
	}

	want := make(map[string]bool, len(categories))
	for _, name := range categories {
		want[name] = true
	}

	out := &Catalog{}
	for _, cat := range c.Categories {
		if want[cat.Name] {
			out.Categories = append(out.Categories, cat)
			delete(want, cat.Name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for _, name := range categories {
			if want[name] {
				unknown = append(unknown, name)
			}
		}
		return nil, fmt.Errorf("unknown categories: %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(c.CategoryNames(), ", "))
	}
	return out, nil
}

// Find returns the entry identified by "category/filename". The extension
// of filename may be omitted.
func (c *Catalog) Find(key string) (Entry, bool) {
	category, file, ok := strings.Cut(key, "/")
	if !ok {
		return Entry{}, false
	}
	for _, e := range c.Entries() {
		if e.Category != category {
			continue
		}
		if e.Filename == file || TrimAudioExt(e.Filename) == TrimAudioExt(file) {
			return e, true
		}
	}
	return Entry{}, false
}

// audioExts are the extensions stripped before applying the output format's.
var audioExts = []string{".mp3", ".wav"}

// TrimAudioExt removes a known audio extension from name.
func TrimAudioExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range audioExts {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// IsAudioFile reports whether name carries a known audio extension.
func IsAudioFile(name string) bool {
	return TrimAudioExt(name) != name
}
