package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	ChangeSource ChangeType = iota
	ChangeTest
	ChangeConfig
)

func (t ChangeType) String() string {
	switch t {
	case ChangeSource:
		return "source"
	case ChangeTest:
		return "test"
	default:
		return "config"
	}
}

// Change is a created, modified or deleted file.
type Change struct {
	Path string
	Type ChangeType
}

// Config configures a Watcher.
type Config struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore lists directory names and base-name globs to skip.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"vendor",
	"testdata",
	"_*",
	".*.swp",
	"*~",
}

// Watcher polls Paths for changes to .go files and vspec.json/vspec.yaml.
type Watcher struct {
	config Config

	mu      sync.Mutex
	running bool
	files   map[string]time.Time
}

// New creates a Watcher.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{config: config}
}

// Run scans once, then polls until ctx is done, calling onChange with the
// changes found by each poll that found any. It returns ctx.Err().
func (w *Watcher) Run(ctx context.Context, onChange func([]Change)) error {
	w.mu.Lock()
	w.running = true
	w.files = w.scan()
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changes := w.Poll(); len(changes) > 0 {
				onChange(changes)
			}
		}
	}
}

// Poll rescans and returns the changes since the previous scan. The
// first scan only records a baseline.
func (w *Watcher) Poll() []Change {
	current := w.scan()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files == nil {
		w.files = current
		return nil
	}

	var changes []Change
	for p, mod := range current {
		if prev, ok := w.files[p]; !ok || mod.After(prev) {
			changes = append(changes, Change{Path: p, Type: classify(p)})
		}
	}
	for p := range w.files {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classify(p)})
		}
	}
	w.files = current
	return changes
}

// IsRunning reports whether Run is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) scan() map[string]time.Time {
	files := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && w.ignored(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.ignored(d.Name()) || !watched(d.Name()) {
				return nil
			}
			if info, err := d.Info(); err == nil {
				files[p] = info.ModTime()
			}
			return nil
		})
	}
	return files
}

func (w *Watcher) ignored(name string) bool {
	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func watched(name string) bool {
	return strings.HasSuffix(name, ".go") || isConfig(name)
}

func isConfig(name string) bool {
	return name == "vspec.json" || name == "vspec.yaml"
}

func classify(p string) ChangeType {
	name := filepath.Base(p)
	switch {
	case isConfig(name):
		return ChangeConfig
	case strings.HasSuffix(name, "_test.go"):
		return ChangeTest
	default:
		return ChangeSource
	}
}
