// Package manifest handles jac.toml workspace configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// Manifest represents a jac.toml workspace configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Check   Check   `toml:"check"`
	Index   Index   `toml:"index"`

	// Dir is the directory containing the jac.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures which files belong to the workspace. Include and
// exclude patterns match file base names.
type Source struct {
	Dirs    []string `toml:"dirs"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Check configures the watch-mode re-check loop.
type Check struct {
	DebounceMs int `toml:"debounce-ms"`
}

// Index configures the workspace symbol index store.
type Index struct {
	Path string `toml:"path"`
}

// Load parses a jac.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "jac.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if len(m.Source.Include) == 0 {
		m.Source.Include = []string{"*.jac"}
	}
	if m.Check.DebounceMs <= 0 {
		m.Check.DebounceMs = 250
	}
	if m.Index.Path == "" {
		m.Index.Path = filepath.Join(".jac", "index.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a jac.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "jac.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// IndexPath returns the absolute path of the symbol index store.
func (m *Manifest) IndexPath() string {
	return filepath.Join(m.Dir, m.Index.Path)
}

// ProjectKey identifies the project inside shared stores.
func (m *Manifest) ProjectKey() string {
	if name := strings.TrimSpace(m.Project.Name); name != "" {
		return name
	}
	return "default"
}

// Matcher compiles the manifest's include and exclude patterns into a file
// filter over base names.
func (m *Manifest) Matcher() (*Matcher, error) {
	include, err := compileGlobs(m.Source.Include)
	if err != nil {
		return nil, fmt.Errorf("bad include pattern: %w", err)
	}
	exclude, err := compileGlobs(m.Source.Exclude)
	if err != nil {
		return nil, fmt.Errorf("bad exclude pattern: %w", err)
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Sources walks the configured source directories and returns every file
// selected by the include patterns and not rejected by the exclude
// patterns, sorted for deterministic check runs. Missing directories are
// skipped silently so a fresh workspace checks clean.
func (m *Manifest) Sources() ([]string, error) {
	matcher, err := m.Matcher()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, dir := range m.SourceDirPaths() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && matcher.Match(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Matcher filters paths by the manifest's include and exclude patterns.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// Match reports whether the path's base name passes the filter.
func (f *Matcher) Match(path string) bool {
	base := filepath.Base(path)
	included := false
	for _, g := range f.include {
		if g.Match(base) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, g := range f.exclude {
		if g.Match(base) {
			return false
		}
	}
	return true
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}
