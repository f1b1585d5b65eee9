package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a jac.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "social"
version = "0.1.0"

[source]
dirs = ["src", "graph"]
include = ["*.jac"]
exclude = ["*_draft.jac"]

[check]
debounce-ms = 100

[index]
path = "build/symbols.db"
`
	if err := os.WriteFile(filepath.Join(dir, "jac.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "social" {
		t.Errorf("project name = %q, want social", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if len(m.Source.Exclude) != 1 || m.Source.Exclude[0] != "*_draft.jac" {
		t.Errorf("source exclude = %v, want [*_draft.jac]", m.Source.Exclude)
	}
	if m.Check.DebounceMs != 100 {
		t.Errorf("check debounce = %d, want 100", m.Check.DebounceMs)
	}
	if m.IndexPath() != filepath.Join(m.Dir, "build", "symbols.db") {
		t.Errorf("index path = %q, want under %s/build", m.IndexPath(), m.Dir)
	}
	if m.ProjectKey() != "social" {
		t.Errorf("project key = %q, want social", m.ProjectKey())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, "jac.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Default source dir should be "src"
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default source dirs = %v, want [src]", m.Source.Dirs)
	}
	if len(m.Source.Include) != 1 || m.Source.Include[0] != "*.jac" {
		t.Errorf("default include = %v, want [*.jac]", m.Source.Include)
	}
	if m.Check.DebounceMs != 250 {
		t.Errorf("default debounce = %d, want 250", m.Check.DebounceMs)
	}
	if m.Index.Path != filepath.Join(".jac", "index.db") {
		t.Errorf("default index path = %q, want .jac/index.db", m.Index.Path)
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, "jac.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no jac.toml exists")
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"src", "graph"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/src" {
		t.Errorf("paths[0] = %q, want /app/src", paths[0])
	}
	if paths[1] != "/app/graph" {
		t.Errorf("paths[1] = %q, want /app/graph", paths[1])
	}
}

func TestSourcesGlobDiscovery(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	nested := filepath.Join(srcDir, "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	write := func(path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("node A {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(srcDir, "main.jac"))
	write(filepath.Join(nested, "graph.jac"))
	write(filepath.Join(srcDir, "wip_draft.jac"))
	write(filepath.Join(srcDir, "notes.txt"))

	tomlContent := `
[project]
name = "globs"

[source]
dirs = ["src"]
exclude = ["*_draft.jac"]
`
	if err := os.WriteFile(filepath.Join(dir, "jac.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	files, err := m.Sources()
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("sources = %v, want main.jac and nested/graph.jac", files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "main.jac" && base != "graph.jac" {
			t.Errorf("unexpected source %q", f)
		}
	}
}

func TestSourcesMissingDir(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "empty"
`
	if err := os.WriteFile(filepath.Join(dir, "jac.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	files, err := m.Sources()
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("sources = %v, want none for a workspace without src/", files)
	}
}

func TestMatcherBadPattern(t *testing.T) {
	m := &Manifest{
		Source: Source{Include: []string{"[unclosed"}},
	}
	if _, err := m.Matcher(); err == nil {
		t.Error("expected error for malformed include pattern")
	}
}
