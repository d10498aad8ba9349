package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "corvel.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
libraries = ["base", "store"]

[project]
name = "demo"
version = "0.1.0"

[runtime]
mem-limit = 1048576
stack-limit = 256

[run]
chunks = ["boot.cvl", "main.cvl"]
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Project.Name != "demo" || m.Project.Version != "0.1.0" {
		t.Errorf("project = %+v", m.Project)
	}
	if m.Runtime.MemLimit != 1048576 || m.Runtime.StackLimit != 256 {
		t.Errorf("runtime = %+v", m.Runtime)
	}
	if len(m.Libraries) != 2 || m.Libraries[0] != "base" || m.Libraries[1] != "store" {
		t.Errorf("libraries = %v", m.Libraries)
	}
	if len(m.Run.Chunks) != 2 {
		t.Errorf("chunks = %v", m.Run.Chunks)
	}
	if !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir not absolute: %q", m.Dir)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "bare"
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Libraries) != 1 || m.Libraries[0] != "base" {
		t.Errorf("default libraries = %v", m.Libraries)
	}
	if m.Runtime.MemLimit != 0 || m.Runtime.StackLimit != 0 {
		t.Errorf("default runtime = %+v", m.Runtime)
	}
}

func TestLoadUnknownLibrary(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `libraries = ["base", "teleport"]`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), `unknown library "teleport"`) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "cannot read") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `project = [`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("err = %v", err)
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[project]
name = "above"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Project.Name != "above" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("expected no manifest, got %+v", m)
	}
}

func TestChunkPaths(t *testing.T) {
	m := &Manifest{Dir: "/proj"}
	m.Run.Chunks = []string{"boot.cvl", "/abs/main.cvl"}
	got := m.ChunkPaths()
	want := []string{filepath.Join("/proj", "boot.cvl"), "/abs/main.cvl"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("paths = %v, want %v", got, want)
	}
}
