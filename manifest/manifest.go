// Package manifest handles corvel.toml host configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a corvel.toml host configuration.
type Manifest struct {
	Project   Project  `toml:"project"`
	Runtime   Runtime  `toml:"runtime"`
	Libraries []string `toml:"libraries"`
	Run       Run      `toml:"run"`

	// Dir is the directory containing the corvel.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Runtime configures VM limits. Zero values mean no limit.
type Runtime struct {
	MemLimit   int64 `toml:"mem-limit"`
	StackLimit int   `toml:"stack-limit"`
}

// Run configures the chunks executed at startup.
type Run struct {
	Chunks []string `toml:"chunks"`
}

// KnownLibraries are the names accepted in the libraries list.
var KnownLibraries = []string{"base", "store", "uuid"}

// Load parses a corvel.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "corvel.toml")
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
	if len(m.Libraries) == 0 {
		m.Libraries = []string{"base"}
	}

	for _, lib := range m.Libraries {
		if !knownLibrary(lib) {
			return nil, fmt.Errorf("%s: unknown library %q", path, lib)
		}
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a corvel.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "corvel.toml")
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

// ChunkPaths returns absolute paths for the configured startup chunks.
func (m *Manifest) ChunkPaths() []string {
	var paths []string
	for _, c := range m.Run.Chunks {
		if filepath.IsAbs(c) {
			paths = append(paths, c)
			continue
		}
		paths = append(paths, filepath.Join(m.Dir, c))
	}
	return paths
}

func knownLibrary(name string) bool {
	for _, k := range KnownLibraries {
		if k == name {
			return true
		}
	}
	return false
}
