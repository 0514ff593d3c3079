// Package challenges loads per-challenge metadata files (hints and fix
// explanations) stored next to the challenge sources.
package challenges

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fix explains one candidate fix for a challenge.
type Fix struct {
	ID          int    `yaml:"id" json:"id"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// Info is the content of a <key>.info.yml file.
type Info struct {
	Fixes []Fix    `yaml:"fixes" json:"fixes,omitempty"`
	Hints []string `yaml:"hints" json:"hints,omitempty"`
}

// Loader reads info files from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a Loader over dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the info for key. A challenge without an info file yields
// (nil, nil). Keys that would escape the info directory are treated the same
// way.
func (l *Loader) Load(ctx context.Context, key string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(key) {
		return nil, nil
	}

	path := filepath.Join(l.dir, key+".info.yml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read challenge info: %w", err)
	}

	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &info, nil
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && !strings.Contains(key, "..")
}
