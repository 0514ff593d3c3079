package snippets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repository holds the challenges found under a set of source paths. It
// loads lazily on first use and keeps the last good load when a reload fails.
type Repository struct {
	sources  []string
	log      *zap.Logger
	debounce time.Duration

	mu         sync.RWMutex
	challenges map[string]*Challenge
	loaded     bool
}

// NewRepository creates a repository over the given files or directories.
func NewRepository(sources []string, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		sources:  append([]string(nil), sources...),
		log:      log.Named("snippets"),
		debounce: 250 * time.Millisecond,
	}
}

// Get returns the challenge for key, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, key string) (*Challenge, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := all[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return c, nil
}

// Keys returns every known challenge key in sorted order.
func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Repository) all(ctx context.Context) (map[string]*Challenge, error) {
	r.mu.RLock()
	if r.loaded {
		defer r.mu.RUnlock()
		return r.challenges, nil
	}
	r.mu.RUnlock()

	if err := r.Reload(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.challenges, nil
}

// Reload rescans all sources and replaces the cached challenges. On error the
// previous set stays in place.
func (r *Repository) Reload(ctx context.Context) error {
	files, err := r.collectFiles()
	if err != nil {
		return err
	}

	results := make([][]*Challenge, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if !HasMarkers(src) {
				return nil
			}
			challenges, err := ParseFile(file, src)
			if err != nil {
				return err
			}
			results[i] = challenges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make(map[string]*Challenge)
	for _, challenges := range results {
		for _, c := range challenges {
			if prev, dup := next[c.Key]; dup {
				r.log.Warn("duplicate challenge key, keeping first",
					zap.String("key", c.Key),
					zap.String("kept", prev.File),
					zap.String("ignored", c.File))
				continue
			}
			next[c.Key] = c
		}
	}

	r.mu.Lock()
	r.challenges = next
	r.loaded = true
	r.mu.Unlock()

	r.log.Info("loaded code challenges", zap.Int("challenges", len(next)), zap.Int("files", len(files)))
	return nil
}

// collectFiles expands the configured sources into a sorted file list.
// Missing sources are skipped; hidden directories and node_modules are not
// descended into.
func (r *Repository) collectFiles() ([]string, error) {
	var files []string
	for _, src := range r.sources {
		info, err := os.Stat(src)
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("snippet source missing", zap.String("path", src))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", src, err)
		}
		if !info.IsDir() {
			files = append(files, src)
			continue
		}

		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != src && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", src, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
