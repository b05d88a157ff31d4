package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Exclusions holds the users and groups hidden from user queries.
// Safe for concurrent use; Set swaps the whole snapshot.
type Exclusions struct {
	snap atomic.Pointer[exclusionSnapshot]
}

type exclusionSnapshot struct {
	users  []string
	groups []string
}

// NewExclusions creates an exclusion set from config lists.
func NewExclusions(cfg ExclusionsConfig) *Exclusions {
	e := &Exclusions{}
	e.Set(cfg)
	return e
}

// Set replaces both lists.
func (e *Exclusions) Set(cfg ExclusionsConfig) {
	e.snap.Store(&exclusionSnapshot{
		users:  normalizeList(cfg.Users),
		groups: normalizeList(cfg.Groups),
	})
}

// Users returns excluded user names, sorted and deduplicated.
func (e *Exclusions) Users() []string {
	if s := e.snap.Load(); s != nil {
		return slices.Clone(s.users)
	}
	return nil
}

// Groups returns excluded group ids, sorted and deduplicated.
func (e *Exclusions) Groups() []string {
	if s := e.snap.Load(); s != nil {
		return slices.Clone(s.groups)
	}
	return nil
}

// HasGroup reports whether group is excluded.
func (e *Exclusions) HasGroup(group string) bool {
	s := e.snap.Load()
	if s == nil {
		return false
	}
	_, ok := slices.BinarySearch(s.groups, group)
	return ok
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// WatchExclusions reloads the exclusion lists whenever the config file changes.
// Blocks until ctx is cancelled. Other sections are not reloaded.
func WatchExclusions(ctx context.Context, path string, excl *Exclusions, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files by rename.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFile(path)
			if err != nil {
				log.Warn("config reload failed, keeping previous exclusions", zap.Error(err))
				continue
			}
			excl.Set(cfg.Exclusions)
			log.Info("exclusions reloaded",
				zap.Int("users", len(cfg.Exclusions.Users)),
				zap.Int("groups", len(cfg.Exclusions.Groups)),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
