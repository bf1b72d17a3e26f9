package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Options configure a Watcher.
type Options struct {
	// Dirs are watched non-recursively.
	Dirs []string
	// Match selects the file names that trigger a rebuild; nil matches all.
	Match func(name string) bool
	// Debounce collapses bursts of events into one rebuild.
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watcher calls a rebuild function after matching files change.
type Watcher struct {
	opts    Options
	rebuild func(ctx context.Context) error
}

// New creates a Watcher calling rebuild on changes.
func New(opts Options, rebuild func(ctx context.Context) error) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}

	return &Watcher{opts: opts, rebuild: rebuild}
}

// Run watches until ctx is done. Rebuild errors are logged and do not stop
// the loop. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range Dirs(w.opts.Dirs) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}

		w.opts.Logger.Info().Str("dir", dir).Msg("watching for changes")
	}

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.opts.Logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("input changed")

			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			if err := w.rebuild(ctx); err != nil {
				w.opts.Logger.Error().Err(err).Msg("rebuild failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.opts.Logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	return w.opts.Match(filepath.Base(event.Name))
}

// Dirs returns the sorted, de-duplicated clean forms of dirs.
func Dirs(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))

	for _, d := range dirs {
		d = filepath.Clean(d)
		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		out = append(out, d)
	}

	sort.Strings(out)

	return out
}
