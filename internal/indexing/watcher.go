package indexing

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

// ChangeHandler receives the relative paths of the selected files that
// changed during one quiet period, sorted
type ChangeHandler func(ctx context.Context, changed []string)

// FileWatcher monitors an analysis root and reports batches of changed files
// once events have stopped arriving for the debounce interval
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	scanner  *FileScanner
	debounce time.Duration
	onChange ChangeHandler

	statsMu sync.RWMutex
	stats   WatchStats
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	Batches         int64
	ErrorCount      int64
	LastEventTime   time.Time
}

// NewFileWatcher creates a watcher over the scanner's root. Directories the
// scanner prunes are never watched.
func NewFileWatcher(scanner *FileScanner, debounce time.Duration, onChange ChangeHandler) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &FileWatcher{
		watcher:  w,
		scanner:  scanner,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run watches until ctx is cancelled. The change handler runs on the
// watching goroutine, so events arriving during a handler call are batched
// into the next one.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()

	root := fw.scanner.Root()
	if err := fw.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}
	debug.LogPipeline("watching %s (debounce %v)", root, fw.debounce)

	pending := map[string]struct{}{}
	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if rel, ok := fw.handleEvent(event); ok {
				pending[rel] = struct{}{}
				timer.Reset(fw.debounce)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.recordError()
			debug.LogPipeline("watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}

			fw.recordBatch()
			debug.LogPipeline("processing %d changed files", len(changed))
			if fw.onChange != nil {
				fw.onChange(ctx, changed)
			}
		}
	}
}

// handleEvent returns the relative path of a selected file touched by event
func (fw *FileWatcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel := pathutil.ToKey(event.Name, fw.scanner.Root())
	fw.recordEvent()

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !fw.scanner.ExcludesDir(rel) {
				if err := fw.addWatches(event.Name); err != nil {
					debug.LogPipeline("failed to watch new directory %s: %v", rel, err)
				}
			}
			return "", false
		}
	}

	if !fw.scanner.Selects(rel) {
		return "", false
	}
	return rel, true
}

// addWatches adds a watch for dir and every directory below it that the scanner does not prune
func (fw *FileWatcher) addWatches(dir string) error {
	root := fw.scanner.Root()
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && fw.scanner.ExcludesDir(pathutil.ToKey(path, root)) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			debug.LogPipeline("failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// Stats returns current watch statistics
func (fw *FileWatcher) Stats() WatchStats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()
	return fw.stats
}

func (fw *FileWatcher) recordEvent() {
	fw.statsMu.Lock()
	fw.stats.EventsProcessed++
	fw.stats.LastEventTime = time.Now()
	fw.statsMu.Unlock()
}

func (fw *FileWatcher) recordBatch() {
	fw.statsMu.Lock()
	fw.stats.Batches++
	fw.statsMu.Unlock()
}

func (fw *FileWatcher) recordError() {
	fw.statsMu.Lock()
	fw.stats.ErrorCount++
	fw.statsMu.Unlock()
}
