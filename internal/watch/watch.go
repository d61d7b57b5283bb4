package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/epuerta/codex-patch/internal/logging"
)

// DefaultDebounce is how long the inbox must be quiet before queued files are applied
const DefaultDebounce = 150 * time.Millisecond

const (
	inboxExt   = ".json"
	doneSuffix = ".done"
	failSuffix = ".failed"
	resultsExt = ".results"
)

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	Logger   logging.Logger
	// OnProcessed is called after each inbox file has been applied.
	OnProcessed func(file string, results []editor.Result)
}

// Watcher applies operation files dropped into an inbox directory
type Watcher struct {
	inbox  string
	editor *editor.Editor
	opts   Options
}

// New creates a Watcher for inbox, creating the directory if needed
func New(inbox string, ed *editor.Editor, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox path: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNilLogger()
	}
	return &Watcher{inbox: abs, editor: ed, opts: opts}, nil
}

// Inbox returns the absolute inbox directory
func (w *Watcher) Inbox() string {
	return w.inbox
}

// Run watches the inbox until ctx is done. Files already present when Run
// starts are applied first.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.inbox); err != nil {
		return fmt.Errorf("watch inbox %s: %w", w.inbox, err)
	}
	w.opts.Logger.Log("Watching inbox %s (debounce %s)", w.inbox, w.opts.Debounce)

	if err := w.ProcessPending(); err != nil {
		return err
	}

	var debounceTimer *time.Timer
	pending := make(map[string]struct{})

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(&debounceTimer)
			w.opts.Logger.Log("Stopping inbox watcher: %v", ctx.Err())
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isInboxEvent(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = struct{}{}
			w.scheduleFlush(&debounceTimer)
		case err, ok := <-watcher.Errors:
			if !ok || err == nil {
				continue
			}
			w.opts.Logger.Log("Watcher error: %v", err)
		case <-debounceC:
			stopTimer(&debounceTimer)
			w.flush(pending)
			pending = make(map[string]struct{})
		}
	}
}

// ProcessPending applies every operation file currently in the inbox
func (w *Watcher) ProcessPending() error {
	matches, err := filepath.Glob(filepath.Join(w.inbox, "*"+inboxExt))
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}
	pending := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		pending[m] = struct{}{}
	}
	w.flush(pending)
	return nil
}

// ProcessFile applies the operations in path, writes the results next to it
// and renames it to .done when every operation completed, .failed otherwise.
func (w *Watcher) ProcessFile(path string) ([]editor.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var results []editor.Result
	ops, decodeErr := editor.DecodeOperations(data)
	if decodeErr != nil {
		results = []editor.Result{{Status: editor.StatusFailed, Output: decodeErr.Error()}}
	} else {
		results = w.editor.ApplyAll(ops)
	}

	suffix := doneSuffix
	for _, r := range results {
		if !r.OK() {
			suffix = failSuffix
			break
		}
	}

	if report, err := json.MarshalIndent(results, "", "  "); err == nil {
		if err := os.WriteFile(path+resultsExt, report, 0644); err != nil {
			w.opts.Logger.Log("Failed to write results for %s: %v", path, err)
		}
	}
	if err := os.Rename(path, path+suffix); err != nil {
		return results, fmt.Errorf("failed to mark %s as processed: %w", path, err)
	}

	w.opts.Logger.Log("Processed %s: %d operations, %s", filepath.Base(path), len(results), strings.TrimPrefix(suffix, "."))
	return results, nil
}

func (w *Watcher) flush(pending map[string]struct{}) {
	files := make([]string, 0, len(pending))
	for path := range pending {
		files = append(files, path)
	}
	sort.Strings(files)

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			// Already processed or removed
			continue
		}
		results, err := w.ProcessFile(path)
		if err != nil {
			w.opts.Logger.Log("Inbox file %s: %v", path, err)
			continue
		}
		if w.opts.OnProcessed != nil {
			w.opts.OnProcessed(path, results)
		}
	}
}

func (w *Watcher) scheduleFlush(timer **time.Timer) {
	if *timer == nil {
		*timer = time.NewTimer(w.opts.Debounce)
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	(*timer).Reset(w.opts.Debounce)
}

func stopTimer(timer **time.Timer) {
	if *timer == nil {
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	*timer = nil
}

func isInboxEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, inboxExt)
}
