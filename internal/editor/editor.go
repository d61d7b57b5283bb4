package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/epuerta/codex-patch/internal/fileops"
	"github.com/epuerta/codex-patch/internal/logging"
	"github.com/epuerta/codex-patch/internal/patch"
	"github.com/epuerta/codex-patch/internal/sandbox"
	"github.com/google/uuid"
)

// DefaultFuzzWarnThreshold flags updates that needed whitespace-trimmed
// context matching or worse.
const DefaultFuzzWarnThreshold = patch.FuzzTrimmed

// Options configures an Editor
type Options struct {
	Logger   logging.Logger
	Recorder Recorder
	Approver Approver

	// DryRun computes every change but writes nothing.
	DryRun bool
	// FuzzWarnThreshold adds a warning to the result output when an update's
	// accumulated fuzz reaches it. Zero selects DefaultFuzzWarnThreshold;
	// a negative value disables the warning.
	FuzzWarnThreshold int
	// BatchID tags recorded events. Generated when empty.
	BatchID string
}

// Editor applies patch operations to files under a workspace root. Each
// operation is independent; callers must serialize operations that target
// the same file.
type Editor struct {
	root *sandbox.Root
	opts Options
}

// New creates an Editor rooted at dir
func New(dir string, opts Options) (*Editor, error) {
	root, err := sandbox.New(dir)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNilLogger()
	}
	if opts.FuzzWarnThreshold == 0 {
		opts.FuzzWarnThreshold = DefaultFuzzWarnThreshold
	}
	if opts.BatchID == "" {
		opts.BatchID = uuid.NewString()
	}
	return &Editor{root: root, opts: opts}, nil
}

// Root returns the absolute workspace root
func (e *Editor) Root() string {
	return e.root.Path()
}

// BatchID returns the id attached to recorded events
func (e *Editor) BatchID() string {
	return e.opts.BatchID
}

// CreateFile creates (or overwrites) a file from a create-mode diff
func (e *Editor) CreateFile(op CreateFile) Result {
	return e.run(op)
}

// UpdateFile patches an existing file
func (e *Editor) UpdateFile(op UpdateFile) Result {
	return e.run(op)
}

// DeleteFile removes a file; a file that is already gone is not an error
func (e *Editor) DeleteFile(op DeleteFile) Result {
	return e.run(op)
}

// Apply dispatches op to the matching editor method
func (e *Editor) Apply(op Operation) Result {
	switch o := op.(type) {
	case CreateFile:
		return e.CreateFile(o)
	case UpdateFile:
		return e.UpdateFile(o)
	case DeleteFile:
		return e.DeleteFile(o)
	default:
		return failed(fmt.Errorf("unsupported operation %T", op))
	}
}

// ApplyAll applies ops in order. A failing operation does not stop the batch.
func (e *Editor) ApplyAll(ops []Operation) []Result {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		results = append(results, e.Apply(op))
	}
	return results
}

// Plan resolves the target path and computes the new content of op without
// touching the filesystem.
func (e *Editor) Plan(op Operation) (*Change, error) {
	if op == nil {
		return nil, errors.New("nil operation")
	}

	abs, err := e.root.Resolve(op.FilePath())
	if err != nil {
		return nil, err
	}
	change := &Change{Op: op, AbsPath: abs}

	switch o := op.(type) {
	case CreateFile:
		change.Existed = fileops.Exists(abs)
		change.NewContent, err = patch.ApplyDiff("", o.Diff, patch.ModeCreate)
		if err != nil {
			return nil, err
		}
		change.Stats = patch.Summarize(o.Diff)

	case UpdateFile:
		old, err := fileops.ReadFile(abs)
		if err != nil {
			if errors.Is(err, fileops.ErrNotExist) {
				return nil, &MissingFileError{Path: o.Path}
			}
			return nil, err
		}
		newContent, fuzz, err := patch.ApplyDiffWithFuzz(old, o.Diff, patch.ModeDefault)
		if err != nil {
			return nil, err
		}
		change.Existed = true
		change.OldContent = old
		change.NewContent = newContent
		change.Fuzz = fuzz
		change.Stats = patch.Summarize(o.Diff)

	case DeleteFile:
		change.Existed = fileops.Exists(abs)
		if change.Existed {
			old, err := fileops.ReadFile(abs)
			if err != nil {
				e.opts.Logger.Log("cannot read %s for delete preview: %v", o.Path, err)
			} else {
				change.OldContent = old
			}
		}

	default:
		return nil, fmt.Errorf("unsupported operation %T", op)
	}

	return change, nil
}

// Commit writes a planned change to disk
func (e *Editor) Commit(c *Change) error {
	if _, ok := c.Op.(DeleteFile); ok {
		return fileops.RemoveFile(c.AbsPath)
	}
	return fileops.WriteFile(c.AbsPath, c.NewContent)
}

func (e *Editor) run(op Operation) Result {
	res, change := e.execute(op)

	e.opts.Logger.Log("%s %s: %s %s", op.Type(), op.FilePath(), res.Status, res.Output)
	if e.opts.Recorder != nil {
		ev := Event{
			BatchID: e.opts.BatchID,
			Type:    op.Type(),
			Path:    op.FilePath(),
			Status:  res.Status,
			Output:  res.Output,
			DryRun:  e.opts.DryRun,
			At:      time.Now(),
		}
		if change != nil {
			ev.Fuzz = change.Fuzz
		}
		if err := e.opts.Recorder.Record(ev); err != nil {
			e.opts.Logger.Log("failed to record %s %s: %v", op.Type(), op.FilePath(), err)
		}
	}
	return res
}

// execute plans and commits op. No write happens unless the whole change
// was computed successfully.
func (e *Editor) execute(op Operation) (Result, *Change) {
	change, err := e.Plan(op)
	if err != nil {
		return failed(err), nil
	}

	if e.opts.DryRun {
		return completed("%s", e.describe(change, true)), change
	}

	if e.opts.Approver != nil {
		ok, err := e.opts.Approver.Approve(change)
		if err != nil {
			return failed(fmt.Errorf("approval failed for %s: %w", op.FilePath(), err)), change
		}
		if !ok {
			return failed(fmt.Errorf("rejected by user: %s", op.FilePath())), change
		}
	}

	if err := e.Commit(change); err != nil {
		return failed(err), change
	}
	return completed("%s", e.describe(change, false)), change
}

// describe renders the human-readable output of a completed change
func (e *Editor) describe(c *Change, dryRun bool) string {
	var msg string
	switch c.Op.(type) {
	case CreateFile:
		msg = "Created " + c.Op.FilePath()
		if dryRun {
			msg = "Would create " + c.Op.FilePath()
		}
	case UpdateFile:
		msg = fmt.Sprintf("Updated %s (+%d -%d)", c.Op.FilePath(), c.Stats.Added, c.Stats.Removed)
		if dryRun {
			msg = fmt.Sprintf("Would update %s (+%d -%d)", c.Op.FilePath(), c.Stats.Added, c.Stats.Removed)
		}
	case DeleteFile:
		msg = "Deleted " + c.Op.FilePath()
		if dryRun {
			msg = "Would delete " + c.Op.FilePath()
		}
		if !c.Existed {
			msg += " (already absent)"
		}
	}

	if e.opts.FuzzWarnThreshold > 0 && c.Fuzz >= e.opts.FuzzWarnThreshold {
		e.opts.Logger.Log("low-confidence match for %s: fuzz %d", c.Op.FilePath(), c.Fuzz)
		msg += fmt.Sprintf("\nWarning: context matched loosely (fuzz %d); review the result", c.Fuzz)
	}
	return msg
}
