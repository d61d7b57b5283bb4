package editor

import (
	"fmt"
	"time"

	"github.com/epuerta/codex-patch/internal/patch"
)

// Status is the outcome of one operation
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result is returned for every operation and never retained by the editor
type Result struct {
	Status Status `json:"status"`
	Output string `json:"output,omitempty"`
}

// OK reports whether the operation completed
func (r Result) OK() bool {
	return r.Status == StatusCompleted
}

func completed(format string, args ...interface{}) Result {
	return Result{Status: StatusCompleted, Output: fmt.Sprintf(format, args...)}
}

func failed(err error) Result {
	return Result{Status: StatusFailed, Output: err.Error()}
}

// MissingFileError is returned when an update targets a file that does not exist
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return "Cannot update missing file: " + e.Path
}

// Change is a fully computed operation that has not been written yet
type Change struct {
	Op         Operation
	AbsPath    string
	OldContent string
	NewContent string
	Existed    bool
	Fuzz       int
	Stats      patch.Stats
}

// Event describes one finished operation for a Recorder
type Event struct {
	BatchID string
	Type    OperationType
	Path    string
	Status  Status
	Output  string
	Fuzz    int
	DryRun  bool
	At      time.Time
}

// Recorder receives an Event after every operation
type Recorder interface {
	Record(ev Event) error
}

// Approver is asked before a planned change is written
type Approver interface {
	Approve(c *Change) (bool, error)
}
