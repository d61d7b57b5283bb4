package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epuerta/codex-patch/internal/patch"
)

func newTestEditor(t *testing.T, opts Options) (*Editor, string) {
	t.Helper()
	dir := t.TempDir()
	ed, err := New(dir, opts)
	if err != nil {
		t.Fatalf("Failed to create editor: %v", err)
	}
	return ed, dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

type recorderFunc func(ev Event) error

func (f recorderFunc) Record(ev Event) error { return f(ev) }

type staticApprover bool

func (a staticApprover) Approve(*Change) (bool, error) { return bool(a), nil }

func TestCreateFile(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})

	res := ed.CreateFile(CreateFile{Path: "pkg/hello.go", Diff: "+package pkg\n+\n+const Hello = 1\n"})
	if !res.OK() {
		t.Fatalf("Expected completed, got %+v", res)
	}
	if res.Output != "Created pkg/hello.go" {
		t.Errorf("Unexpected output: %q", res.Output)
	}

	got := readTestFile(t, filepath.Join(dir, "pkg", "hello.go"))
	if got != "package pkg\n\nconst Hello = 1" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestCreateFileRejectsInvalidLine(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})

	res := ed.CreateFile(CreateFile{Path: "bad.txt", Diff: "+ok\nnot added"})
	if res.Status != StatusFailed {
		t.Fatalf("Expected failed, got %+v", res)
	}
	if !strings.Contains(res.Output, "Invalid Add File Line") {
		t.Errorf("Unexpected output: %q", res.Output)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.txt")); !os.IsNotExist(err) {
		t.Errorf("File should not have been written")
	}
}

func TestUpdateFile(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	path := filepath.Join(dir, "existing.txt")
	writeTestFile(t, path, "Line 1\nLine 2\nLine 3\nLine 4\n")

	res := ed.UpdateFile(UpdateFile{
		Path: "existing.txt",
		Diff: "@@\n Line 2\n-Line 3\n+Line 3 (modified)\n Line 4\n",
	})
	if !res.OK() {
		t.Fatalf("Expected completed, got %+v", res)
	}
	if res.Output != "Updated existing.txt (+1 -1)" {
		t.Errorf("Unexpected output: %q", res.Output)
	}

	want := "Line 1\nLine 2\nLine 3 (modified)\nLine 4\n"
	if got := readTestFile(t, path); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestUpdateMissingFile(t *testing.T) {
	ed, _ := newTestEditor(t, Options{})

	res := ed.UpdateFile(UpdateFile{Path: "missing.txt", Diff: " a\n+b"})
	if res.Status != StatusFailed {
		t.Fatalf("Expected failed, got %+v", res)
	}
	if res.Output != "Cannot update missing file: missing.txt" {
		t.Errorf("Unexpected output: %q", res.Output)
	}
}

func TestUpdateFileBadContextLeavesFileUntouched(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	path := filepath.Join(dir, "f.txt")
	writeTestFile(t, path, "a\nb\nc")

	// First hunk is valid, second cannot be located.
	res := ed.UpdateFile(UpdateFile{Path: "f.txt", Diff: " a\n-b\n+B\n@@ c\n-zzz\n+y"})
	if res.Status != StatusFailed {
		t.Fatalf("Expected failed, got %+v", res)
	}
	if got := readTestFile(t, path); got != "a\nb\nc" {
		t.Errorf("File changed despite failure: %q", got)
	}
}

func TestUpdateFileFuzzWarning(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	path := filepath.Join(dir, "indent.py")
	writeTestFile(t, path, "def f():\n    return 1\n")

	res := ed.UpdateFile(UpdateFile{Path: "indent.py", Diff: " def f():\n-return 1\n+    return 2\n"})
	if !res.OK() {
		t.Fatalf("Expected completed, got %+v", res)
	}
	if !strings.Contains(res.Output, "fuzz 100") {
		t.Errorf("Expected fuzz warning, got %q", res.Output)
	}
	if got := readTestFile(t, path); got != "def f():\n    return 2\n" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestDeleteFileIsIdempotent(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	path := filepath.Join(dir, "old.txt")
	writeTestFile(t, path, "bye")

	if res := ed.DeleteFile(DeleteFile{Path: "old.txt"}); !res.OK() {
		t.Fatalf("Expected completed, got %+v", res)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file to be deleted")
	}

	res := ed.DeleteFile(DeleteFile{Path: "old.txt"})
	if !res.OK() {
		t.Fatalf("Expected completed for absent file, got %+v", res)
	}
	if res.Output != "Deleted old.txt (already absent)" {
		t.Errorf("Unexpected output: %q", res.Output)
	}
}

func TestOperationOutsideWorkspace(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	outside := filepath.Join(filepath.Dir(dir), "outside.txt")

	for _, op := range []Operation{
		CreateFile{Path: "../outside.txt", Diff: "+x"},
		UpdateFile{Path: "../outside.txt", Diff: " x"},
		DeleteFile{Path: "../outside.txt"},
	} {
		res := ed.Apply(op)
		if res.Status != StatusFailed {
			t.Errorf("%s: expected failed, got %+v", op.Type(), res)
		}
		if !strings.Contains(res.Output, "operation outside workspace") {
			t.Errorf("%s: unexpected output %q", op.Type(), res.Output)
		}
	}

	if _, err := os.Stat(outside); !os.IsNotExist(err) {
		t.Errorf("File outside the workspace was touched")
	}
}

func TestApplyAllIsolatesFailures(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	writeTestFile(t, filepath.Join(dir, "keep.txt"), "x")

	results := ed.ApplyAll([]Operation{
		CreateFile{Path: "first.txt", Diff: "+one"},
		UpdateFile{Path: "keep.txt", Diff: " not there\n+y"},
		DeleteFile{Path: "keep.txt"},
	})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !results[0].OK() || results[1].OK() || !results[2].OK() {
		t.Fatalf("Unexpected statuses: %+v", results)
	}
	if got := readTestFile(t, filepath.Join(dir, "first.txt")); got != "one" {
		t.Errorf("Unexpected content of first.txt: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); !os.IsNotExist(err) {
		t.Errorf("Expected keep.txt to be deleted by the third operation")
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	ed, dir := newTestEditor(t, Options{DryRun: true})
	path := filepath.Join(dir, "a.txt")
	writeTestFile(t, path, "a\nb")

	res := ed.UpdateFile(UpdateFile{Path: "a.txt", Diff: " a\n-b\n+c"})
	if !res.OK() || !strings.HasPrefix(res.Output, "Would update a.txt") {
		t.Fatalf("Unexpected result: %+v", res)
	}
	if got := readTestFile(t, path); got != "a\nb" {
		t.Errorf("Dry run modified the file: %q", got)
	}

	if res := ed.CreateFile(CreateFile{Path: "new.txt", Diff: "+n"}); !res.OK() {
		t.Fatalf("Unexpected result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "new.txt")); !os.IsNotExist(err) {
		t.Errorf("Dry run created a file")
	}
}

func TestApproverRejects(t *testing.T) {
	ed, dir := newTestEditor(t, Options{Approver: staticApprover(false)})

	res := ed.CreateFile(CreateFile{Path: "x.txt", Diff: "+x"})
	if res.Status != StatusFailed || res.Output != "rejected by user: x.txt" {
		t.Fatalf("Unexpected result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.txt")); !os.IsNotExist(err) {
		t.Errorf("Rejected change was written")
	}
}

func TestRecorderReceivesEvents(t *testing.T) {
	var events []Event
	rec := recorderFunc(func(ev Event) error {
		events = append(events, ev)
		return errors.New("journal unavailable")
	})
	ed, _ := newTestEditor(t, Options{Recorder: rec, BatchID: "batch-1"})

	res := ed.CreateFile(CreateFile{Path: "r.txt", Diff: "+r"})
	if !res.OK() {
		t.Fatalf("Recorder error must not fail the operation: %+v", res)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.BatchID != "batch-1" || ev.Type != OpCreateFile || ev.Path != "r.txt" || ev.Status != StatusCompleted {
		t.Errorf("Unexpected event: %+v", ev)
	}
}

func TestPlanReportsDiffErrorKind(t *testing.T) {
	ed, dir := newTestEditor(t, Options{})
	writeTestFile(t, filepath.Join(dir, "f.txt"), "a")

	_, err := ed.Plan(UpdateFile{Path: "f.txt", Diff: "?bad"})
	if !patch.IsKind(err, patch.InvalidLine) {
		t.Fatalf("Expected InvalidLine, got %v", err)
	}

	_, err = ed.Plan(UpdateFile{Path: "nope.txt", Diff: " a"})
	var missing *MissingFileError
	if !errors.As(err, &missing) || missing.Path != "nope.txt" {
		t.Fatalf("Expected MissingFileError, got %v", err)
	}
}

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Log(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
func (l *captureLogger) IsEnabled() bool { return true }
func (l *captureLogger) Close() error    { return nil }

func TestPlanDeleteLogsUnreadableFile(t *testing.T) {
	logger := &captureLogger{}
	ed, dir := newTestEditor(t, Options{Logger: logger})
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	change, err := ed.Plan(DeleteFile{Path: "sub"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if change.OldContent != "" {
		t.Errorf("Expected no preview content, got %q", change.OldContent)
	}

	found := false
	for _, line := range logger.lines {
		if strings.Contains(line, "cannot read sub for delete preview") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected read failure to be logged, got %q", logger.lines)
	}
}
