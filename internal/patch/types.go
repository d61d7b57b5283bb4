package patch

import (
	"errors"
	"fmt"
)

// Mode selects how ApplyDiff interprets a diff body
type Mode string

const (
	// ModeDefault patches existing content using @@ sections
	ModeDefault Mode = "default"
	// ModeCreate treats every line as "+<text>" content of a new file
	ModeCreate Mode = "create"
)

// Markers recognised by the V4A grammar
const (
	EndPatchMarker   = "*** End Patch"
	UpdateFilePrefix = "*** Update File:"
	DeleteFilePrefix = "*** Delete File:"
	AddFilePrefix    = "*** Add File:"
	EndOfFileMarker  = "*** End of File"
)

// sectionTerminators end a create-mode body.
var sectionTerminators = []string{
	EndPatchMarker,
	UpdateFilePrefix,
	DeleteFilePrefix,
	AddFilePrefix,
}

// endSectionMarkers end an update-mode body.
var endSectionMarkers = []string{
	EndPatchMarker,
	UpdateFilePrefix,
	DeleteFilePrefix,
	AddFilePrefix,
	EndOfFileMarker,
}

// Chunk represents a change in a specific part of a file
type Chunk struct {
	OrigIndex int      // Line index in the original file
	DelLines  []string // Lines to be deleted
	InsLines  []string // Lines to be inserted
}

// ParsedUpdate is the outcome of interpreting an update-mode diff
type ParsedUpdate struct {
	Chunks []Chunk
	// Fuzz is the accumulated match cost. Zero means every hunk matched exactly.
	Fuzz int
}

// ErrorKind classifies a DiffError
type ErrorKind string

const (
	InvalidLine        ErrorKind = "InvalidLine"
	InvalidAddFileLine ErrorKind = "InvalidAddFileLine"
	EmptyHunk          ErrorKind = "EmptyHunk"
	InvalidContext     ErrorKind = "InvalidContext"
	InvalidEofContext  ErrorKind = "InvalidEofContext"
	ChunkOutOfRange    ErrorKind = "ChunkOutOfRange"
	OverlappingChunk   ErrorKind = "OverlappingChunk"
)

// DiffError represents an error that occurred during patch processing
type DiffError struct {
	Kind    ErrorKind
	Message string
}

func (e *DiffError) Error() string {
	return e.Message
}

func newDiffError(kind ErrorKind, format string, args ...interface{}) *DiffError {
	return &DiffError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a DiffError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DiffError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
