package patch

import (
	"testing"
)

func TestApplyChunks(t *testing.T) {
	text := "Line 1\nLine 2\nLine 3\nLine 4"

	chunks := []Chunk{
		{
			OrigIndex: 2, // 0-indexed, Line 3
			DelLines:  []string{"Line 3"},
			InsLines:  []string{"Line 3 modified"},
		},
	}

	result, err := ApplyChunks(text, chunks)
	if err != nil {
		t.Fatalf("Failed to apply chunks: %v", err)
	}

	expected := "Line 1\nLine 2\nLine 3 modified\nLine 4"
	if result != expected {
		t.Errorf("Expected:\n%s\n\nGot:\n%s", expected, result)
	}
}

func TestApplyChunksZeroChunksIsIdentity(t *testing.T) {
	for _, text := range []string{"", "a", "a\nb", "a\nb\n", "\n\n"} {
		got, err := ApplyChunks(text, nil)
		if err != nil {
			t.Fatalf("ApplyChunks(%q) failed: %v", text, err)
		}
		if got != text {
			t.Errorf("Expected %q unchanged, got %q", text, got)
		}
	}
}

func TestApplyChunksRejectsOverlap(t *testing.T) {
	text := "0\n1\n2\n3\n4\n5"
	chunks := []Chunk{
		{OrigIndex: 2, DelLines: []string{"2", "3", "4"}},
		{OrigIndex: 3, InsLines: []string{"x"}},
	}

	_, err := ApplyChunks(text, chunks)
	if !IsKind(err, OverlappingChunk) {
		t.Fatalf("Expected OverlappingChunk, got %v", err)
	}
}

func TestApplyChunksRejectsOutOfRange(t *testing.T) {
	_, err := ApplyChunks("a\nb\nc", []Chunk{{OrigIndex: 10, InsLines: []string{"x"}}})
	if !IsKind(err, ChunkOutOfRange) {
		t.Fatalf("Expected ChunkOutOfRange, got %v", err)
	}

	_, err = ApplyChunks("a\nb", []Chunk{{OrigIndex: -1, DelLines: []string{"a"}}})
	if !IsKind(err, ChunkOutOfRange) {
		t.Fatalf("Expected ChunkOutOfRange for negative index, got %v", err)
	}

	// Appending exactly at the end is allowed.
	got, err := ApplyChunks("a\nb", []Chunk{{OrigIndex: 2, InsLines: []string{"c"}}})
	if err != nil {
		t.Fatalf("ApplyChunks failed: %v", err)
	}
	if got != "a\nb\nc" {
		t.Errorf("Expected %q, got %q", "a\nb\nc", got)
	}
}

func TestApplyDiff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		diff  string
		want  string
		fuzz  int
	}{
		{
			name:  "pure insertion",
			input: "a\nb\nc",
			diff:  " a\n+x",
			want:  "a\nx\nb\nc",
		},
		{
			name:  "pure deletion",
			input: "a\nb\nc",
			diff:  " a\n-b\n c",
			want:  "a\nc",
		},
		{
			name:  "keeps trailing newline",
			input: "a\nb\n",
			diff:  " a\n-b\n+B\n",
			want:  "a\nB\n",
		},
		{
			name:  "multiple hunks",
			input: "one\ntwo\nthree\nfour\nfive",
			diff:  "@@\n one\n-two\n+TWO\n@@ four\n-five\n+FIVE",
			want:  "one\nTWO\nthree\nfour\nFIVE",
		},
		{
			name:  "trailing whitespace in patch context",
			input: "foo\nbar",
			diff:  " foo \n-bar\n+baz",
			want:  "foo\nbaz",
			fuzz:  FuzzTrailingWS,
		},
		{
			name:  "misplaced end of file",
			input: "x\ny\nz\nw",
			diff:  " y\n+Y\n" + EndOfFileMarker,
			want:  "x\ny\nY\nz\nw",
			fuzz:  FuzzEOFMisplaced,
		},
		{
			name:  "append at end of file",
			input: "x\ny",
			diff:  " y\n+z\n" + EndOfFileMarker,
			want:  "x\ny\nz",
		},
		{
			name:  "empty diff",
			input: "keep\nme\n",
			diff:  "",
			want:  "keep\nme\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fuzz, err := ApplyDiffWithFuzz(tt.input, tt.diff, ModeDefault)
			if err != nil {
				t.Fatalf("ApplyDiff failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if fuzz != tt.fuzz {
				t.Errorf("Expected fuzz %d, got %d", tt.fuzz, fuzz)
			}
		})
	}
}

func TestApplyDiffCreateMode(t *testing.T) {
	got, err := ApplyDiff("ignored", "+package main\n+\n+func main() {}\n", ModeCreate)
	if err != nil {
		t.Fatalf("ApplyDiff failed: %v", err)
	}
	if got != "package main\n\nfunc main() {}" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestApplyDiffCRLFPatch(t *testing.T) {
	got, err := ApplyDiff("a\nb", " a\r\n-b\r\n+c\r\n", ModeDefault)
	if err != nil {
		t.Fatalf("ApplyDiff failed: %v", err)
	}
	if got != "a\nc" {
		t.Errorf("Expected %q, got %q", "a\nc", got)
	}
}

func TestApplyDiffByteOrderMark(t *testing.T) {
	got, fuzz, err := ApplyDiffWithFuzz("\ufefffoo\nbar", " foo\n+x\n", ModeDefault)
	if err != nil {
		t.Fatalf("ApplyDiffWithFuzz failed: %v", err)
	}
	if got != "\ufefffoo\nx\nbar" {
		t.Errorf("Unexpected result: %q", got)
	}
	if fuzz != FuzzTrimmed {
		t.Errorf("Expected fuzz %d, got %d", FuzzTrimmed, fuzz)
	}
}
