package token

import "fmt"

type FileID int

// A Span is a byte range within one source file. Spans are attached to every token, every AST
// node and every fact the type checker infers, and are used only for reporting.
type Span struct {
	File  FileID
	Start int
	End   int
}

func NewSpan(file FileID, start, end int) Span {
	return Span{File: file, Start: start, End: end}
}

// Returns a span running from the start of s to the end of other. The two must come from the
// same file.
func (s Span) WithEndOf(other Span) (Span, bool) {
	if s.File != other.File {
		return Span{}, false
	}
	return Span{File: s.File, Start: s.Start, End: other.End}, true
}

// As WithEndOf, but falls back on s when the files differ, which can only happen if a caller
// has stitched together nodes from two different sources.
func (s Span) Join(other Span) Span {
	if joined, ok := s.WithEndOf(other); ok {
		return joined
	}
	return s
}

func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset <= s.End
}

func (s Span) Text(source string) string {
	if s.Start < 0 || s.End > len(source) || s.Start > s.End {
		return ""
	}
	return source[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d..%d", s.File, s.Start, s.End)
}

// Converts a byte offset into one-based line and column numbers.
func Position(source string, offset int) (int, int) {
	line, col := 1, 1
	for i, r := range source {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
