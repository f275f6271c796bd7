package lexer

import "unicode/utf8"

// The RuneSupplier walks a source string rune by rune while keeping track of the byte offset,
// which is what spans are measured in, and of the line and column, which is what humans
// are told about.
type RuneSupplier struct {
	code      string
	pos       int // byte offset of the current rune
	lineNo    int
	lineStart int
}

func NewRuneSupplier(code string) *RuneSupplier {
	return &RuneSupplier{code: code, lineNo: 1}
}

func (rs *RuneSupplier) CurrentRune() rune {
	if rs.pos < len(rs.code) {
		r, _ := utf8.DecodeRuneInString(rs.code[rs.pos:])
		return r
	}
	return 0
}

func (rs *RuneSupplier) PeekRune() rune {
	if rs.pos >= len(rs.code) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(rs.code[rs.pos:])
	if rs.pos+size < len(rs.code) {
		r, _ := utf8.DecodeRuneInString(rs.code[rs.pos+size:])
		return r
	}
	return 0
}

func (rs *RuneSupplier) Next() {
	if rs.pos >= len(rs.code) {
		return
	}
	r, size := utf8.DecodeRuneInString(rs.code[rs.pos:])
	if r == '\n' {
		rs.lineNo++
		rs.lineStart = rs.pos + 1
	}
	rs.pos += size
}

// Returns the line number, the column, and the byte offset of the current rune.
func (rs *RuneSupplier) Position() (int, int, int) {
	return rs.lineNo, rs.pos - rs.lineStart, rs.pos
}

func (rs *RuneSupplier) Offset() int {
	return rs.pos
}

func (rs *RuneSupplier) Slice(start, end int) string {
	return rs.code[start:end]
}

// Consumes runes up to but not including the next newline.
func (rs *RuneSupplier) ReadComment() string {
	start := rs.pos
	for rs.PeekRune() != '\n' && rs.PeekRune() != 0 {
		rs.Next()
	}
	end := rs.pos
	if end < len(rs.code) {
		_, size := utf8.DecodeRuneInString(rs.code[rs.pos:])
		end += size
	}
	return rs.code[start:end]
}
