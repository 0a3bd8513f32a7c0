// Package source owns raw script bytes and translates byte offsets into
// line/column positions on demand, the way aretext's text/segment package
// tracks line boundaries over a text buffer — except here the buffer is a
// flat, immutable byte slice rather than a rope, since analysis runs once
// over a whole file instead of incrementally reparsing after live edits.
package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// File is an in-memory source file plus a lazily built line-offset index.
// Once constructed, a File's bytes never change; spans derived from it
// remain valid for the file's whole lifetime.
type File struct {
	Path string
	Data []byte

	lineOffsets []uint32 // byte offset of the start of each line; lineOffsets[0] == 0
}

// New validates src as UTF-8 and builds the line index.
func New(path string, src []byte) (*File, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%s: invalid UTF-8", path)
	}
	f := &File{Path: path, Data: src}
	f.buildLineOffsets()
	return f, nil
}

func (f *File) buildLineOffsets() {
	f.lineOffsets = make([]uint32, 1, 64)
	f.lineOffsets[0] = 0
	for i, b := range f.Data {
		if b == '\n' {
			f.lineOffsets = append(f.lineOffsets, uint32(i+1))
		}
	}
}

// Len returns the number of bytes in the file.
func (f *File) Len() int { return len(f.Data) }

// Position is a 1-indexed line/column pair derived from a byte offset.
type Position struct {
	Line   int
	Column int
}

// PositionFor converts a byte offset into a 1-indexed (line, column) pair.
// Offsets past the end of the file clamp to the last valid position.
func (f *File) PositionFor(offset uint32) Position {
	if int(offset) > len(f.Data) {
		offset = uint32(len(f.Data))
	}
	// lineOffsets is sorted by construction; find the last line starting
	// at or before offset.
	idx := sort.Search(len(f.lineOffsets), func(i int) bool {
		return f.lineOffsets[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	lineStart := f.lineOffsets[idx]
	col := utf8.RuneCount(f.Data[lineStart:offset]) + 1
	return Position{Line: idx + 1, Column: col}
}

// Span is a half-open byte range [Start, End) within a File.
// Invariant: 0 <= Start <= End <= len(File.Data).
type Span struct {
	Start uint32
	End   uint32
}

// NewSpan builds a span, panicking if the range is inverted (a programmer
// error in a rule or the lexer/parser, never a property of user input).
func NewSpan(start, end uint32) Span {
	if end < start {
		panic("source: span end before start")
	}
	return Span{Start: start, End: end}
}

// Text returns the bytes covered by the span.
func (f *File) Text(s Span) []byte {
	return f.Data[s.Start:s.End]
}

// Context renders the lines touching the span plus n lines of context
// above and below, formatted for human diagnostic output. It is produced
// lazily and is never part of the JSON/SARIF wire format (spec §4.E).
func (f *File) Context(s Span, n int) string {
	startPos := f.PositionFor(s.Start)
	endPos := f.PositionFor(s.End)

	firstLine := startPos.Line - n
	if firstLine < 1 {
		firstLine = 1
	}
	lastLine := endPos.Line + n
	if lastLine > len(f.lineOffsets) {
		lastLine = len(f.lineOffsets)
	}

	out := make([]byte, 0, 256)
	for line := firstLine; line <= lastLine; line++ {
		out = append(out, f.lineBytes(line)...)
		out = append(out, '\n')
	}
	return string(out)
}

// lineBytes returns the bytes of a 1-indexed line, excluding the trailing
// newline.
func (f *File) lineBytes(line int) []byte {
	if line < 1 || line > len(f.lineOffsets) {
		return nil
	}
	start := f.lineOffsets[line-1]
	var end uint32
	if line < len(f.lineOffsets) {
		end = f.lineOffsets[line] - 1 // exclude the newline itself
	} else {
		end = uint32(len(f.Data))
	}
	if end < start {
		end = start
	}
	return f.Data[start:end]
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int { return len(f.lineOffsets) }
