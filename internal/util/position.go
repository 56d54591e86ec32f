package util

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Index maps byte offsets of one file to lines. offsets holds the start of
// every line after the first, followed by the content length.
type Index struct {
	offsets []uint32
	content []byte
}

// NewIndex scans content once. "\n", "\r\n" and a lone "\r" all end a line.
func NewIndex(content []byte) (Index, error) {
	total, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return Index{}, fmt.Errorf("content length overflow: %w", err)
	}
	offsets := make([]uint32, 0, len(content)/32+1)
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			continue
		}
		// i < len(content) fits in uint32 because len(content) does
		offsets = append(offsets, uint32(i+1)) //nolint:gosec
	}
	if len(offsets) == 0 || offsets[len(offsets)-1] != total {
		offsets = append(offsets, total)
	}
	return Index{offsets: offsets, content: content}, nil
}

// Offsets returns a copy of the stored boundaries.
func (ix Index) Offsets() []int {
	out := make([]int, len(ix.offsets))
	for i, o := range ix.offsets {
		out[i] = int(o)
	}
	return out
}

func (ix Index) Content() []byte { return ix.content }

// Lines returns the number of lines in the indexed content.
func (ix Index) Lines() int { return len(ix.offsets) }

// ToLineCol resolves a boundary position: the first stored offset not below
// offset selects the line, and the column counts from one past the previous
// stored offset (from zero on the first line). ok is false past the end.
func (ix Index) ToLineCol(offset int) (line, col int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}
	prev := 0
	for i, o := range ix.offsets {
		if int(o) >= offset {
			return i + 1, offset - prev + 1, true
		}
		prev = int(o) + 1
	}
	return 0, 0, false
}

// LineStart returns the byte offset at which 1-based line begins.
func (ix Index) LineStart(line int) int {
	if line <= 1 || len(ix.offsets) == 0 {
		return 0
	}
	if line-2 >= len(ix.offsets) {
		return int(ix.offsets[len(ix.offsets)-1])
	}
	return int(ix.offsets[line-2])
}

// LineEnd returns the offset one past the last byte of line, terminator included.
func (ix Index) LineEnd(line int) int {
	if len(ix.offsets) == 0 || line < 1 {
		return 0
	}
	if line > len(ix.offsets) {
		line = len(ix.offsets)
	}
	return int(ix.offsets[line-1])
}

// Locate maps the zero-based offset of a character to its 1-based line and
// column.
func (ix Index) Locate(offset int) (line, col int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}
	line, _, ok = ix.ToLineCol(offset + 1)
	if !ok {
		return 0, 0, false
	}
	return line, offset - ix.LineStart(line) + 1, true
}

// lineOf is Locate without the column; the end-of-file offset maps to the
// last line.
func (ix Index) lineOf(offset int) (int, bool) {
	if len(ix.content) > 0 && offset == len(ix.content) {
		return len(ix.offsets), true
	}
	n := len(ix.offsets)
	i := sort.Search(n, func(i int) bool { return int(ix.offsets[i]) > offset })
	if i == n || offset < 0 {
		return 0, false
	}
	return i + 1, true
}
