package util

import "strings"

// SnippetSpan returns the whole lines touched by [start, start+length).
func (ix Index) SnippetSpan(start, length int) string {
	first, ok := ix.lineOf(start)
	if !ok {
		return ""
	}
	last := first
	if length > 0 {
		if l, ok := ix.lineOf(start + length - 1); ok {
			last = l
		}
	}
	return ix.lines(first, last)
}

// SnippetBefore returns up to n whole lines preceding the line holding start.
func (ix Index) SnippetBefore(start, n int) string {
	line, ok := ix.lineOf(start)
	if !ok || n <= 0 || line == 1 {
		return ""
	}
	first := max(1, line-n)
	return ix.lines(first, line-1)
}

// SnippetAfter returns up to n whole lines following the last line of the span.
func (ix Index) SnippetAfter(start, length, n int) string {
	end := start
	if length > 0 {
		end = start + length - 1
	}
	line, ok := ix.lineOf(end)
	if !ok || n <= 0 || line >= ix.Lines() {
		return ""
	}
	return ix.lines(line+1, min(ix.Lines(), line+n))
}

// Snippet composes the span lines with context lines on both sides.
func (ix Index) Snippet(start, length, context int) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{
		ix.SnippetBefore(start, context),
		ix.SnippetSpan(start, length),
		ix.SnippetAfter(start, length, context),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

func (ix Index) lines(first, last int) string {
	if first < 1 || last < first {
		return ""
	}
	s := string(ix.content[ix.LineStart(first):ix.LineEnd(last)])
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
