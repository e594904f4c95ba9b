// =============================================================================
// txtmerge - Merged Document
// =============================================================================
//
// This file holds the value produced by concatenating the target with the
// selected sources.
//
// CONCATENATION MODES:
//   - append : Target lines followed by every source's lines, verbatim and in
//              selection order. Duplicate detection runs over these lines.
//   - join   : Target with trailing whitespace removed, then every source
//              trimmed at both ends, separated by exactly one newline.
//
// A Document is built once and never modified. Rendering it (String, Bytes)
// gives exactly the bytes written to the target.
//
// =============================================================================

package merger

import (
	"strings"
	"unicode"

	"github.com/ginjaninja78/txtmerge/internal/decoder"
	"github.com/ginjaninja78/txtmerge/internal/types"
)

// Document is the merged content produced by one concatenation. It is never
// modified after construction.
type Document struct {
	mode  types.Mode
	lines []types.Line
	text  string
}

// NewLineDocument wraps a list-append result.
func NewLineDocument(lines []types.Line) Document {
	return Document{mode: types.ModeAppend, lines: lines}
}

// NewTextDocument wraps a string-join result.
func NewTextDocument(text string) Document {
	return Document{mode: types.ModeJoin, text: text}
}

// Mode returns the concatenation mode that produced the document.
func (d Document) Mode() types.Mode {
	return d.mode
}

// Lines returns the document as lines. For list-append documents these are
// the concatenated lines as given; for string-join documents the text is
// split after every newline.
func (d Document) Lines() []types.Line {
	if d.mode == types.ModeJoin {
		return decoder.SplitLines(d.text)
	}
	out := make([]types.Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// LineCount returns the number of lines in the rendered document.
func (d Document) LineCount() int {
	if d.mode == types.ModeJoin {
		return len(decoder.SplitLines(d.text))
	}
	return len(d.lines)
}

// String renders the document as it will be written.
//
// In list-append documents a line other than the last that lacks a "\n"
// (the unterminated last line of a file) is given one, so each element stays
// on its own line and reported positions match the written file.
func (d Document) String() string {
	if d.mode == types.ModeJoin {
		return d.text
	}
	var b strings.Builder
	for i, line := range d.lines {
		b.WriteString(line)
		if i < len(d.lines)-1 && !strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Bytes renders the document as UTF-8.
func (d Document) Bytes() []byte {
	return []byte(d.String())
}

// =============================================================================
// CONCATENATION
// =============================================================================

// AppendLines returns a new slice holding target's lines followed by each
// source's lines in order. No line is trimmed, dropped or reordered.
func AppendLines(target []types.Line, sources ...[]types.Line) []types.Line {
	n := len(target)
	for _, s := range sources {
		n += len(s)
	}
	out := make([]types.Line, 0, n)
	out = append(out, target...)
	for _, s := range sources {
		out = append(out, s...)
	}
	return out
}

// JoinText trims trailing whitespace from target, then for every source trims
// both ends and appends it, separated from the running result by exactly one
// newline. An empty running result gets no separator. No trailing newline is
// added.
func JoinText(target string, sources ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRightFunc(target, unicode.IsSpace))
	for _, s := range sources {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimSpace(s))
	}
	return b.String()
}
