// =============================================================================
// txtmerge - Duplicate Detector
// =============================================================================
//
// This module finds marker lines that are identical once their final
// comma-delimited field is dropped. The trailing field carries a
// non-identifying value (running balance, timestamp suffix) and is excluded
// from the comparison.
//
// KEY CONSTRUCTION:
//   `"15","A","1"`  ->  `"15","A"`
//   `"15"`          ->  ``          (one field: empty key, still a valid key)
//
// Keys are compared as exact strings. Quoting and whitespace are significant.
//
// Groups are reported in order of the key's first appearance and only when
// two or more lines share the key. Positions are 1-based in the sequence as
// given; callers pass the full merged sequence so positions match the file
// that gets written.
//
// =============================================================================

package duplicates

import (
	"strings"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

// Detector groups marker lines by duplicate key.
type Detector struct {
	marker string
}

// New returns a Detector for the given record marker. Empty selects `"15"`.
func New(marker string) *Detector {
	if marker == "" {
		marker = types.DefaultMarker
	}
	return &Detector{marker: marker}
}

// Key drops the last comma-delimited field of line and rejoins the rest.
func Key(line types.Line) string {
	i := strings.LastIndexByte(line, ',')
	if i < 0 {
		return ""
	}
	return line[:i]
}

// Find returns the duplicate groups in lines.
func (d *Detector) Find(lines []types.Line) []types.DuplicateGroup {
	index := make(map[string]int)
	var groups []types.DuplicateGroup

	for i, line := range lines {
		if !types.HasMarker(line, d.marker) {
			continue
		}
		key := Key(line)
		if gi, ok := index[key]; ok {
			groups[gi].Positions = append(groups[gi].Positions, i+1)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, types.DuplicateGroup{
			Key:       key,
			Content:   strings.TrimRight(line, "\r\n"),
			Positions: []int{i + 1},
		})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Positions) >= 2 {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FindDuplicates runs a Detector with the default `"15"` marker.
func FindDuplicates(lines []types.Line) []types.DuplicateGroup {
	return New("").Find(lines)
}

// Count returns the number of surplus lines across groups, i.e. the lines
// that would have to be removed to leave one of each.
func Count(groups []types.DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Positions) - 1
	}
	return n
}
