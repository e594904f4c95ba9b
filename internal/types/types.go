// =============================================================================
// txtmerge - Shared Types
// =============================================================================
//
// This package contains the types shared by the pipeline stages to avoid
// import cycles. Types defined here are used by:
//   - classifier
//   - duplicates
//   - merger
//   - report
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMarker is the quoted record-type token that identifies data records.
const DefaultMarker = `"15"`

// =============================================================================
// LINES
// =============================================================================

// Line is a single text record, including its "\n" terminator when present.
type Line = string

// HasMarker reports whether line begins with the exact marker token.
func HasMarker(line Line, marker string) bool {
	return marker != "" && strings.HasPrefix(line, marker)
}

// =============================================================================
// MONTHS
// =============================================================================

// MonthKey identifies a calendar month bucket.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the bucket key for t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// String renders the key as MM-YYYY.
func (k MonthKey) String() string {
	return fmt.Sprintf("%02d-%04d", int(k.Month), k.Year)
}

// Before orders keys chronologically: by year, then by month.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Compare returns -1, 0 or +1, suitable for slices.SortFunc.
func (k MonthKey) Compare(other MonthKey) int {
	switch {
	case k.Before(other):
		return -1
	case other.Before(k):
		return 1
	default:
		return 0
	}
}

// =============================================================================
// DATE RANGE
// =============================================================================

// DateRange is an inclusive calendar date range. Times of day are ignored.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncated to midnight UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOnly(start), End: DateOnly(end)}
}

// Contains reports whether start <= d <= end, comparing dates only.
// A nil range contains every date.
func (r *DateRange) Contains(d time.Time) bool {
	if r == nil {
		return true
	}
	day := DateOnly(d)
	return !day.Before(DateOnly(r.Start)) && !day.After(DateOnly(r.End))
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD".
func (r *DateRange) String() string {
	if r == nil {
		return "all dates"
	}
	return r.Start.Format("2006-01-02") + ".." + r.End.Format("2006-01-02")
}

// DateOnly normalises t to midnight UTC on the same calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DUPLICATES
// =============================================================================

// DuplicateGroup is a set of marker lines sharing the same duplicate key.
type DuplicateGroup struct {
	// Key is the line content with its final comma-delimited field removed.
	Key string

	// Content is the first member line, without its line terminator.
	Content string

	// Positions are the 1-based line numbers sharing Key, strictly increasing.
	Positions []int
}

// =============================================================================
// CONCATENATION MODE
// =============================================================================

// Mode selects how source files are concatenated onto the target.
type Mode string

const (
	// ModeAppend appends every source line verbatim and enables duplicate
	// detection.
	ModeAppend Mode = "append"

	// ModeJoin trims each file and joins them with exactly one newline.
	// Duplicate detection is not performed.
	ModeJoin Mode = "join"
)

// ParseMode converts a user-supplied name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "append", "list", "list-append":
		return ModeAppend, nil
	case "join", "string", "string-join":
		return ModeJoin, nil
	default:
		return "", fmt.Errorf("unknown concatenation mode %q (want append or join)", s)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// IOError reports a file system failure (missing file, permission, full disk).
// Decoding problems are never reported as IOError; they are recovered by the
// decoder's fallback encoding.
type IOError struct {
	// Op is the failed operation: "read" or "write".
	Op string

	// Path is the file involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *IOError) Unwrap() error {
	return e.Err
}
