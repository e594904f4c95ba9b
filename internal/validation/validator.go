// =============================================================================
// txtmerge - Validation Module
// =============================================================================
//
// This module validates the user's merge selection before any file is read.
// It checks what can be known without touching the file system:
//   - Date range bounds parse and are in order
//   - The concatenation mode is known
//   - The source list has no repeats and does not contain the target
//
// Missing or unreadable files are NOT checked here; the merger reports those
// as I/O failures.
//
// SEVERITY LEVELS:
//   - "error"   : The merge must not start
//   - "warning" : The merge can proceed; the user should be told
//
// =============================================================================

package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// dateLayouts are the accepted date range bound formats.
var dateLayouts = []string{"2006-01-02", "20060102", "02.01.2006"}

// =============================================================================
// VALIDATION ERROR STRUCTURE
// =============================================================================

// ValidationError describes one problem with the user's selection.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the input that failed validation, e.g. "from" or "sources".
	Field string

	// Value is the offending value.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')", e.Severity, e.Field, e.Message, e.Value)
}

// =============================================================================
// INPUT STRUCTURE
// =============================================================================

// MergeInput is the raw selection as typed by the user.
type MergeInput struct {
	Target  string
	Sources []string
	From    string
	To      string
	Mode    string
}

// Validated is the parsed selection.
type Validated struct {
	Mode      types.Mode
	DateRange *types.DateRange
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate checks a merge selection.
//
// RETURNS:
//   - The parsed mode and date range. Only meaningful when HasErrors is false.
//   - Every problem found, errors and warnings.
func Validate(in MergeInput) (Validated, []*ValidationError) {
	var out Validated
	var problems []*ValidationError

	mode := types.ModeAppend
	var err error
	if strings.TrimSpace(in.Mode) != "" {
		mode, err = types.ParseMode(in.Mode)
	}
	if err != nil {
		problems = append(problems, &ValidationError{
			Severity: SeverityError,
			Field:    "mode",
			Value:    in.Mode,
			Message:  "must be append or join",
		})
	}
	out.Mode = mode

	rng, rangeProblems := ParseDateRange(in.From, in.To)
	problems = append(problems, rangeProblems...)
	out.DateRange = rng

	problems = append(problems, checkSources(in.Target, in.Sources)...)

	return out, problems
}

// ParseDateRange parses optional inclusive bounds. Both empty means no range.
func ParseDateRange(from, to string) (*types.DateRange, []*ValidationError) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}

	var problems []*ValidationError
	if from == "" || to == "" {
		problems = append(problems, &ValidationError{
			Severity: SeverityError,
			Field:    "date range",
			Message:  "both --from and --to are required",
		})
		return nil, problems
	}

	start, err := parseDate(from)
	if err != nil {
		problems = append(problems, &ValidationError{
			Severity: SeverityError, Field: "from", Value: from, Message: "not a valid date (use YYYY-MM-DD)",
		})
	}
	end, err := parseDate(to)
	if err != nil {
		problems = append(problems, &ValidationError{
			Severity: SeverityError, Field: "to", Value: to, Message: "not a valid date (use YYYY-MM-DD)",
		})
	}
	if len(problems) > 0 {
		return nil, problems
	}

	if end.Before(start) {
		return nil, []*ValidationError{{
			Severity: SeverityError,
			Field:    "date range",
			Value:    from + ".." + to,
			Message:  "start date is after end date",
		}}
	}

	rng := types.NewDateRange(start, end)
	return &rng, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// checkSources flags repeated sources, the target listed as a source, and
// files that are not .txt.
func checkSources(target string, sources []string) []*ValidationError {
	var problems []*ValidationError
	seen := make(map[string]bool, len(sources))
	targetKey := pathKey(target)

	for _, s := range sources {
		if strings.TrimSpace(s) == "" {
			continue
		}
		key := pathKey(s)
		if seen[key] {
			problems = append(problems, &ValidationError{
				Severity: SeverityWarning, Field: "sources", Value: s,
				Message: "selected more than once; its lines will be appended again",
			})
		}
		seen[key] = true

		if target != "" && key == targetKey {
			problems = append(problems, &ValidationError{
				Severity: SeverityWarning, Field: "sources", Value: s,
				Message: "is the target file; its content will be duplicated",
			})
		}
		if !strings.EqualFold(filepath.Ext(s), ".txt") {
			problems = append(problems, &ValidationError{
				Severity: SeverityWarning, Field: "sources", Value: s,
				Message: "is not a .txt file",
			})
		}
	}
	return problems
}

func pathKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// =============================================================================
// RESULT HELPERS
// =============================================================================

// HasErrors reports whether any problem has error severity.
func HasErrors(problems []*ValidationError) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the problems with the given severity.
func Filter(problems []*ValidationError, severity string) []*ValidationError {
	var out []*ValidationError
	for _, p := range problems {
		if p.Severity == severity {
			out = append(out, p)
		}
	}
	return out
}

// FormatErrors formats problems for display.
func FormatErrors(problems []*ValidationError) string {
	if len(problems) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(problems)))
	for i, p := range problems {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Error()))
	}
	return builder.String()
}
