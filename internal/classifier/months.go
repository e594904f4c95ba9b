// =============================================================================
// txtmerge - Date Classifier
// =============================================================================
//
// This module buckets marker lines by the calendar month of their embedded
// date. A line qualifies when:
//   1. it starts with the exact record marker (default `"15"`), and
//   2. it contains a quoted run of exactly eight digits, and
//   3. those digits parse as a valid YYYYMMDD calendar date, and
//   4. the date lies inside the optional inclusive date range.
//
// Lines failing any test are skipped. Classification never returns an error.
//
// ORDERING:
//   Month keys render as MM-YYYY but are always returned in calendar order,
//   (year, month). Sorting the rendered strings would put 01-2024 before
//   12-2023.
//
// =============================================================================

package classifier

import (
	"regexp"
	"slices"
	"time"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

// datePattern matches the first quoted 8-digit token on a line.
var datePattern = regexp.MustCompile(`"(\d{8})"`)

// dateLayout is the YYYYMMDD layout of the embedded date.
const dateLayout = "20060102"

// =============================================================================
// CLASSIFICATION RESULT
// =============================================================================

// Classification holds the month buckets from one classify call.
type Classification struct {
	buckets map[types.MonthKey][]types.Line
	keys    []types.MonthKey

	// Matched is the number of lines placed in a bucket.
	Matched int

	// NoDate counts marker lines without a quoted 8-digit token.
	NoDate int

	// Malformed counts marker lines whose token is not a calendar date.
	Malformed int

	// OutOfRange counts dated marker lines excluded by the date range.
	OutOfRange int
}

// Keys returns the bucket keys in calendar order.
func (c *Classification) Keys() []types.MonthKey {
	return slices.Clone(c.keys)
}

// Months returns the bucket keys rendered as MM-YYYY, in calendar order.
func (c *Classification) Months() []string {
	out := make([]string, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.String()
	}
	return out
}

// Bucket returns the lines of one month, in input order.
func (c *Classification) Bucket(key types.MonthKey) []types.Line {
	return slices.Clone(c.buckets[key])
}

// Count returns the number of buckets.
func (c *Classification) Count() int {
	return len(c.keys)
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier buckets marker lines by month.
type Classifier struct {
	marker string
}

// New returns a Classifier for the given record marker. Empty selects `"15"`.
func New(marker string) *Classifier {
	if marker == "" {
		marker = types.DefaultMarker
	}
	return &Classifier{marker: marker}
}

// Classify scans lines and returns the month buckets.
//
// PARAMETERS:
//   - lines: The lines to scan, in file order.
//   - rng: Optional inclusive date range; nil accepts every date.
//
// RETURNS:
//   - A fresh Classification. Never nil.
func (c *Classifier) Classify(lines []types.Line, rng *types.DateRange) *Classification {
	res := &Classification{buckets: make(map[types.MonthKey][]types.Line)}

	for _, line := range lines {
		if !types.HasMarker(line, c.marker) {
			continue
		}
		date, ok, found := RecordDate(line)
		switch {
		case !found:
			res.NoDate++
			continue
		case !ok:
			res.Malformed++
			continue
		case !rng.Contains(date):
			res.OutOfRange++
			continue
		}

		key := types.MonthOf(date)
		if _, seen := res.buckets[key]; !seen {
			res.keys = append(res.keys, key)
		}
		res.buckets[key] = append(res.buckets[key], line)
		res.Matched++
	}

	slices.SortFunc(res.keys, types.MonthKey.Compare)
	return res
}

// ExtractMonths returns the distinct MM-YYYY keys of lines, in calendar order.
func (c *Classifier) ExtractMonths(lines []types.Line, rng *types.DateRange) []string {
	return c.Classify(lines, rng).Months()
}

// ExtractMonths classifies with the default `"15"` marker.
func ExtractMonths(lines []types.Line, rng *types.DateRange) []string {
	return New("").ExtractMonths(lines, rng)
}

// RecordDate extracts the embedded date of a line. It does not check the
// marker.
//
// RETURNS:
//   - date: The parsed date (midnight UTC) when ok.
//   - ok: True when the token parses as a valid calendar date.
//   - found: True when a quoted 8-digit token exists at all.
func RecordDate(line types.Line) (date time.Time, ok bool, found bool) {
	m := datePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false, false
	}
	// time.Parse rejects out-of-range days such as 20230230.
	d, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return time.Time{}, false, true
	}
	return d, true, true
}
