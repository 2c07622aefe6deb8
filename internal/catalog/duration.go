package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// NumericDurations reports whether every duration in rows parses as a
// plain number, i.e. the column carries minute counts rather than text.
func NumericDurations(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if _, ok := finite(r.Duration); !ok {
			return false
		}
	}
	return true
}

// finite parses s as a float, rejecting NaN and infinities.
func finite(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// DurationMinutes parses a duration cell. In text mode " min" is stripped and
// the first run of digits is used; in numeric mode the cell is coerced as a
// number. ok is false when the value cannot be parsed.
func DurationMinutes(raw string, numeric bool) (minutes float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if numeric {
		return finite(raw)
	}

	m := digitRun.FindString(strings.ReplaceAll(raw, " min", ""))
	if m == "" {
		return 0, false
	}
	return finite(m)
}

// Year parses a release_year cell. Values like "2019.0" are accepted.
func Year(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, ok := finite(raw)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
