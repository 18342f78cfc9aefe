package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodOrdinal maps an upstream period code to its position within a year.
// Monthly codes run "M01".."M12"; "M13" is the annual average and sorts after
// December. Quarterly ("Q01".."Q04") and semiannual ("S01".."S03") codes are
// accepted for completeness. Unknown codes return false.
func PeriodOrdinal(period string) (int, bool) {
	if len(period) < 2 {
		return 0, false
	}
	prefix := period[:1]
	n, err := strconv.Atoi(period[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	switch prefix {
	case "M":
		if n > 13 {
			return 0, false
		}
		return n, true
	case "Q":
		if n > 5 {
			return 0, false
		}
		// Spread quarters across the monthly scale so mixed series still
		// sort chronologically: Q1→3, Q2→6, Q3→9, Q4→12, Q5(annual)→13.
		if n == 5 {
			return 13, true
		}
		return n * 3, true
	case "S":
		if n > 3 {
			return 0, false
		}
		if n == 3 {
			return 13, true
		}
		return n * 6, true
	case "A":
		return 13, true
	default:
		return 0, false
	}
}

// PeriodName returns the human-readable name for a period code.
func PeriodName(period string) string {
	ord, ok := PeriodOrdinal(period)
	if !ok {
		return period
	}
	if strings.HasPrefix(period, "M") && ord >= 1 && ord <= 12 {
		return time.Month(ord).String()
	}
	switch {
	case strings.HasPrefix(period, "Q") && period != "Q05":
		return fmt.Sprintf("Q%d", ord/3)
	case ord == 13:
		return "Annual"
	}
	return period
}

// MonthlyPeriods lists the period codes persisted as wide-matrix columns,
// in chronological order. M13 is the upstream annual-average pseudo-month.
var MonthlyPeriods = []string{
	"M01", "M02", "M03", "M04", "M05", "M06",
	"M07", "M08", "M09", "M10", "M11", "M12", "M13",
}

// ParseYear parses an upstream year string ("2024") into an int.
func ParseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return y, nil
}

// DateOnly formats a time as YYYY-MM-DD.
func DateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDateOnly parses a YYYY-MM-DD date in UTC.
func ParseDateOnly(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
