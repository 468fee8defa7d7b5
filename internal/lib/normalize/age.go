// Package normalize converts marketplace display strings into comparable numbers.
package normalize

import (
	"strconv"
	"strings"
)

// Unit is the canonical time unit of an age caption.
type Unit string

const (
	UnitUnknown Unit = ""
	UnitSecond  Unit = "second"
	UnitMinute  Unit = "minute"
	UnitHour    Unit = "hour"
	UnitDay     Unit = "day"
	UnitWeek    Unit = "week"
	UnitMonth   Unit = "month"
	UnitYear    Unit = "year"
)

const (
	hoursPerDay   = 24
	hoursPerWeek  = 7 * hoursPerDay
	hoursPerMonth = 30 * hoursPerDay
	hoursPerYear  = 12 * hoursPerMonth
)

// unitHours maps a unit to its length in hours. Seconds are deliberately absent:
// they sort as 0 hours and are handled as their own recency tier by IsRecent.
var unitHours = map[Unit]float64{ //nolint:gochecknoglobals // read-only lookup table
	UnitMinute: 1.0 / 60,
	UnitHour:   1,
	UnitDay:    hoursPerDay,
	UnitWeek:   hoursPerWeek,
	UnitMonth:  hoursPerMonth,
	UnitYear:   hoursPerYear,
}

// unitPrefixes is matched against the unit token in order.
var unitPrefixes = []struct { //nolint:gochecknoglobals // read-only lookup table
	prefix string
	unit   Unit
}{
	{"sec", UnitSecond},
	{"min", UnitMinute},
	{"hour", UnitHour},
	{"hr", UnitHour},
	{"day", UnitDay},
	{"week", UnitWeek},
	{"month", UnitMonth},
	{"year", UnitYear},
}

// splitAge returns the count and unit token of an age caption like "3 hours ago".
func splitAge(s string) (string, string, bool) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) < 2 { //nolint:mnd // "<count> <unit>"
		return "", "", false
	}

	return fields[0], fields[1], true
}

// AgeUnit returns the canonical unit of an age caption, or UnitUnknown.
func AgeUnit(s string) Unit {
	_, token, ok := splitAge(s)
	if !ok {
		return UnitUnknown
	}

	for _, p := range unitPrefixes {
		if strings.HasPrefix(token, p.prefix) {
			return p.unit
		}
	}

	return UnitUnknown
}

// AgeToHours converts an age caption into elapsed hours.
// Unparseable counts and unknown units yield 0.
func AgeToHours(s string) float64 {
	count, _, ok := splitAge(s)
	if !ok {
		return 0
	}

	var n int
	switch count {
	case "a", "an":
		n = 1
	default:
		var err error
		if n, err = strconv.Atoi(count); err != nil || n < 0 {
			return 0
		}
	}

	return float64(n) * unitHours[AgeUnit(s)]
}

// IsRecent reports whether the caption is in the sub-minute tier ("45 seconds").
func IsRecent(s string) bool {
	return AgeUnit(s) == UnitSecond
}

// TrimAgo strips the trailing " ago" from an age caption.
func TrimAgo(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), " ago"))
}
