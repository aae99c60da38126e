package xero

import (
	"regexp"
	"strconv"
	"time"
)

// Xero serialises most dates as "/Date(1718409600000+0000)/" (milliseconds since the epoch
// with an optional offset) and some as ISO local timestamps.
var msDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseDate returns nil for empty or unrecognised input.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if m := msDatePattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// whereDate renders a date in Xero's filter expression syntax.
func whereDate(t time.Time) string {
	return "DateTime(" + strconv.Itoa(t.Year()) + "," + strconv.Itoa(int(t.Month())) + "," + strconv.Itoa(t.Day()) + ")"
}
