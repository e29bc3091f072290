package intelligence

import (
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
)

// explicitLayouts are tried in order when parsing a model-supplied deadline.
// Layouts without a zone are read in the user's location.
var explicitLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// DeadlineFor derives a deadline from an explicit ISO-8601 value or a
// symbolic hint. An explicit value that parses always wins. Hints map to:
// today 23:59, tomorrow 09:00, upcoming (+3 days) 09:00, all in loc.
// someday or no hint yields nil.
func DeadlineFor(explicit, when string, now time.Time, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if t, ok := parseExplicit(explicit, loc); ok {
		return &t
	}

	local := now.In(loc)
	y, m, d := local.Date()
	var t time.Time
	switch domain.TimeHint(strings.ToLower(strings.TrimSpace(when))) {
	case domain.HintToday:
		t = time.Date(y, m, d, 23, 59, 0, 0, loc)
	case domain.HintTomorrow:
		t = time.Date(y, m, d+1, 9, 0, 0, 0, loc)
	case domain.HintUpcoming:
		t = time.Date(y, m, d+3, 9, 0, 0, 0, loc)
	default:
		return nil
	}
	return &t
}

func parseExplicit(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}
	for _, layout := range explicitLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	// A bare date means the end of that day.
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t.Add(23*time.Hour + 59*time.Minute), true
	}
	return time.Time{}, false
}

// EndOfDay is 23:59:59.999999999 of now's date in loc.
func EndOfDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
}

// TomorrowMorning is 09:00 on the day after now in loc.
func TomorrowMorning(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+1, 9, 0, 0, 0, loc)
}
