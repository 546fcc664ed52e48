package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of an event date.
const DateLayout = "2006-01-02"

// CalendarDate returns midnight UTC of the civil date t falls on in loc.
// Event dates are compared on this value only; time of day is ignored.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD event date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}
