package progression

import (
	"fmt"
	"time"
)

const (
	dateLayout       = "2006-01-02"
	legacyDateLayout = "Mon Jan 02 2006"
)

// Date is a calendar day with no time-of-day component. The zero value means "never recorded".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD as well as the "Mon Jan 02 2006" form written by older web clients.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range []string{dateLayout, legacyDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date %q", s)
}

// IsZero reports whether no day was recorded.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the day as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
