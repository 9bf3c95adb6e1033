package domain

import (
	"cmp"
	"fmt"
	"time"
)

// dateLayout ISO-8601 calendar date as used by the Bring API
const dateLayout = "2006-01-02"

// DeliveryDate civil date without time of day or zone
type DeliveryDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDeliveryDate normalizes out-of-range values the way time.Date does
func NewDeliveryDate(year int, month time.Month, day int) DeliveryDate {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// maxYear last year whose dates and their following day fit a 4-digit DATE value
const maxYear = 9999

// ParseDeliveryDate parses a strict YYYY-MM-DD string. The last day of year 9999 is rejected
// because its exclusive end date has no 4-digit year.
func ParseDeliveryDate(s string) (DeliveryDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DeliveryDate{}, fmt.Errorf("invalid delivery date %q: %w", s, err)
	}
	d := dateOf(t)
	if d.AddDays(1).Year > maxYear {
		return DeliveryDate{}, fmt.Errorf("invalid delivery date %q: out of range", s)
	}
	return d, nil
}

func dateOf(t time.Time) DeliveryDate {
	y, m, d := t.Date()
	return DeliveryDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date
func (d DeliveryDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date n days later (earlier for negative n)
func (d DeliveryDate) AddDays(n int) DeliveryDate {
	return NewDeliveryDate(d.Year, d.Month, d.Day+n)
}

// Weekday day of the week of the date
func (d DeliveryDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// ISOWeekday 1 for Monday through 7 for Sunday
func (d DeliveryDate) ISOWeekday() int {
	if wd := d.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

// Compare orders dates by calendar value
func (d DeliveryDate) Compare(o DeliveryDate) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

// Before reports whether d comes strictly before o
func (d DeliveryDate) Before(o DeliveryDate) bool {
	return d.Compare(o) < 0
}

func (d DeliveryDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
