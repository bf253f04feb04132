package calendar

import (
	"errors"
	"time"
)

// Layout is the wire format for dates everywhere in the backend API.
const Layout = "2006-01-02"

var ErrInvalidRange = errors.New("start date is after end date")

// Date is a calendar day with no time-of-day component. It is comparable,
// so it can key override maps directly instead of going through strings.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(Layout)
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Pattern selects which days of a range a bulk operation targets.
type Pattern string

const (
	PatternAll      Pattern = "all"
	PatternWeekdays Pattern = "weekdays"
	PatternWeekends Pattern = "weekends"
	PatternCustom   Pattern = "custom"
)

func (p Pattern) Valid() bool {
	switch p {
	case PatternAll, PatternWeekdays, PatternWeekends, PatternCustom:
		return true
	}
	return false
}

// defaultWindowDays is the range used when the caller gives no bounds.
const defaultWindowDays = 30

// SelectDates returns the ascending list of dates the pattern targets,
// each date at most once, bounds inclusive. today anchors the default
// window [today, today+30] used when start/end are not supplied; custom
// requires both bounds and rejects start > end.
func SelectDates(today Date, pattern Pattern, start, end Date) ([]Date, error) {
	if pattern == PatternCustom && (start.IsZero() || end.IsZero()) {
		return nil, ErrInvalidRange
	}
	if start.IsZero() {
		start = today
	}
	if end.IsZero() {
		end = today.AddDays(defaultWindowDays)
	}
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var dates []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		switch pattern {
		case PatternWeekdays:
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		case PatternWeekends:
			if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
				continue
			}
		}
		dates = append(dates, d)
	}
	return dates, nil
}
