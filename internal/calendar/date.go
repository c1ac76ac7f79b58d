package calendar

import (
	"fmt"
	"time"

	"cloudeng.io/datetime"
)

const dateLayout = "2006-01-02"

// CalendarDate identifies a day by year, month and day. It carries no time of
// day and no location; the zero value means "no date".
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for year, month and day, so that
// NewDate(2024, 1, 32) is February 1st.
func NewDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the wall-clock date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is unset.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// String formats d as YYYY-MM-DD, or "" when unset.
func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Key is the stable render key of the day cell for d.
func (d CalendarDate) Key() string {
	return d.String()
}

// Compare returns -1, 0 or +1 depending on whether d is before, the same day as
// or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d CalendarDate) Equal(other CalendarDate) bool { return d == other }

func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }

func (d CalendarDate) After(other CalendarDate) bool { return d.Compare(other) > 0 }

// Between reports whether d falls strictly between start and end.
func (d CalendarDate) Between(start, end CalendarDate) bool {
	return d.After(start) && d.Before(end)
}

// SameMonth reports whether d and other share year and month.
func (d CalendarDate) SameMonth(other CalendarDate) bool {
	return d.Year == other.Year && d.Month == other.Month
}

// StartOfDay returns midnight of d in loc.
func (d CalendarDate) StartOfDay(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last millisecond of d in loc.
func (d CalendarDate) EndOfDay(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, int(999*time.Millisecond), loc)
}

// DaysInMonth returns the number of days in d's month.
func (d CalendarDate) DaysInMonth() int {
	return int(datetime.DaysInMonth(d.Year, datetime.Month(d.Month)))
}

// FirstOfMonth returns the first day of d's month.
func (d CalendarDate) FirstOfMonth() CalendarDate {
	return CalendarDate{Year: d.Year, Month: d.Month, Day: 1}
}

// WithMonth moves d to month m of its year, carrying overflow into the year
// (month 0 is December of the previous year, 13 is January of the next). The
// day is clamped to the length of the target month.
func (d CalendarDate) WithMonth(m int) CalendarDate {
	year := d.Year + floorDiv(m-1, 12)
	month := time.Month(mod(m-1, 12) + 1)
	target := CalendarDate{Year: year, Month: month, Day: 1}
	day := d.Day
	if last := target.DaysInMonth(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	target.Day = day
	return target
}

// AddMonths shifts d by delta months, clamping the day.
func (d CalendarDate) AddMonths(delta int) CalendarDate {
	return d.WithMonth(int(d.Month) + delta)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

// Weekday returns the day of the week of d.
func (d CalendarDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// MonthName returns the full month name, e.g. "January".
func (d CalendarDate) MonthName() string {
	return d.Month.String()
}

// YearString returns the four digit year.
func (d CalendarDate) YearString() string {
	return fmt.Sprintf("%04d", d.Year)
}

// DayString returns the two digit day of month.
func (d CalendarDate) DayString() string {
	return fmt.Sprintf("%02d", d.Day)
}

// WeekdayLabels returns abbreviated weekday names starting on Sunday.
func WeekdayLabels() [7]string {
	var labels [7]string
	for i := range labels {
		labels[i] = time.Weekday(i).String()[:3]
	}
	return labels
}

// ParseDateList parses YYYY-MM-DD values, skipping blanks.
func ParseDateList(values []string) ([]CalendarDate, error) {
	var out []CalendarDate
	for _, v := range values {
		if v == "" {
			continue
		}
		d, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
