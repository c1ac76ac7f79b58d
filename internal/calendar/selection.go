package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects between collecting one date or a start/end pair.
type Mode int

const (
	ModeSingle Mode = iota
	ModeRange
)

func (m Mode) String() string {
	if m == ModeRange {
		return "range"
	}
	return "single"
}

// ParseMode accepts "single" or "range".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ModeSingle, nil
	case "range":
		return ModeRange, nil
	}
	return ModeSingle, fmt.Errorf("invalid mode %q: want single or range", s)
}

// Selection is the selected start and end day. Either may be unset before the
// first click.
type Selection struct {
	Start CalendarDate
	End   CalendarDate
}

// Collapsed reports whether start and end are the same set day.
func (s Selection) Collapsed() bool {
	return !s.Start.IsZero() && s.Start.Equal(s.End)
}

// Next returns the selection after d is clicked. A click before the start, or
// any click while a range is open, begins a new selection on d; a click after
// a collapsed start closes the range on d.
func (s Selection) Next(d CalendarDate) Selection {
	switch {
	case s.Start.IsZero(), d.Before(s.Start), !s.Start.Equal(s.End):
		return Selection{Start: d, End: d}
	case d.Equal(s.Start) && d.Equal(s.End):
		return Selection{Start: d, End: d}
	case d.After(s.Start):
		return Selection{Start: s.Start, End: d}
	}
	return s
}

// Range is the instant range reported to the caller after a selection change.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Report converts a selection into the reported range in loc. In single mode
// both bounds come from the end day. An empty selection reports zero times.
func (s Selection) Report(mode Mode, loc *time.Location) Range {
	start, end := s.Start, s.End
	if end.IsZero() {
		return Range{}
	}
	if mode == ModeSingle {
		start = end
	}
	return Range{Start: start.StartOfDay(loc), End: end.EndOfDay(loc)}
}

// ForMode normalizes the stored selection: single mode always keeps a
// collapsed pair on the end day, or on the start day when no end is set.
func (s Selection) ForMode(mode Mode) Selection {
	if mode != ModeSingle {
		return s
	}
	day := s.End
	if day.IsZero() {
		day = s.Start
	}
	return Selection{Start: day, End: day}
}
