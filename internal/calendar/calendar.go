// Package calendar holds the date-picker logic: which days of a month can be
// selected, how each day renders, and how clicks move the selection.
package calendar

import "time"

// Props are the caller-controlled inputs of a calendar. Zero times are
// absent values.
type Props struct {
	Mode    Mode
	Loading bool

	// Value anchors the displayed month; StartValue and EndValue seed the
	// selection.
	Value      time.Time
	StartValue time.Time
	EndValue   time.Time

	AvailableDates []CalendarDate
	// AvailabilityRestricted makes AvailableDates authoritative even when
	// empty, disabling every day.
	AvailabilityRestricted bool

	// Timezone names the zone "today" is computed in. Empty guesses the
	// process zone.
	Timezone string

	MinValue time.Time
	MaxValue time.Time
	// MinUnbounded disables the default of MinValue to the current instant.
	MinUnbounded bool

	OnChange      func(Range)
	OnChangeMonth func(month int)
	// OnZoneFallback is told when Timezone could not be loaded.
	OnZoneFallback func(err error)
}

// Calendar owns the displayed month and the selection. It is not safe for
// concurrent use; every change happens synchronously in the caller's event.
type Calendar struct {
	props     Props
	clock     Clock
	zone      Zone
	displayed CalendarDate
	selection Selection
	available AvailabilitySet
}

// New builds a calendar from props. A nil clock uses the system clock.
func New(props Props, clock Clock) *Calendar {
	if clock == nil {
		clock = SystemClock
	}
	c := &Calendar{clock: clock}
	c.SetProps(props)
	return c
}

// SetProps replaces all internal state from props; the caller's values win
// over anything clicked so far.
func (c *Calendar) SetProps(props Props) {
	c.props = props
	zone, err := LoadZone(props.Timezone)
	if err != nil && props.OnZoneFallback != nil {
		props.OnZoneFallback(err)
	}
	c.zone = zone
	if props.AvailabilityRestricted {
		c.available = NewRestrictedSet(props.AvailableDates)
	} else {
		c.available = NewAvailabilitySet(props.AvailableDates)
	}
	c.selection = Selection{
		Start: c.dateOf(props.StartValue),
		End:   c.dateOf(props.EndValue),
	}.ForMode(props.Mode)
	c.setDisplayed(c.anchor())
}

func (c *Calendar) dateOf(t time.Time) CalendarDate {
	if t.IsZero() {
		return CalendarDate{}
	}
	return c.zone.Date(t)
}

func (c *Calendar) anchor() CalendarDate {
	if !c.props.Value.IsZero() {
		return c.zone.Date(c.props.Value)
	}
	return c.Today()
}

func (c *Calendar) setDisplayed(d CalendarDate) {
	changed := !d.SameMonth(c.displayed)
	c.displayed = d
	if changed && c.props.OnChangeMonth != nil {
		c.props.OnChangeMonth(int(d.Month))
	}
}

// Mode returns the selection mode.
func (c *Calendar) Mode() Mode { return c.props.Mode }

// Zone returns the zone "today" is computed in.
func (c *Calendar) Zone() Zone { return c.zone }

// Today returns the current date in the calendar's zone.
func (c *Calendar) Today() CalendarDate { return c.zone.Today(c.clock) }

// Displayed returns the date anchoring the displayed month.
func (c *Calendar) Displayed() CalendarDate { return c.displayed }

// Selection returns the current selection.
func (c *Calendar) Selection() Selection { return c.selection }

// Bounds returns the min/max bounds as calendar days in the zone.
func (c *Calendar) Bounds() Bounds {
	var b Bounds
	switch {
	case !c.props.MinValue.IsZero():
		b.Min = c.zone.Date(c.props.MinValue)
	case !c.props.MinUnbounded:
		b.Min = c.Today()
	}
	if !c.props.MaxValue.IsZero() {
		b.Max = c.zone.Date(c.props.MaxValue)
	}
	return b
}

// Eligibility returns the disabling rules for the current render.
func (c *Calendar) Eligibility() Eligibility {
	return Eligibility{Today: c.Today(), Bounds: c.Bounds(), Availability: c.available}
}

// Grid renders the displayed month.
func (c *Calendar) Grid() Grid {
	return BuildGrid(c.displayed, CellView{
		Mode:        c.props.Mode,
		Selection:   c.selection,
		Eligibility: c.Eligibility(),
		Loading:     c.props.Loading,
	})
}

// Click applies a click on d. It returns false, leaving the selection and
// callbacks untouched, when d is disabled or the calendar is loading.
func (c *Calendar) Click(d CalendarDate) bool {
	if d.IsZero() || c.props.Loading || c.Eligibility().Disabled(d) {
		return false
	}
	c.selection = c.selection.Next(d).ForMode(c.props.Mode)
	if c.props.OnChange != nil {
		c.props.OnChange(c.Report())
	}
	return true
}

// Report returns the range describing the current selection.
func (c *Calendar) Report() Range {
	return c.selection.Report(c.props.Mode, c.zone.Location())
}

// ChangeMonth jumps to month m (1-12) of the displayed year. Values outside
// 1-12 roll into the neighbouring years.
func (c *Calendar) ChangeMonth(m int) {
	c.setDisplayed(c.displayed.WithMonth(m))
}

// ShiftMonth moves the displayed month by delta.
func (c *Calendar) ShiftMonth(delta int) {
	c.setDisplayed(c.displayed.AddMonths(delta))
}

// ShowMonth displays the month containing d.
func (c *Calendar) ShowMonth(d CalendarDate) {
	if d.IsZero() {
		return
	}
	c.setDisplayed(d)
}

// ResetMonth returns to the month of Value, or of today.
func (c *Calendar) ResetMonth() {
	c.setDisplayed(c.anchor())
}
