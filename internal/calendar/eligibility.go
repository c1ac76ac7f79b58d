package calendar

// Bounds are the caller supplied earliest and latest selectable dates. A zero
// date leaves that side unbounded.
//
// Bounds only restrict days in the month containing "today". Outside that
// month, whole earlier months are excluded when only Min is set and whole
// later months are excluded whenever Max is set. Min is ignored when Max is
// set.
type Bounds struct {
	Min CalendarDate
	Max CalendarDate
}

// Unbounded reports whether neither side is set.
func (b Bounds) Unbounded() bool {
	return b.Min.IsZero() && b.Max.IsZero()
}

// Excludes reports whether d is disabled by the bounds given today's date.
func (b Bounds) Excludes(d, today CalendarDate) bool {
	if b.Unbounded() {
		return false
	}
	sameYear := d.Year == today.Year
	sameMonth := sameYear && d.Month == today.Month

	if !b.Max.IsZero() {
		if sameMonth && d.Day > b.Max.Day {
			return true
		}
		return (sameYear && d.Month > today.Month) || d.Year > today.Year
	}

	if sameMonth && d.Day < b.Min.Day {
		return true
	}
	return (sameYear && d.Month < today.Month) || d.Year < today.Year
}

// AvailabilitySet is an allow-list of selectable days. An empty list places
// no restriction unless the set was built with NewRestrictedSet.
type AvailabilitySet struct {
	days       map[CalendarDate]struct{}
	restricted bool
}

// NewAvailabilitySet indexes dates for membership tests.
func NewAvailabilitySet(dates []CalendarDate) AvailabilitySet {
	if len(dates) == 0 {
		return AvailabilitySet{}
	}
	return NewRestrictedSet(dates)
}

// NewRestrictedSet is like NewAvailabilitySet but an empty list disables every
// day. It suits lists already narrowed to the displayed month.
func NewRestrictedSet(dates []CalendarDate) AvailabilitySet {
	days := make(map[CalendarDate]struct{}, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		days[d] = struct{}{}
	}
	return AvailabilitySet{days: days, restricted: true}
}

// Len returns the number of distinct days in the set.
func (a AvailabilitySet) Len() int { return len(a.days) }

// Restricted reports whether the set limits selection at all.
func (a AvailabilitySet) Restricted() bool { return a.restricted }

// Contains reports whether d is in the set.
func (a AvailabilitySet) Contains(d CalendarDate) bool {
	_, ok := a.days[d]
	return ok
}

// Excludes reports whether d is disabled by the allow-list.
func (a AvailabilitySet) Excludes(d CalendarDate) bool {
	if !a.restricted {
		return false
	}
	return !a.Contains(d)
}

// Eligibility combines both disabling rules for one render pass.
type Eligibility struct {
	Today        CalendarDate
	Bounds       Bounds
	Availability AvailabilitySet
}

// Disabled reports whether d cannot be selected.
func (e Eligibility) Disabled(d CalendarDate) bool {
	return e.Bounds.Excludes(d, e.Today) || e.Availability.Excludes(d)
}
