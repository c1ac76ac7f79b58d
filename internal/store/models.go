package store

import (
	"time"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

// AvailabilitySet is a named allow-list of selectable days.
type AvailabilitySet struct {
	Name        string
	Description string
	Dates       []calendar.CalendarDate
	UpdatedAt   time.Time
}

// AvailabilitySetSummary describes a set without its dates.
type AvailabilitySetSummary struct {
	Name        string
	Description string
	DayCount    int
	UpdatedAt   time.Time
}
