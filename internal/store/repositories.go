package store

import (
	"context"
	"errors"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

// ErrNotFound is returned when a named availability set does not exist.
var ErrNotFound = errors.New("availability set not found")

// AvailabilityRepository persists named availability sets.
type AvailabilityRepository interface {
	// ListDates returns the set's days within [from, to]. ErrNotFound is
	// returned when the set does not exist.
	ListDates(ctx context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error)
	ListSets(ctx context.Context) ([]AvailabilitySetSummary, error)
	ReplaceSet(ctx context.Context, set AvailabilitySet) error
	DeleteSet(ctx context.Context, name string) error
}
