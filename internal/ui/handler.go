package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/jw6ventures/dyncal/internal/availability"
	"github.com/jw6ventures/dyncal/internal/calendar"
	"github.com/jw6ventures/dyncal/internal/config"
	"github.com/jw6ventures/dyncal/internal/http/errors"
	"github.com/jw6ventures/dyncal/internal/metrics"
	"github.com/jw6ventures/dyncal/internal/store"
)

// Handler serves the calendar widget as HTML and JSON.
type Handler struct {
	cfg       *config.Config
	sources   availability.Source
	sets      store.AvailabilityRepository
	templates map[string]*template.Template
	clock     calendar.Clock
}

// NewHandler builds a handler. sources resolves named availability sets and
// sets backs the management API; either may be nil.
func NewHandler(cfg *config.Config, sources availability.Source, sets store.AvailabilityRepository) *Handler {
	return &Handler{
		cfg:       cfg,
		sources:   sources,
		sets:      sets,
		templates: templates,
		clock:     calendar.SystemClock,
	}
}

// widget is one request's calendar together with what its callbacks reported.
type widget struct {
	req      calendarRequest
	cal      *calendar.Calendar
	month    int
	changes  []calendar.Range
	fallback error
}

// errNoSources is returned when a set is named but no source is configured.
var errNoSources = stderrors.New("named availability sets are not configured")

// buildWidget turns a request into a calendar showing the requested month,
// resolving a named availability set for that month when one is given.
func (h *Handler) buildWidget(r *http.Request, req calendarRequest) (*widget, error) {
	w := &widget{req: req}

	tz := req.Timezone
	if tz == "" && h.cfg != nil {
		tz = h.cfg.DefaultTimezone
	}
	zone, _ := calendar.LoadZone(tz)

	props := req.props(zone)
	props.Timezone = tz
	props.OnChange = func(rg calendar.Range) { w.changes = append(w.changes, rg) }
	props.OnChangeMonth = func(month int) { w.month = month }
	props.OnZoneFallback = func(err error) {
		if w.fallback == nil {
			w.fallback = err
			errors.LogWarn(r, "timezone fallback", err)
			metrics.ObserveTimezoneFallback()
		}
	}

	w.cal = calendar.New(props, h.clock)
	w.cal.ShowMonth(req.Month)

	if req.Availability == "" {
		return w, nil
	}
	if h.sources == nil {
		return nil, errNoSources
	}
	first := w.cal.Displayed().FirstOfMonth()
	last := calendar.NewDate(first.Year, first.Month, first.DaysInMonth())
	dates, err := h.sources.Dates(r.Context(), req.Availability, first, last)
	if err != nil {
		return nil, fmt.Errorf("resolve availability set %q: %w", req.Availability, err)
	}

	displayed := w.cal.Displayed()
	props.AvailableDates = append(append([]calendar.CalendarDate(nil), req.Available...), dates...)
	props.AvailabilityRestricted = true
	w.cal.SetProps(props)
	w.cal.ShowMonth(displayed)
	return w, nil
}

// widgetError maps buildWidget failures onto client or server errors.
func (h *Handler) widgetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, availability.ErrUnknownSet):
		errors.BadRequestError(w, r, err, "unknown availability set")
	case stderrors.Is(err, errNoSources):
		errors.BadRequestError(w, r, err, err.Error())
	case stderrors.Is(err, context.Canceled):
		errors.LogInfo(r, "request canceled")
	default:
		errors.InternalError(w, r, err, "failed to build calendar")
	}
}
