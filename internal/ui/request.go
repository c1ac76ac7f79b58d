package ui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

// calendarRequest is the widget state carried in query strings and forms.
// Dates are calendar days; they become instants in the requested zone only
// when handed to the calendar.
type calendarRequest struct {
	Mode         calendar.Mode
	Loading      bool
	Value        calendar.CalendarDate
	Start        calendar.CalendarDate
	End          calendar.CalendarDate
	Available    []calendar.CalendarDate
	Availability string
	Timezone     string
	Min          calendar.CalendarDate
	MinNone      bool
	Max          calendar.CalendarDate
	// Month is the displayed month when the visitor navigated away from the
	// anchor month.
	Month calendar.CalendarDate
}

const monthLayout = "2006-01"

func parseCalendarRequest(values url.Values) (calendarRequest, error) {
	var req calendarRequest
	var err error

	if v := strings.TrimSpace(values.Get("mode")); v != "" {
		if req.Mode, err = calendar.ParseMode(v); err != nil {
			return req, err
		}
	}
	req.Loading = parseBool(values.Get("loading"))

	if req.Value, err = parseDay(values.Get("value")); err != nil {
		return req, fmt.Errorf("value: %w", err)
	}
	if req.Start, err = parseDay(values.Get("start")); err != nil {
		return req, fmt.Errorf("start: %w", err)
	}
	if req.End, err = parseDay(values.Get("end")); err != nil {
		return req, fmt.Errorf("end: %w", err)
	}
	if req.Max, err = parseDay(values.Get("max")); err != nil {
		return req, fmt.Errorf("max: %w", err)
	}

	switch minValue := strings.TrimSpace(values.Get("min")); strings.ToLower(minValue) {
	case "none", "null":
		req.MinNone = true
	default:
		if req.Min, err = parseDay(minValue); err != nil {
			return req, fmt.Errorf("min: %w", err)
		}
	}

	if v := strings.TrimSpace(values.Get("available")); v != "" {
		if req.Available, err = calendar.ParseDateList(splitList(v)); err != nil {
			return req, fmt.Errorf("available: %w", err)
		}
	}
	req.Availability = strings.TrimSpace(values.Get("availability"))
	req.Timezone = strings.TrimSpace(values.Get("tz"))

	if v := strings.TrimSpace(values.Get("month")); v != "" {
		t, err := time.Parse(monthLayout, v)
		if err != nil {
			return req, fmt.Errorf("month: invalid month %q", v)
		}
		req.Month = calendar.DateOf(t)
	}
	return req, nil
}

// parseDay accepts YYYY-MM-DD or an RFC 3339 timestamp, whose own wall-clock
// date is used.
func parseDay(v string) (calendar.CalendarDate, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return calendar.CalendarDate{}, nil
	}
	if d, err := calendar.ParseDate(v); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return calendar.CalendarDate{}, fmt.Errorf("invalid date %q", v)
	}
	return calendar.DateOf(t), nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// props converts the request into calendar props for zone, the zone the
// widget renders in.
func (req calendarRequest) props(zone calendar.Zone) calendar.Props {
	loc := zone.Location()
	instant := func(d calendar.CalendarDate) time.Time {
		if d.IsZero() {
			return time.Time{}
		}
		return d.StartOfDay(loc)
	}
	return calendar.Props{
		Mode:           req.Mode,
		Loading:        req.Loading,
		Value:          instant(req.Value),
		StartValue:     instant(req.Start),
		EndValue:       instant(req.End),
		AvailableDates: req.Available,
		Timezone:       req.Timezone,
		MinValue:       instant(req.Min),
		MaxValue:       instant(req.Max),
		MinUnbounded:   req.MinNone,
	}
}

// withSelection returns a copy carrying sel as the start and end values.
func (req calendarRequest) withSelection(sel calendar.Selection) calendarRequest {
	req.Start = sel.Start
	req.End = sel.End
	return req
}

// withMonth returns a copy displaying the month of d. A zero d returns to the
// anchor month.
func (req calendarRequest) withMonth(d calendar.CalendarDate) calendarRequest {
	req.Month = d
	return req
}

// query encodes the request back into URL parameters, omitting defaults.
func (req calendarRequest) query() url.Values {
	q := url.Values{}
	if req.Mode != calendar.ModeSingle {
		q.Set("mode", req.Mode.String())
	}
	if req.Loading {
		q.Set("loading", "true")
	}
	setDay := func(key string, d calendar.CalendarDate) {
		if !d.IsZero() {
			q.Set(key, d.String())
		}
	}
	setDay("value", req.Value)
	setDay("start", req.Start)
	setDay("end", req.End)
	setDay("max", req.Max)
	if req.MinNone {
		q.Set("min", "none")
	} else {
		setDay("min", req.Min)
	}
	if len(req.Available) > 0 {
		keys := make([]string, len(req.Available))
		for i, d := range req.Available {
			keys[i] = d.String()
		}
		q.Set("available", strings.Join(keys, ","))
	}
	if req.Availability != "" {
		q.Set("availability", req.Availability)
	}
	if req.Timezone != "" {
		q.Set("tz", req.Timezone)
	}
	if !req.Month.IsZero() {
		q.Set("month", fmt.Sprintf("%04d-%02d", req.Month.Year, int(req.Month.Month)))
	}
	return q
}

// href returns path with the request encoded as its query string.
func (req calendarRequest) href(path string) string {
	if encoded := req.query().Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
