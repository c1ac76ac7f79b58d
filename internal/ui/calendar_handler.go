package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jw6ventures/dyncal/internal/calendar"
	"github.com/jw6ventures/dyncal/internal/http/errors"
	"github.com/jw6ventures/dyncal/internal/metrics"
)

type dayView struct {
	Key       string   `json:"key"`
	Day       int      `json:"day"`
	Classes   []string `json:"classes"`
	Disabled  bool     `json:"disabled"`
	Clickable bool     `json:"clickable"`
}

type selectionView struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// monthView is the rendered month shared by the HTML page and the JSON API.
type monthView struct {
	Mode      string          `json:"mode"`
	Timezone  string          `json:"timezone"`
	Today     string          `json:"today"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	MonthName string          `json:"monthName"`
	Loading   bool            `json:"loading"`
	Labels    [7]string       `json:"labels"`
	Offset    int             `json:"offset"`
	Days      []dayView       `json:"days"`
	Selection selectionView   `json:"selection"`
	Range     *calendar.Range `json:"range,omitempty"`
}

func newMonthView(wg *widget) monthView {
	grid := wg.cal.Grid()
	sel := wg.cal.Selection()
	view := monthView{
		Mode:      wg.cal.Mode().String(),
		Timezone:  wg.cal.Zone().Name(),
		Today:     wg.cal.Today().String(),
		Year:      grid.Month.Year,
		Month:     wg.month,
		MonthName: grid.Month.MonthName(),
		Loading:   wg.req.Loading,
		Labels:    grid.Labels,
		Offset:    grid.Offset,
		Days:      make([]dayView, 0, len(grid.Cells)),
		Selection: selectionView{Start: sel.Start.String(), End: sel.End.String()},
	}
	for _, cell := range grid.Cells {
		view.Days = append(view.Days, dayView{
			Key:       cell.Key,
			Day:       cell.Date.Day,
			Classes:   cell.Classes(),
			Disabled:  cell.Disabled,
			Clickable: cell.Clickable(),
		})
	}
	if rg := wg.cal.Report(); !rg.End.IsZero() {
		view.Range = &rg
	}
	return view
}

type hiddenField struct {
	Name  string
	Value string
}

func hiddenFields(q url.Values) []hiddenField {
	var fields []hiddenField
	for _, key := range []string{"mode", "loading", "value", "start", "end", "available", "availability", "tz", "min", "max", "month"} {
		if v := q.Get(key); v != "" {
			fields = append(fields, hiddenField{Name: key, Value: v})
		}
	}
	return fields
}

// Calendar renders the widget page.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	req, err := parseCalendarRequest(r.URL.Query())
	if err != nil {
		errors.BadRequestError(w, r, err, fmt.Sprintf("invalid calendar parameters: %v", err))
		return
	}
	wg, err := h.buildWidget(r, req)
	if err != nil {
		h.widgetError(w, r, err)
		return
	}

	displayed := wg.cal.Displayed()
	data := h.withFlash(r, map[string]any{
		"Title":     "Calendar",
		"View":      newMonthView(wg),
		"YearText":  displayed.YearString(),
		"Blanks":    wg.cal.Grid().Blanks(),
		"PrevHref":  req.withMonth(displayed.AddMonths(-1)).href("/calendar"),
		"NextHref":  req.withMonth(displayed.AddMonths(1)).href("/calendar"),
		"ResetHref": req.withMonth(calendar.CalendarDate{}).href("/calendar"),
		"Hidden":    hiddenFields(req.query()),
	})
	h.render(w, r, "calendar.html", data)
}

// SelectDay applies a day click posted from the widget page and redirects
// back to the page with the resulting selection.
func (h *Handler) SelectDay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/calendar", url.Values{"error": {"invalid form"}})
		return
	}
	req, err := parseCalendarRequest(r.PostForm)
	if err != nil {
		h.redirect(w, r, "/calendar", url.Values{"error": {"invalid calendar parameters"}})
		return
	}
	day, err := calendar.ParseDate(strings.TrimSpace(r.PostFormValue("day")))
	if err != nil {
		q := req.query()
		q.Set("error", "invalid day")
		h.redirect(w, r, "/calendar", q)
		return
	}

	wg, err := h.buildWidget(r, req)
	if err != nil {
		h.widgetError(w, r, err)
		return
	}
	changed := wg.cal.Click(day)
	metrics.ObserveSelection(wg.cal.Mode().String(), changed)
	if changed {
		req = req.withSelection(wg.cal.Selection())
	}
	h.redirect(w, r, "/calendar", req.query())
}

// CalendarJSON returns the month view as JSON.
func (h *Handler) CalendarJSON(w http.ResponseWriter, r *http.Request) {
	req, err := parseCalendarRequest(r.URL.Query())
	if err != nil {
		errors.BadRequestError(w, r, err, fmt.Sprintf("invalid calendar parameters: %v", err))
		return
	}
	wg, err := h.buildWidget(r, req)
	if err != nil {
		h.widgetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMonthView(wg))
}

// selectRequest is the JSON body of a day click. Every field but Day mirrors
// the query parameters of CalendarJSON.
type selectRequest struct {
	Day          string   `json:"day"`
	Mode         string   `json:"mode"`
	Loading      bool     `json:"loading"`
	Value        string   `json:"value"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Available    []string `json:"available"`
	Availability string   `json:"availability"`
	Timezone     string   `json:"tz"`
	Min          string   `json:"min"`
	Max          string   `json:"max"`
	Month        string   `json:"month"`
}

func (s selectRequest) values() url.Values {
	q := url.Values{}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set("mode", s.Mode)
	if s.Loading {
		q.Set("loading", "true")
	}
	set("value", s.Value)
	set("start", s.Start)
	set("end", s.End)
	set("available", strings.Join(s.Available, ","))
	set("availability", s.Availability)
	set("tz", s.Timezone)
	set("min", s.Min)
	set("max", s.Max)
	set("month", s.Month)
	return q
}

type selectResponse struct {
	Changed   bool            `json:"changed"`
	Selection selectionView   `json:"selection"`
	Range     *calendar.Range `json:"range"`
	Month     int             `json:"month"`
}

const maxSelectBody = 64 << 10

// SelectDayJSON applies a day click and reports the range passed to the
// change callback, or a null range when the click was ignored.
func (h *Handler) SelectDayJSON(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		errors.BadRequestError(w, r, err, "invalid JSON body")
		return
	}
	req, err := parseCalendarRequest(body.values())
	if err != nil {
		errors.BadRequestError(w, r, err, fmt.Sprintf("invalid calendar parameters: %v", err))
		return
	}
	day, err := calendar.ParseDate(strings.TrimSpace(body.Day))
	if err != nil {
		errors.BadRequestError(w, r, err, "invalid day")
		return
	}

	wg, err := h.buildWidget(r, req)
	if err != nil {
		h.widgetError(w, r, err)
		return
	}
	changed := wg.cal.Click(day)
	metrics.ObserveSelection(wg.cal.Mode().String(), changed)

	sel := wg.cal.Selection()
	resp := selectResponse{
		Changed:   changed,
		Selection: selectionView{Start: sel.Start.String(), End: sel.End.String()},
		Month:     wg.month,
	}
	if n := len(wg.changes); n > 0 {
		resp.Range = &wg.changes[n-1]
	}
	writeJSON(w, http.StatusOK, resp)
}
