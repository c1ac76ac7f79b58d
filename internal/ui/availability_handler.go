package ui

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jw6ventures/dyncal/internal/calendar"
	"github.com/jw6ventures/dyncal/internal/http/errors"
	"github.com/jw6ventures/dyncal/internal/store"
)

var setNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type availabilitySetView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DayCount    int       `json:"dayCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListAvailabilitySets returns every stored set without its dates.
func (h *Handler) ListAvailabilitySets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.sets.ListSets(r.Context())
	if err != nil {
		errors.InternalError(w, r, err, "failed to list availability sets")
		return
	}
	views := make([]availabilitySetView, 0, len(sets))
	for _, s := range sets {
		views = append(views, availabilitySetView{
			Name:        s.Name,
			Description: s.Description,
			DayCount:    s.DayCount,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type putAvailabilityRequest struct {
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

const maxAvailabilityBody = 1 << 20

// PutAvailabilitySet creates or replaces the set named in the path.
func (h *Handler) PutAvailabilitySet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !setNamePattern.MatchString(name) {
		errors.BadRequestError(w, r, fmt.Errorf("invalid set name %q", name), "invalid set name")
		return
	}

	var body putAvailabilityRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAvailabilityBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		errors.BadRequestError(w, r, err, "invalid JSON body")
		return
	}
	dates, err := calendar.ParseDateList(body.Dates)
	if err != nil {
		errors.BadRequestError(w, r, err, err.Error())
		return
	}

	set := store.AvailabilitySet{
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		Dates:       dates,
	}
	if err := h.sets.ReplaceSet(r.Context(), set); err != nil {
		errors.InternalError(w, r, err, "failed to store availability set")
		return
	}
	errors.LogInfo(r, fmt.Sprintf("availability set %s replaced with %d dates", name, len(dates)))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAvailabilitySet removes the set named in the path.
func (h *Handler) DeleteAvailabilitySet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.sets.DeleteSet(r.Context(), name); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFoundError(w, r, "availability set not found")
			return
		}
		errors.InternalError(w, r, err, "failed to delete availability set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
