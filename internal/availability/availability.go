// Package availability resolves named availability sets, the stored form of a
// calendar's allow-list of selectable days.
package availability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jw6ventures/dyncal/internal/calendar"
	"github.com/jw6ventures/dyncal/internal/store"
)

// ErrUnknownSet is returned when no source knows the requested set.
var ErrUnknownSet = errors.New("unknown availability set")

// Source looks up the days of a named set within [from, to].
type Source interface {
	Dates(ctx context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error)
}

// Chain consults sources in order and returns the first that knows the set.
type Chain []Source

func (c Chain) Dates(ctx context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		dates, err := src.Dates(ctx, name, from, to)
		if errors.Is(err, ErrUnknownSet) {
			continue
		}
		return dates, err
	}
	return nil, ErrUnknownSet
}

// FileSource serves sets loaded from a YAML document of the form
//
//	sets:
//	  clinic:
//	    description: Clinic opening days
//	    dates: [2024-01-10, 2024-01-12]
type FileSource struct {
	sets map[string][]calendar.CalendarDate
}

type fileDoc struct {
	Sets map[string]struct {
		Description string   `yaml:"description"`
		Dates       []string `yaml:"dates"`
	} `yaml:"sets"`
}

// LoadFile reads a FileSource from path.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read availability file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a FileSource from YAML.
func ParseFile(data []byte) (*FileSource, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode availability file: %w", err)
	}
	fs := &FileSource{sets: make(map[string][]calendar.CalendarDate, len(doc.Sets))}
	for name, set := range doc.Sets {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("availability set with empty name")
		}
		dates, err := calendar.ParseDateList(set.Dates)
		if err != nil {
			return nil, fmt.Errorf("availability set %s: %w", name, err)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		fs.sets[name] = dates
	}
	return fs, nil
}

// Names lists the sets in the file.
func (f *FileSource) Names() []string {
	names := make([]string, 0, len(f.sets))
	for name := range f.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *FileSource) Dates(_ context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error) {
	dates, ok := f.sets[name]
	if !ok {
		return nil, ErrUnknownSet
	}
	var out []calendar.CalendarDate
	for _, d := range dates {
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// StoreSource serves sets persisted in PostgreSQL.
type StoreSource struct {
	Repo store.AvailabilityRepository
}

func (s StoreSource) Dates(ctx context.Context, name string, from, to calendar.CalendarDate) ([]calendar.CalendarDate, error) {
	dates, err := s.Repo.ListDates(ctx, name, from, to)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownSet
	}
	return dates, err
}
