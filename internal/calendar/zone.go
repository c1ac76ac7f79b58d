package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"
)

// Clock supplies the current instant.
type Clock func() time.Time

// SystemClock is the wall clock of the running process.
func SystemClock() time.Time { return time.Now() }

// Zone converts instants to wall-clock dates in a named timezone. A Zone that
// failed to load converts without any adjustment.
type Zone struct {
	name string
	loc  *time.Location
}

// Where the host records its zone when TZ is unset.
var (
	localtimeLink = "/etc/localtime"
	timezoneFile  = "/etc/timezone"
)

// GuessTimezone returns the IANA name of the host timezone: TZ when set, then
// the zone /etc/localtime links to, then /etc/timezone, falling back to UTC.
func GuessTimezone() string {
	return guessTimezone(os.Getenv("TZ"), time.Local.String(), localtimeLink, timezoneFile)
}

// guessTimezone resolves the zone name. localName is time.Local's name, which
// Go reports as "Local" when it read /etc/localtime.
func guessTimezone(tz, localName, link, file string) string {
	if tz = strings.TrimPrefix(strings.TrimSpace(tz), ":"); validZone(tz) {
		return tz
	}
	if localName != "Local" && validZone(localName) {
		return localName
	}
	if target, err := os.Readlink(link); err == nil {
		if i := strings.LastIndex(target, "zoneinfo/"); i >= 0 {
			name := target[i+len("zoneinfo/"):]
			name = strings.TrimPrefix(strings.TrimPrefix(name, "posix/"), "right/")
			if validZone(name) {
				return name
			}
		}
	}
	if data, err := os.ReadFile(file); err == nil {
		if name := strings.TrimSpace(string(data)); validZone(name) {
			return name
		}
	}
	return "UTC"
}

func validZone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// LoadZone resolves name, or the guessed process zone when name is empty.
// The returned Zone is always usable; when err is non-nil it is the fallback
// zone and err describes why name could not be loaded.
func LoadZone(name string) (Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = GuessTimezone()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{name: name}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return Zone{name: name, loc: loc}, nil
}

// MustZone is LoadZone for names known to be valid, such as in tests.
func MustZone(name string) Zone {
	z, err := LoadZone(name)
	if err != nil {
		panic(err)
	}
	return z
}

// Name returns the requested timezone name.
func (z Zone) Name() string { return z.name }

// Fallback reports whether z could not load its timezone.
func (z Zone) Fallback() bool { return z.loc == nil }

// Location returns the zone's location; the fallback zone uses time.Local.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.Local
	}
	return z.loc
}

// Date returns the wall-clock date of t in the zone. The fallback zone uses
// t's own wall clock for every instant, min and max included, rather than
// substituting the current date.
func (z Zone) Date(t time.Time) CalendarDate {
	if z.loc == nil {
		return DateOf(t)
	}
	return DateOf(t.In(z.loc))
}

// Today returns the zone's date at the clock's current instant.
func (z Zone) Today(clock Clock) CalendarDate {
	if clock == nil {
		clock = SystemClock
	}
	return z.Date(clock())
}
