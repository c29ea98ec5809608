package clock

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/strftime"
)

const (
	// DefaultZone is the reference zone for all timestamps.
	DefaultZone = "UTC"

	// DefaultLayout is the strftime display layout: time, date, zone.
	DefaultLayout = "%X %x %Z"
)

// lastUID is shared by every Clock so that two clocks in one process never
// hand out the same UID.
var lastUID atomic.Int64

// UID identifies a single transfer. It is a nanosecond Unix timestamp that
// has been forced to be strictly increasing within the process.
type UID int64

// String renders the UID as seconds with a fixed nine-digit fraction, so
// UIDs from the same era sort lexically in issue order.
func (u UID) String() string {
	return fmt.Sprintf("%d.%09d", int64(u)/int64(time.Second), int64(u)%int64(time.Second))
}

// Time returns the instant the UID was derived from.
func (u UID) Time() time.Time {
	return time.Unix(0, int64(u))
}

// ParseUID parses the output of UID.String.
func ParseUID(s string) (UID, error) {
	secs, frac, ok := strings.Cut(s, ".")
	if !ok || len(frac) != 9 {
		return 0, fmt.Errorf("invalid uid %q", s)
	}
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uid %q: %w", s, err)
	}
	nsec, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uid %q: %w", s, err)
	}
	return UID(sec*int64(time.Second) + nsec), nil
}

// MarshalText implements encoding.TextMarshaler.
func (u UID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UID) UnmarshalText(text []byte) error {
	parsed, err := ParseUID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Config contains configuration for a Clock.
type Config struct {
	// Zone is an IANA zone name used for every timestamp.
	// Default: "UTC"
	Zone string

	// Layout is the strftime pattern used by Format.
	// Default: "%X %x %Z"
	Layout string
}

// DefaultConfig returns the default clock configuration.
func DefaultConfig() *Config {
	return &Config{
		Zone:   DefaultZone,
		Layout: DefaultLayout,
	}
}

// Option configures a Clock.
type Option func(*Clock)

// WithSource replaces the wall clock. Intended for tests.
func WithSource(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// Clock issues UIDs and zone-normalised timestamps.
type Clock struct {
	loc    *time.Location
	layout *strftime.Strftime
	now    func() time.Time
}

// New creates a Clock from the given configuration.
func New(cfg *Config, opts ...Option) (*Clock, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	zone := cfg.Zone
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid clock zone %q: %w", zone, err)
	}

	pattern := cfg.Layout
	if pattern == "" {
		pattern = DefaultLayout
	}
	layout, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid clock layout %q: %w", pattern, err)
	}

	c := &Clock{
		loc:    loc,
		layout: layout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NextUID returns a UID that is strictly greater than every UID previously
// issued in this process. Two calls within the same clock tick still differ.
func (c *Clock) NextUID() UID {
	for {
		last := lastUID.Load()
		next := c.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if lastUID.CompareAndSwap(last, next) {
			return UID(next)
		}
	}
}

// Now returns the current time in the reference zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Format renders t in the reference zone using the display layout.
func (c *Clock) Format(t time.Time) string {
	return c.layout.FormatString(t.In(c.loc))
}

// Location returns the reference zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}
