// Package clock provides the serving clock every window and cutoff check
// reads. All schedule state is keyed by service dates in one fixed timezone,
// regardless of where the caller or the host happens to be.
package clock

import (
	"fmt"
	"time"

	"github.com/tiffinlabs/dabba/internal/config"
	"go.uber.org/fx"
)

// Module provides the serving clock.
var Module = fx.Provide(NewServingClock)

type Clock interface {
	Now() time.Time
}

// ServingClock reads wall-clock time in the fixed service timezone.
type ServingClock struct {
	loc *time.Location
}

func NewServingClock(cfg config.Config) (Clock, error) {
	loc, err := time.LoadLocation(cfg.ServiceTimezone)
	if err != nil {
		return nil, fmt.Errorf("load service timezone %q: %w", cfg.ServiceTimezone, err)
	}
	return &ServingClock{loc: loc}, nil
}

func (c *ServingClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// ServiceDate truncates t to midnight in t's own location. Two instants on
// the same service day always map to the same value.
func ServiceDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Today returns the current service date.
func Today(c Clock) time.Time {
	return ServiceDate(c.Now())
}

// Tomorrow returns the service date after today.
func Tomorrow(c Clock) time.Time {
	return Today(c).AddDate(0, 0, 1)
}

// InWindow reports whether date falls inside the two-day visibility window
// (today or tomorrow). date is compared by service day only.
func InWindow(c Clock, date time.Time) bool {
	d := ServiceDate(date.In(c.Now().Location()))
	return d.Equal(Today(c)) || d.Equal(Tomorrow(c))
}

// IsToday reports whether date is the current service date.
func IsToday(c Clock, date time.Time) bool {
	return ServiceDate(date.In(c.Now().Location())).Equal(Today(c))
}

// BeforeCutoff reports whether the current time is strictly before the given
// local cutoff hour. At exactly the cutoff instant the deadline has passed.
func BeforeCutoff(c Clock, cutoffHour int) bool {
	now := c.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, 0, 0, 0, now.Location())
	return now.Before(cutoff)
}
