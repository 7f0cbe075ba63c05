package bookings

import (
	"strings"
	"time"
)

// InstantLayout is the wire format of scheduled instants.
const InstantLayout = "2006-01-02 15:04"

// ParseInstant reads raw in loc.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(InstantLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, ErrMalformedTime.Wrap(err)
	}
	return t, nil
}

// Validate fails unless candidate is strictly after now.
func Validate(candidate, now time.Time) error {
	if !candidate.After(now) {
		return ErrPastTime
	}
	return nil
}

// ClockGuard binds the booking location and the clock.
type ClockGuard struct {
	loc *time.Location
	now func() time.Time
}

func NewClockGuard(loc *time.Location, now func() time.Time) *ClockGuard {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ClockGuard{loc: loc, now: now}
}

// Check parses raw and requires it to be in the future.
func (g *ClockGuard) Check(raw string) (time.Time, error) {
	t, err := ParseInstant(raw, g.loc)
	if err != nil {
		return time.Time{}, err
	}
	if err := Validate(t, g.now()); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func (g *ClockGuard) Now() time.Time { return g.now() }

func (g *ClockGuard) Location() *time.Location { return g.loc }

// Format renders t in the booking location using InstantLayout.
func (g *ClockGuard) Format(t time.Time) string {
	return t.In(g.loc).Format(InstantLayout)
}
