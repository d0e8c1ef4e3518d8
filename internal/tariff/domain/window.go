package tariff

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day with minute precision, e.g. "22:00".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MinuteOfDay returns minutes since local midnight.
func (c ClockTime) MinuteOfDay() int { return c.Hour*60 + c.Minute }

// String formats as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// UnmarshalYAML accepts "HH:MM".
func (c *ClockTime) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is a daily clock-time window in household-local time. The start is
// inclusive and the end exclusive. A window whose end is at or before its
// start wraps past midnight, e.g. "23:00-06:00".
type Window struct {
	Start ClockTime `yaml:"start"`
	End   ClockTime `yaml:"end"`
}

// Contains reports whether the local clock time of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	start := w.Start.MinuteOfDay()
	end := w.End.MinuteOfDay()
	if start < end {
		return minute >= start && minute < end
	}
	// Wraps midnight.
	return minute >= start || minute < end
}

// InAnyWindow reports whether t falls inside any of the windows.
func InAnyWindow(t time.Time, windows []Window) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
