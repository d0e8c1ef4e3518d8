package tempo

import "time"

// Color is the label of a color-calendar day, ordered cheapest first.
type Color string

const (
	ColorBlue  Color = "BLUE"
	ColorWhite Color = "WHITE"
	ColorRed   Color = "RED"
)

// IsValid reports whether the color is part of the calendar alphabet.
func (c Color) IsValid() bool {
	return c == ColorBlue || c == ColorWhite || c == ColorRed
}

// DayKey is the canonical representation of a local calendar date.
type DayKey string

const dayKeyLayout = "2006-01-02"

// NewDayKey builds the key for the local date of t.
func NewDayKey(t time.Time) DayKey {
	return DayKey(t.Format(dayKeyLayout))
}

// Time parses the key back into a UTC midnight instant.
func (k DayKey) Time() (time.Time, error) {
	t, err := time.Parse(dayKeyLayout, string(k))
	if err != nil {
		return time.Time{}, ErrInvalidDayKey
	}
	return t, nil
}

// String returns the raw string for storage.
func (k DayKey) String() string { return string(k) }

// Confidence qualifies a calendar entry. It is advisory only; cost
// computation always uses the resolved color, never the confidence.
type Confidence string

const (
	ConfidenceKnown  Confidence = "KNOWN"
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Entry is one resolved calendar day.
type Entry struct {
	Day        DayKey
	Color      Color
	Known      bool
	Confidence Confidence
}
