package tempo

import (
	"fmt"
	"time"
)

// DemandSignal supplies the normalized national demand forecast for a future
// day. The engine treats the value as an opaque float in [0, 1].
type DemandSignal interface {
	Normalized(day DayKey) (float64, bool)
}

// SignalMap is a DemandSignal backed by a plain map.
type SignalMap map[DayKey]float64

// Normalized implements DemandSignal.
func (m SignalMap) Normalized(day DayKey) (float64, bool) {
	v, ok := m[day]
	return v, ok
}

// Calendar resolves a day to its color. Days up to today must be in the
// ledger; future days are delegated to the forecaster.
type Calendar struct {
	ledger     Ledger
	forecaster *Forecaster
	signal     DemandSignal
	clock      Clock
}

// NewCalendar wires a calendar from its immutable per-run snapshots.
// forecaster and signal may be nil when no forecasting is needed; lookups of
// future days then fail with ErrUnknownCalendarDay. A forecast needs a signal
// value for the day: a missing feed fails the lookup rather than defaulting
// to zero demand.
func NewCalendar(ledger Ledger, forecaster *Forecaster, signal DemandSignal, clock Clock) *Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{ledger: ledger, forecaster: forecaster, signal: signal, clock: clock}
}

// Lookup resolves the entry for a local calendar day.
func (c *Calendar) Lookup(day DayKey) (Entry, error) {
	if color, ok := c.ledger.ColorOf(day); ok {
		return Entry{Day: day, Color: color, Known: true, Confidence: ConfidenceKnown}, nil
	}

	today := NewDayKey(c.clock.Now())
	if day <= today {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownCalendarDay, day)
	}
	if c.forecaster == nil {
		return Entry{}, fmt.Errorf("%w: %s (no forecaster)", ErrUnknownCalendarDay, day)
	}

	if c.signal == nil {
		return Entry{}, fmt.Errorf("%w: %s (no demand signal)", ErrUnknownCalendarDay, day)
	}
	x, ok := c.signal.Normalized(day)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s (no demand signal)", ErrUnknownCalendarDay, day)
	}
	return c.forecaster.Forecast(day, x)
}

// SeasonEnd returns the last day of the one-year season starting at
// seasonStart, e.g. 1 September 2025 -> 31 August 2026.
func SeasonEnd(seasonStart time.Time) time.Time {
	return seasonStart.AddDate(1, 0, -1)
}
