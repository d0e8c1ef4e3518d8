package metering

import "time"

// NormalizedInterval is a gap-tolerant, unit-free measurement interval.
// Invariants: End.Sub(Start) equals the reading's declared duration and
// EnergyKWh is never negative.
type NormalizedInterval struct {
	Start     time.Time
	End       time.Time
	EnergyKWh float64
}

// Duration returns the interval length.
func (n NormalizedInterval) Duration() time.Duration {
	return n.End.Sub(n.Start)
}

// Midpoint returns the instant halfway through the interval.
// Classification is anchored on the midpoint so that a rate-window boundary
// splitting an interval does not bias the result toward either side.
func (n NormalizedInterval) Midpoint() time.Time {
	return n.Start.Add(n.End.Sub(n.Start) / 2)
}
