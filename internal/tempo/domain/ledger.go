package tempo

import "time"

// SeasonQuota tracks the legally fixed number of days per color remaining in
// the current season. It is mutated only by the ledger; the forecaster reads
// it as an immutable snapshot.
type SeasonQuota struct {
	SeasonID  string
	Remaining map[Color]int
}

// RemainingFor returns the remaining quota for a color, 0 when untracked.
func (q SeasonQuota) RemainingFor(c Color) int {
	return q.Remaining[c]
}

// Ledger is an immutable snapshot of the historical (date, color) record.
// Known entries always win over forecasts and are never overwritten.
type Ledger struct {
	entries map[DayKey]Color
	quota   SeasonQuota
}

// NewLedger builds a snapshot from the given entries and quota.
// The entries map is copied; callers keep ownership of their map.
func NewLedger(entries map[DayKey]Color, quota SeasonQuota) Ledger {
	copied := make(map[DayKey]Color, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return Ledger{entries: copied, quota: quota}
}

// ColorOf returns the recorded color for a day, if any.
func (l Ledger) ColorOf(day DayKey) (Color, bool) {
	c, ok := l.entries[day]
	return c, ok
}

// Quota returns the season quota snapshot.
func (l Ledger) Quota() SeasonQuota { return l.quota }

// Len returns the number of recorded days.
func (l Ledger) Len() int { return len(l.entries) }

// Clock abstracts "today" so calendars are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
