package aggregation

import (
	"time"

	tariff "wattcompare/internal/tariff/domain"
)

// WindowKind selects the aggregation window family.
type WindowKind string

const (
	// WindowCalendarMonth buckets by local calendar month of the interval start.
	WindowCalendarMonth WindowKind = "CALENDAR_MONTH"
	// WindowRollingYear buckets by trailing 365-day windows anchored at the
	// newest interval's local date.
	WindowRollingYear WindowKind = "ROLLING_YEAR"
)

// IsValid reports whether the kind is known.
func (k WindowKind) IsValid() bool {
	return k == WindowCalendarMonth || k == WindowRollingYear
}

// Bucket is the per-period, per-label energy rollup. Buckets are created
// lazily as intervals fold in and are immutable once a run completes; an
// aggregation never outlives its comparison run.
type Bucket struct {
	Kind WindowKind
	// Key is "2006-01" for month buckets and "Y<n>" for rolling windows.
	Key string
	// Index orders rolling windows, newest first (window 0).
	Index       int
	PerLabelKWh map[tariff.RateLabel]float64
}

// Months returns the subscription proration span of the bucket.
func (b Bucket) Months() float64 {
	if b.Kind == WindowRollingYear {
		return 12
	}
	return 1
}

// TotalKWh sums the energy across all labels.
func (b Bucket) TotalKWh() float64 {
	var total float64
	for _, kwh := range b.PerLabelKWh {
		total += kwh
	}
	return total
}

// KWhFor returns the energy for a label, 0 when absent.
func (b Bucket) KWhFor(label tariff.RateLabel) float64 {
	return b.PerLabelKWh[label]
}

const monthKeyLayout = "2006-01"

// monthKey is the local calendar month of t.
func monthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(monthKeyLayout)
}
