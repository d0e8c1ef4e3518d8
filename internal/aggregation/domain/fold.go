package aggregation

import (
	"fmt"
	"sort"
	"time"

	tariff "wattcompare/internal/tariff/domain"
)

// Fold rolls classified intervals into buckets of the given kind. Every
// interval lands in exactly one bucket, so the bucket energies always sum to
// the input energy. Periods with no intervals produce no bucket.
func Fold(intervals []tariff.ClassifiedInterval, kind WindowKind, loc *time.Location) ([]Bucket, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch kind {
	case WindowCalendarMonth:
		return foldMonthly(intervals, loc), nil
	case WindowRollingYear:
		return foldRollingYear(intervals, loc), nil
	default:
		return nil, fmt.Errorf("aggregation: unknown window kind %q", kind)
	}
}

func foldMonthly(intervals []tariff.ClassifiedInterval, loc *time.Location) []Bucket {
	byKey := make(map[string]*Bucket)
	for _, iv := range intervals {
		key := monthKey(iv.Start, loc)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Kind: WindowCalendarMonth, Key: key, PerLabelKWh: make(map[tariff.RateLabel]float64)}
			byKey[key] = b
		}
		b.PerLabelKWh[iv.Label] += iv.EnergyKWh
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// foldRollingYear assigns each interval to the trailing 365-day window that
// holds its local start date. Window 0 ends on the newest interval's local
// date; window k ends 365*k days earlier.
func foldRollingYear(intervals []tariff.ClassifiedInterval, loc *time.Location) []Bucket {
	if len(intervals) == 0 {
		return nil
	}

	var latest time.Time
	for _, iv := range intervals {
		if day := localMidnight(iv.Start, loc); day.After(latest) {
			latest = day
		}
	}

	byIndex := make(map[int]*Bucket)
	for _, iv := range intervals {
		day := localMidnight(iv.Start, loc)
		index := int(latest.Sub(day).Hours()/24) / 365
		b, ok := byIndex[index]
		if !ok {
			b = &Bucket{
				Kind:        WindowRollingYear,
				Key:         fmt.Sprintf("Y%d", index),
				Index:       index,
				PerLabelKWh: make(map[tariff.RateLabel]float64),
			}
			byIndex[index] = b
		}
		b.PerLabelKWh[iv.Label] += iv.EnergyKWh
	}

	out := make([]Bucket, 0, len(byIndex))
	for _, b := range byIndex {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// localMidnight normalizes t to midnight of its local calendar date, in UTC,
// so day arithmetic is immune to daylight-saving offsets.
func localMidnight(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}
