package metering

import (
	"fmt"
	"sort"
	"time"
)

// ReadingError ties a normalization failure to the reading that caused it.
type ReadingError struct {
	EndTime time.Time
	Err     error
}

// Error implements the error interface.
func (e ReadingError) Error() string {
	return fmt.Sprintf("reading ending %s: %v", e.EndTime.Format(time.RFC3339), e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is.
func (e ReadingError) Unwrap() error { return e.Err }

// NormalizeReading converts one raw reading into a normalized interval.
// The start is recovered with absolute arithmetic (End minus the declared
// duration), so a reading spanning a daylight-saving transition keeps its true
// length instead of picking up a wall-clock hour.
func NormalizeReading(r MeterReading) (NormalizedInterval, error) {
	if r.EndTime.IsZero() {
		return NormalizedInterval{}, ReadingError{EndTime: r.EndTime, Err: ErrZeroTimestamp}
	}
	dur, err := ParseNominalInterval(r.NominalInterval)
	if err != nil {
		return NormalizedInterval{}, ReadingError{EndTime: r.EndTime, Err: err}
	}
	if r.RawValue < 0 {
		return NormalizedInterval{}, ReadingError{EndTime: r.EndTime, Err: ErrNegativeEnergy}
	}

	var energy float64
	switch r.Unit {
	case UnitWatt:
		energy = r.RawValue * dur.Hours() / 1000
	case UnitWattHour:
		energy = r.RawValue / 1000
	default:
		return NormalizedInterval{}, ReadingError{EndTime: r.EndTime, Err: ErrUnknownUnit}
	}

	return NormalizedInterval{
		Start:     r.EndTime.Add(-dur),
		End:       r.EndTime,
		EnergyKWh: energy,
	}, nil
}

// Normalize converts a raw reading sequence into normalized intervals.
// Duplicate (start, end) pairs collapse to the last occurrence in input order.
// The first failing reading aborts the whole batch.
func Normalize(readings []MeterReading) ([]NormalizedInterval, error) {
	intervals, errs := normalize(readings, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return intervals, nil
}

// NormalizeTolerant converts what it can and reports the readings it skipped.
// The returned error slice holds one ReadingError per rejected record.
func NormalizeTolerant(readings []MeterReading) ([]NormalizedInterval, []error) {
	return normalize(readings, false)
}

func normalize(readings []MeterReading, failFast bool) ([]NormalizedInterval, []error) {
	type key struct {
		start int64
		end   int64
	}

	byKey := make(map[key]NormalizedInterval, len(readings))
	order := make([]key, 0, len(readings))
	var errs []error

	for _, r := range readings {
		iv, err := NormalizeReading(r)
		if err != nil {
			errs = append(errs, err)
			if failFast {
				return nil, errs
			}
			continue
		}
		k := key{start: iv.Start.UnixNano(), end: iv.End.UnixNano()}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = iv
	}

	out := make([]NormalizedInterval, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, errs
}
