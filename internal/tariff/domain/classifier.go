package tariff

import (
	"fmt"
	"time"

	metering "wattcompare/internal/metering/domain"
	tempo "wattcompare/internal/tempo/domain"
)

// ClassifiedInterval is a normalized interval with its resolved rate bucket.
type ClassifiedInterval struct {
	metering.NormalizedInterval
	Label RateLabel
}

// HouseholdWindows is the per-household (not per-offer) window configuration
// consumed by the window-based families.
type HouseholdWindows struct {
	// OffPeak lists the off-peak windows of the meter contract, e.g. 22:00-06:00.
	OffPeak []Window `yaml:"offpeak"`
	// WeekendNight is the nightly off-peak window of weekend-night tariffs.
	WeekendNight Window `yaml:"weekend_night"`
}

// Classifier assigns each interval to exactly one rate bucket of an offer's
// family. Classification is anchored on the interval midpoint in household
// local time; window starts are inclusive, ends exclusive.
type Classifier struct {
	windows  HouseholdWindows
	loc      *time.Location
	calendar *tempo.Calendar
}

// NewClassifier builds a classifier. calendar may be nil when no
// color-calendar offers will be classified.
func NewClassifier(windows HouseholdWindows, loc *time.Location, calendar *tempo.Calendar) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{windows: windows, loc: loc, calendar: calendar}
}

// Classify resolves the rate label of one interval under the given pricing.
func (c *Classifier) Classify(iv metering.NormalizedInterval, pricing Pricing) (RateLabel, error) {
	mid := iv.Midpoint().In(c.loc)
	day := tempo.NewDayKey(mid)

	switch p := pricing.(type) {
	case BasePricing:
		return LabelBase, nil

	case PeakOffPeakPricing:
		if InAnyWindow(mid, c.windows.OffPeak) {
			return LabelOffPeak, nil
		}
		return LabelPeak, nil

	case ColorPricing:
		if c.calendar == nil {
			return "", ErrNoCalendar
		}
		entry, err := c.calendar.Lookup(day)
		if err != nil {
			return "", err
		}
		return colorLabel(entry.Color, InAnyWindow(mid, c.windows.OffPeak))

	case SpecialPeakDaysPricing:
		if p.PeakDays.Contains(day) {
			return LabelPeakDay, nil
		}
		return LabelNormal, nil

	case SeasonalPricing:
		if p.PeakDays.Contains(day) {
			return LabelPeakDay, nil
		}
		offPeak := InAnyWindow(mid, c.windows.OffPeak)
		if p.isWinter(mid.Month()) {
			if offPeak {
				return LabelWinterOffPeak, nil
			}
			return LabelWinterPeak, nil
		}
		if offPeak {
			return LabelSummerOffPeak, nil
		}
		return LabelSummerPeak, nil

	case WeekendPricing:
		if isWeekend(mid) {
			return LabelOffPeak, nil
		}
		return LabelPeak, nil

	case WeekendNightPricing:
		if isWeekend(mid) || c.windows.WeekendNight.Contains(mid) {
			return LabelOffPeak, nil
		}
		return LabelPeak, nil

	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedFamily, pricing)
	}
}

// ClassifyAll classifies every interval, failing on the first error.
func (c *Classifier) ClassifyAll(intervals []metering.NormalizedInterval, pricing Pricing) ([]ClassifiedInterval, error) {
	out := make([]ClassifiedInterval, 0, len(intervals))
	for _, iv := range intervals {
		label, err := c.Classify(iv, pricing)
		if err != nil {
			return nil, fmt.Errorf("interval starting %s: %w", iv.Start.Format(time.RFC3339), err)
		}
		out = append(out, ClassifiedInterval{NormalizedInterval: iv, Label: label})
	}
	return out, nil
}

// ClassifyAllTolerant classifies what it can and reports skipped intervals.
func (c *Classifier) ClassifyAllTolerant(intervals []metering.NormalizedInterval, pricing Pricing) ([]ClassifiedInterval, []error) {
	out := make([]ClassifiedInterval, 0, len(intervals))
	var errs []error
	for _, iv := range intervals {
		label, err := c.Classify(iv, pricing)
		if err != nil {
			errs = append(errs, fmt.Errorf("interval starting %s: %w", iv.Start.Format(time.RFC3339), err))
			continue
		}
		out = append(out, ClassifiedInterval{NormalizedInterval: iv, Label: label})
	}
	return out, errs
}

func colorLabel(color tempo.Color, offPeak bool) (RateLabel, error) {
	switch color {
	case tempo.ColorBlue:
		if offPeak {
			return LabelBlueOffPeak, nil
		}
		return LabelBluePeak, nil
	case tempo.ColorWhite:
		if offPeak {
			return LabelWhiteOffPeak, nil
		}
		return LabelWhitePeak, nil
	case tempo.ColorRed:
		if offPeak {
			return LabelRedOffPeak, nil
		}
		return LabelRedPeak, nil
	default:
		return "", fmt.Errorf("%w: color %q", ErrUnsupportedFamily, color)
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
