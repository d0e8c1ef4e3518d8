package tempo

import "time"

// Poly is a quadratic threshold over the normalized demand signal:
// threshold = A·x² + B·x + C. The coefficients are external tuning
// parameters, never derived by the engine.
type Poly struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// Eval evaluates the polynomial at x.
func (p Poly) Eval(x float64) float64 {
	return p.A*x*x + p.B*x + p.C
}

// Thresholds holds the two classification boundaries.
type Thresholds struct {
	WhiteBoundary Poly `yaml:"white_boundary"`
	RedBoundary   Poly `yaml:"red_boundary"`
}

// Forecaster predicts the likely color of near-future days from the remaining
// season quotas and an external demand-forecast signal.
type Forecaster struct {
	quota      SeasonQuota
	thresholds Thresholds
	seasonEnd  time.Time
}

// NewForecaster builds a forecaster over an immutable quota snapshot.
// seasonEnd is the last day of the current season (seasons run Sept-Aug).
func NewForecaster(quota SeasonQuota, thresholds Thresholds, seasonEnd time.Time) *Forecaster {
	return &Forecaster{quota: quota, thresholds: thresholds, seasonEnd: seasonEnd}
}

// heatingSeason reports whether the month is in the Nov-Mar heating season.
// Days outside it are deterministically blue.
func heatingSeason(m time.Month) bool {
	return m >= time.November || m <= time.March
}

// Forecast classifies a future day. normalizedConsumption is clamped to
// [0, 1] before the thresholds are applied.
func (f *Forecaster) Forecast(day DayKey, normalizedConsumption float64) (Entry, error) {
	date, err := day.Time()
	if err != nil {
		return Entry{}, err
	}
	daysRemaining := int(f.seasonEnd.Sub(date).Hours() / 24)
	if daysRemaining < 0 {
		return Entry{}, ErrOutsideSeason
	}

	confidence := ConfidenceLow
	switch {
	case daysRemaining <= 1:
		confidence = ConfidenceHigh
	case daysRemaining <= 3:
		confidence = ConfidenceMedium
	}

	entry := Entry{Day: day, Known: false, Confidence: confidence}

	// Weekends are always blue, a fixed rule of the tariff family.
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		entry.Color = ColorBlue
		return entry, nil
	}
	if !heatingSeason(date.Month()) {
		entry.Color = ColorBlue
		return entry, nil
	}

	x := clamp01(normalizedConsumption)
	switch {
	case x > f.thresholds.RedBoundary.Eval(x) && f.quota.RemainingFor(ColorRed) > 0:
		entry.Color = ColorRed
	case x > f.thresholds.WhiteBoundary.Eval(x) && f.quota.RemainingFor(ColorWhite) > 0:
		entry.Color = ColorWhite
	default:
		// Blue quota is treated as inexhaustible.
		entry.Color = ColorBlue
	}
	return entry, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
