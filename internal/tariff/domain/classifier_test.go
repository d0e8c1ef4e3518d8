package tariff

import (
	"errors"
	"testing"
	"time"

	metering "wattcompare/internal/metering/domain"
	tempo "wattcompare/internal/tempo/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func interval(start string, d time.Duration) metering.NormalizedInterval {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return metering.NormalizedInterval{Start: t, End: t.Add(d), EnergyKWh: 1}
}

func offPeakWindows() HouseholdWindows {
	return HouseholdWindows{
		OffPeak:      []Window{{Start: ClockTime{23, 0}, End: ClockTime{6, 0}}},
		WeekendNight: Window{Start: ClockTime{23, 0}, End: ClockTime{6, 0}},
	}
}

func TestClassify_Base(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	label, err := c.Classify(interval("2025-06-10T12:00:00Z", 30*time.Minute), BasePricing{KWhPrice: 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelBase {
		t.Errorf("got %s, expected %s", label, LabelBase)
	}
}

// Pins the canonical boundary rule: an interval is off-peak iff its midpoint
// is inside a window, and a window's start minute belongs to the window.
func TestClassify_MidpointOnWindowStart(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	pricing := PeakOffPeakPricing{Peak: 0.2, OffPeak: 0.15}

	// [22:45, 23:15): midpoint 23:00 is exactly the window start -> off-peak.
	label, err := c.Classify(interval("2025-06-10T22:45:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelOffPeak {
		t.Errorf("midpoint on window start: got %s, expected %s", label, LabelOffPeak)
	}

	// [22:30, 23:00): midpoint 22:45 is before the window -> peak.
	label, err = c.Classify(interval("2025-06-10T22:30:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelPeak {
		t.Errorf("midpoint before window: got %s, expected %s", label, LabelPeak)
	}

	// [05:45, 06:15): midpoint 06:00 is exactly the window end -> peak.
	label, err = c.Classify(interval("2025-06-10T05:45:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelPeak {
		t.Errorf("midpoint on window end: got %s, expected %s", label, LabelPeak)
	}
}

func TestClassify_Determinism(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	iv := interval("2025-06-10T22:45:00Z", 30*time.Minute)
	pricing := PeakOffPeakPricing{Peak: 0.2, OffPeak: 0.15}
	first, err := c.Classify(iv, pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Classify(iv, pricing)
		if err != nil || again != first {
			t.Fatalf("classification not deterministic: %s vs %s (err %v)", first, again, err)
		}
	}
}

func TestClassify_ColorCalendar(t *testing.T) {
	ledger := tempo.NewLedger(map[tempo.DayKey]tempo.Color{
		"2026-01-12": tempo.ColorRed,
		"2026-01-13": tempo.ColorWhite,
	}, tempo.SeasonQuota{})
	clock := fixedClock{now: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)}
	cal := tempo.NewCalendar(ledger, nil, nil, clock)
	c := NewClassifier(offPeakWindows(), time.UTC, cal)
	pricing := ColorPricing{Prices: map[RateLabel]float64{
		LabelBluePeak: 0.16, LabelBlueOffPeak: 0.13,
		LabelWhitePeak: 0.19, LabelWhiteOffPeak: 0.15,
		LabelRedPeak: 0.76, LabelRedOffPeak: 0.17,
	}}

	type subTest struct {
		name     string
		start    string
		expected RateLabel
	}
	subTests := []subTest{
		{"red-peak", "2026-01-12T12:00:00Z", LabelRedPeak},
		{"red-offpeak", "2026-01-12T03:00:00Z", LabelRedOffPeak},
		{"white-peak", "2026-01-13T09:00:00Z", LabelWhitePeak},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			label, err := c.Classify(interval(subTest.start, 30*time.Minute), pricing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != subTest.expected {
				t.Errorf("got %s, expected %s", label, subTest.expected)
			}
		})
	}

	// A past day missing from the ledger is a hard failure, never defaulted.
	_, err := c.Classify(interval("2026-01-10T12:00:00Z", 30*time.Minute), pricing)
	if !errors.Is(err, tempo.ErrUnknownCalendarDay) {
		t.Errorf("expected ErrUnknownCalendarDay, got %v", err)
	}
}

func TestClassify_ColorCalendarWithoutCalendar(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	_, err := c.Classify(interval("2026-01-12T12:00:00Z", 30*time.Minute), ColorPricing{})
	if !errors.Is(err, ErrNoCalendar) {
		t.Errorf("expected ErrNoCalendar, got %v", err)
	}
}

func TestClassify_SpecialPeakDays(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	pricing := SpecialPeakDaysPricing{
		Normal:   0.15,
		PeakDay:  1.1,
		PeakDays: NewDateSet("2026-01-12"),
	}

	label, err := c.Classify(interval("2026-01-12T12:00:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelPeakDay {
		t.Errorf("got %s, expected %s", label, LabelPeakDay)
	}

	label, err = c.Classify(interval("2026-01-13T12:00:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelNormal {
		t.Errorf("got %s, expected %s", label, LabelNormal)
	}
}

func TestClassify_Seasonal(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	pricing := SeasonalPricing{
		Prices: map[RateLabel]float64{
			LabelWinterPeak: 0.2, LabelWinterOffPeak: 0.15,
			LabelSummerPeak: 0.12, LabelSummerOffPeak: 0.09,
			LabelPeakDay: 0.9,
		},
		PeakDays: NewDateSet("2026-01-12"),
	}

	type subTest struct {
		name     string
		start    string
		expected RateLabel
	}
	subTests := []subTest{
		{"peak-day-overrides-season", "2026-01-12T12:00:00Z", LabelPeakDay},
		{"peak-day-overrides-offpeak", "2026-01-12T03:00:00Z", LabelPeakDay},
		{"winter-peak", "2026-01-13T12:00:00Z", LabelWinterPeak},
		{"winter-offpeak", "2026-01-13T03:00:00Z", LabelWinterOffPeak},
		{"summer-peak", "2026-06-10T12:00:00Z", LabelSummerPeak},
		{"summer-offpeak", "2026-06-10T03:00:00Z", LabelSummerOffPeak},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			label, err := c.Classify(interval(subTest.start, 30*time.Minute), pricing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != subTest.expected {
				t.Errorf("got %s, expected %s", label, subTest.expected)
			}
		})
	}
}

func TestClassify_Weekend(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	pricing := WeekendPricing{Peak: 0.2, OffPeak: 0.14}

	// 2025-06-14 is a Saturday, 2025-06-10 a Tuesday.
	label, err := c.Classify(interval("2025-06-14T12:00:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelOffPeak {
		t.Errorf("saturday: got %s, expected %s", label, LabelOffPeak)
	}

	label, err = c.Classify(interval("2025-06-10T12:00:00Z", 30*time.Minute), pricing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelPeak {
		t.Errorf("tuesday: got %s, expected %s", label, LabelPeak)
	}
}

func TestClassify_WeekendNight(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	pricing := WeekendNightPricing{Peak: 0.2, OffPeak: 0.14}

	type subTest struct {
		name     string
		start    string
		expected RateLabel
	}
	subTests := []subTest{
		{"weekday-night", "2025-06-10T23:30:00Z", LabelOffPeak},
		{"weekday-day", "2025-06-10T12:00:00Z", LabelPeak},
		{"saturday-day", "2025-06-14T12:00:00Z", LabelOffPeak},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			label, err := c.Classify(interval(subTest.start, 30*time.Minute), pricing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != subTest.expected {
				t.Errorf("got %s, expected %s", label, subTest.expected)
			}
		})
	}
}

type bogusPricing struct{}

func (bogusPricing) Family() Family                 { return Family("BOGUS") }
func (bogusPricing) Buckets() map[RateLabel]float64 { return nil }
func (bogusPricing) Validate() error                { return nil }

func TestClassify_UnsupportedFamily(t *testing.T) {
	c := NewClassifier(offPeakWindows(), time.UTC, nil)
	_, err := c.Classify(interval("2025-06-10T12:00:00Z", 30*time.Minute), bogusPricing{})
	if !errors.Is(err, ErrUnsupportedFamily) {
		t.Errorf("expected ErrUnsupportedFamily, got %v", err)
	}
}

func TestClassifyAllTolerant_SkipsUnknownDays(t *testing.T) {
	ledger := tempo.NewLedger(map[tempo.DayKey]tempo.Color{
		"2026-01-12": tempo.ColorBlue,
	}, tempo.SeasonQuota{})
	clock := fixedClock{now: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)}
	cal := tempo.NewCalendar(ledger, nil, nil, clock)
	c := NewClassifier(offPeakWindows(), time.UTC, cal)
	pricing := ColorPricing{Prices: map[RateLabel]float64{
		LabelBluePeak: 0.16, LabelBlueOffPeak: 0.13,
		LabelWhitePeak: 0.19, LabelWhiteOffPeak: 0.15,
		LabelRedPeak: 0.76, LabelRedOffPeak: 0.17,
	}}

	intervals := []metering.NormalizedInterval{
		interval("2026-01-12T12:00:00Z", 30*time.Minute),
		interval("2026-01-11T12:00:00Z", 30*time.Minute),
	}
	classified, errs := c.ClassifyAllTolerant(intervals, pricing)
	if len(classified) != 1 || classified[0].Label != LabelBluePeak {
		t.Fatalf("unexpected classified set: %+v", classified)
	}
	if len(errs) != 1 || !errors.Is(errs[0], tempo.ErrUnknownCalendarDay) {
		t.Fatalf("expected one ErrUnknownCalendarDay, got %v", errs)
	}
}
