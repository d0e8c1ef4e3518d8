package tariff

import (
	"fmt"
	"time"

	tempo "wattcompare/internal/tempo/domain"
)

// DateSet is a set of local calendar dates.
type DateSet map[tempo.DayKey]struct{}

// NewDateSet builds a set from the given days.
func NewDateSet(days ...tempo.DayKey) DateSet {
	s := make(DateSet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s DateSet) Contains(d tempo.DayKey) bool {
	_, ok := s[d]
	return ok
}

// Pricing is the family-specific price structure of an offer. One variant
// exists per family so an offer can never carry fields from another family's
// rules.
type Pricing interface {
	Family() Family
	// Buckets returns the label -> price-per-kWh map the family prices.
	Buckets() map[RateLabel]float64
	// Validate checks the price map against the family's label alphabet.
	Validate() error
}

// Offer is one tariff offer from the catalog.
type Offer struct {
	ID                  string
	Name                string
	PowerKVA            int
	SubscriptionMonthly float64
	Pricing             Pricing
}

// Validate checks catalog-level invariants before the offer enters the engine.
func (o Offer) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidOffer)
	}
	if o.PowerKVA <= 0 {
		return fmt.Errorf("%w: offer %s: non-positive power", ErrInvalidOffer, o.ID)
	}
	if o.SubscriptionMonthly < 0 {
		return fmt.Errorf("%w: offer %s: negative subscription", ErrInvalidOffer, o.ID)
	}
	if o.Pricing == nil {
		return fmt.Errorf("%w: offer %s: no pricing", ErrInvalidOffer, o.ID)
	}
	if err := o.Pricing.Validate(); err != nil {
		return fmt.Errorf("offer %s: %w", o.ID, err)
	}
	return nil
}

// BasePricing prices every kWh at a single rate.
type BasePricing struct {
	KWhPrice float64
}

func (p BasePricing) Family() Family { return FamilyBase }

func (p BasePricing) Buckets() map[RateLabel]float64 {
	return map[RateLabel]float64{LabelBase: p.KWhPrice}
}

func (p BasePricing) Validate() error { return validatePositive(p.Buckets()) }

// PeakOffPeakPricing prices peak and off-peak hours separately. The off-peak
// windows themselves are household configuration, not part of the offer.
type PeakOffPeakPricing struct {
	Peak    float64
	OffPeak float64
}

func (p PeakOffPeakPricing) Family() Family { return FamilyPeakOffPeak }

func (p PeakOffPeakPricing) Buckets() map[RateLabel]float64 {
	return map[RateLabel]float64{LabelPeak: p.Peak, LabelOffPeak: p.OffPeak}
}

func (p PeakOffPeakPricing) Validate() error { return validatePositive(p.Buckets()) }

// ColorPricing prices the six color x period buckets of a color-calendar
// tariff.
type ColorPricing struct {
	Prices map[RateLabel]float64
}

func (p ColorPricing) Family() Family { return FamilyColorCalendar }

func (p ColorPricing) Buckets() map[RateLabel]float64 { return p.Prices }

func (p ColorPricing) Validate() error {
	if err := validateAlphabet(p.Prices, colorLabels); err != nil {
		return err
	}
	return validatePositive(p.Prices)
}

// SpecialPeakDaysPricing prices a small fixed list of contractual peak days
// at a much higher rate than all other days.
type SpecialPeakDaysPricing struct {
	Normal   float64
	PeakDay  float64
	PeakDays DateSet
}

func (p SpecialPeakDaysPricing) Family() Family { return FamilySpecialPeakDays }

func (p SpecialPeakDaysPricing) Buckets() map[RateLabel]float64 {
	return map[RateLabel]float64{LabelNormal: p.Normal, LabelPeakDay: p.PeakDay}
}

func (p SpecialPeakDaysPricing) Validate() error { return validatePositive(p.Buckets()) }

// SeasonalPricing prices winter/summer x peak/off-peak buckets, with an
// optional peak-day override list that outranks the season label.
type SeasonalPricing struct {
	Prices map[RateLabel]float64
	// PeakDays, when non-empty, requires a LabelPeakDay price in Prices.
	PeakDays DateSet
	// WinterMonths overrides the default November-March winter.
	WinterMonths []time.Month
}

func (p SeasonalPricing) Family() Family { return FamilySeasonal }

func (p SeasonalPricing) Buckets() map[RateLabel]float64 { return p.Prices }

func (p SeasonalPricing) Validate() error {
	expected := seasonLabels
	if len(p.PeakDays) > 0 {
		expected = append(append([]RateLabel(nil), seasonLabels...), LabelPeakDay)
	}
	if err := validateAlphabet(p.Prices, expected); err != nil {
		return err
	}
	return validatePositive(p.Prices)
}

// isWinter reports whether the month belongs to the offer's winter season.
func (p SeasonalPricing) isWinter(m time.Month) bool {
	if len(p.WinterMonths) == 0 {
		return m >= time.November || m <= time.March
	}
	for _, wm := range p.WinterMonths {
		if m == wm {
			return true
		}
	}
	return false
}

// WeekendPricing prices Saturdays and Sundays off-peak.
type WeekendPricing struct {
	Peak    float64
	OffPeak float64
}

func (p WeekendPricing) Family() Family { return FamilyWeekend }

func (p WeekendPricing) Buckets() map[RateLabel]float64 {
	return map[RateLabel]float64{LabelPeak: p.Peak, LabelOffPeak: p.OffPeak}
}

func (p WeekendPricing) Validate() error { return validatePositive(p.Buckets()) }

// WeekendNightPricing prices weekends and a nightly household window off-peak.
type WeekendNightPricing struct {
	Peak    float64
	OffPeak float64
}

func (p WeekendNightPricing) Family() Family { return FamilyWeekendNight }

func (p WeekendNightPricing) Buckets() map[RateLabel]float64 {
	return map[RateLabel]float64{LabelPeak: p.Peak, LabelOffPeak: p.OffPeak}
}

func (p WeekendNightPricing) Validate() error { return validatePositive(p.Buckets()) }

func validateAlphabet(prices map[RateLabel]float64, expected []RateLabel) error {
	if len(prices) != len(expected) {
		return fmt.Errorf("%w: got %d buckets, expected %d", ErrLabelMismatch, len(prices), len(expected))
	}
	for _, label := range expected {
		if _, ok := prices[label]; !ok {
			return fmt.Errorf("%w: missing bucket %s", ErrLabelMismatch, label)
		}
	}
	return nil
}

func validatePositive(prices map[RateLabel]float64) error {
	for label, price := range prices {
		if price < 0 {
			return fmt.Errorf("%w: negative price for bucket %s", ErrInvalidOffer, label)
		}
	}
	return nil
}
