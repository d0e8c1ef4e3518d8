package pricing

import (
	"errors"
	"math"
	"testing"

	aggregation "wattcompare/internal/aggregation/domain"
	tariff "wattcompare/internal/tariff/domain"
)

func monthBucket(perLabel map[tariff.RateLabel]float64) aggregation.Bucket {
	return aggregation.Bucket{
		Kind:        aggregation.WindowCalendarMonth,
		Key:         "2025-06",
		PerLabelKWh: perLabel,
	}
}

func hpHCOffer(id string, peak, offPeak, subscription float64) tariff.Offer {
	return tariff.Offer{
		ID:                  id,
		Name:                id,
		PowerKVA:            6,
		SubscriptionMonthly: subscription,
		Pricing:             tariff.PeakOffPeakPricing{Peak: peak, OffPeak: offPeak},
	}
}

// The reference scenario: 8 off-peak kWh at 0.15 and 16 peak kWh at 0.20
// price to 4.40 before subscription.
func TestPrice_PeakOffPeakScenario(t *testing.T) {
	bucket := monthBucket(map[tariff.RateLabel]float64{
		tariff.LabelOffPeak: 8,
		tariff.LabelPeak:    16,
	})
	offer := hpHCOffer("hphc", 0.20, 0.15, 10)

	result, err := Price(bucket, offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFloat(t, result.EnergyCost(), 4.40, "energy cost")
	assertFloat(t, result.SubscriptionCost, 10, "subscription")
	assertFloat(t, result.TotalCost, 14.40, "total")
	assertFloat(t, result.PerBucketCost[tariff.LabelOffPeak], 1.20, "off-peak cost")
	assertFloat(t, result.PerBucketCost[tariff.LabelPeak], 3.20, "peak cost")
}

func TestPrice_MissingLabelContributesZero(t *testing.T) {
	// Only peak energy present: the off-peak bucket prices to 0, not an error.
	bucket := monthBucket(map[tariff.RateLabel]float64{tariff.LabelPeak: 10})
	result, err := Price(bucket, hpHCOffer("hphc", 0.20, 0.15, 0), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFloat(t, result.TotalCost, 2.0, "total")
	assertFloat(t, result.PerBucketCost[tariff.LabelOffPeak], 0, "off-peak cost")
}

func TestPrice_IncompatiblePower(t *testing.T) {
	bucket := monthBucket(map[tariff.RateLabel]float64{tariff.LabelPeak: 10})
	_, err := Price(bucket, hpHCOffer("hphc", 0.20, 0.15, 10), 9)
	if !errors.Is(err, ErrIncompatiblePower) {
		t.Errorf("expected ErrIncompatiblePower, got %v", err)
	}
}

func TestPrice_SubscriptionProration(t *testing.T) {
	perLabel := map[tariff.RateLabel]float64{tariff.LabelPeak: 0}
	offer := hpHCOffer("hphc", 0.20, 0.15, 10)

	month, err := Price(monthBucket(perLabel), offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFloat(t, month.SubscriptionCost, 10, "month subscription")

	rolling := aggregation.Bucket{Kind: aggregation.WindowRollingYear, Key: "Y0", PerLabelKWh: perLabel}
	year, err := Price(rolling, offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFloat(t, year.SubscriptionCost, 120, "rolling-year subscription")
}

func TestPrice_CostLinearity(t *testing.T) {
	bucket := monthBucket(map[tariff.RateLabel]float64{
		tariff.LabelOffPeak: 123.4,
		tariff.LabelPeak:    567.8,
	})
	doubled := monthBucket(map[tariff.RateLabel]float64{
		tariff.LabelOffPeak: 246.8,
		tariff.LabelPeak:    1135.6,
	})
	offer := hpHCOffer("hphc", 0.2017, 0.1456, 12.3)

	base, err := Price(bucket, offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Price(doubled, offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFloat(t, twice.EnergyCost(), 2*base.EnergyCost(), "doubled energy cost")
}

func TestPriceSeries(t *testing.T) {
	offer := hpHCOffer("hphc", 0.20, 0.15, 10)
	buckets := []aggregation.Bucket{
		monthBucket(map[tariff.RateLabel]float64{tariff.LabelPeak: 10}),
		{Kind: aggregation.WindowCalendarMonth, Key: "2025-07", PerLabelKWh: map[tariff.RateLabel]float64{tariff.LabelPeak: 20}},
	}
	results, err := PriceSeries(buckets, offer, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, expected 2", len(results))
	}
	if results[0].Period != "2025-06" || results[1].Period != "2025-07" {
		t.Errorf("unexpected periods: %s, %s", results[0].Period, results[1].Period)
	}
	assertFloat(t, results[1].TotalCost, 14, "july total")
}

func assertFloat(t *testing.T, got, expected float64, label string) {
	t.Helper()
	if math.Abs(got-expected) > 1e-9 {
		t.Errorf("%s: got %v, expected %v", label, got, expected)
	}
}
