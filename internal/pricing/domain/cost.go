package pricing

import (
	"fmt"

	aggregation "wattcompare/internal/aggregation/domain"
	tariff "wattcompare/internal/tariff/domain"
)

// CostResult is the priced outcome of one (offer, bucket) pair. Results are
// built fresh per computation and never mutated afterwards.
type CostResult struct {
	OfferID          string
	OfferName        string
	Period           string
	TotalCost        float64
	PerBucketCost    map[tariff.RateLabel]float64
	SubscriptionCost float64
	// Savings is total cost of the current offer minus this one; nil when the
	// current offer could not be resolved among the candidates.
	Savings *float64
}

// EnergyCost returns the consumption part of the total.
func (r CostResult) EnergyCost() float64 {
	return r.TotalCost - r.SubscriptionCost
}

// Price applies an offer's priced buckets to an aggregation bucket.
// A label priced by the offer but absent from the aggregation contributes 0.
// The subscription fee is prorated by the bucket's span: one month for a
// calendar-month bucket, twelve for a rolling-year window.
func Price(bucket aggregation.Bucket, offer tariff.Offer, subscribedPowerKVA int) (CostResult, error) {
	if offer.PowerKVA != subscribedPowerKVA {
		return CostResult{}, fmt.Errorf("%w: offer %s is %d kVA, household is %d kVA",
			ErrIncompatiblePower, offer.ID, offer.PowerKVA, subscribedPowerKVA)
	}

	perBucket := make(map[tariff.RateLabel]float64)
	var energyCost float64
	for label, price := range offer.Pricing.Buckets() {
		cost := bucket.KWhFor(label) * price
		perBucket[label] = cost
		energyCost += cost
	}

	subscription := offer.SubscriptionMonthly * bucket.Months()
	return CostResult{
		OfferID:          offer.ID,
		OfferName:        offer.Name,
		Period:           bucket.Key,
		TotalCost:        energyCost + subscription,
		PerBucketCost:    perBucket,
		SubscriptionCost: subscription,
	}, nil
}

// PriceSeries prices one offer over a series of buckets, e.g. the monthly
// billing view of the household's own tariff.
func PriceSeries(buckets []aggregation.Bucket, offer tariff.Offer, subscribedPowerKVA int) ([]CostResult, error) {
	out := make([]CostResult, 0, len(buckets))
	for _, bucket := range buckets {
		result, err := Price(bucket, offer, subscribedPowerKVA)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
