package pricing

import (
	"fmt"
	"sort"

	aggregation "wattcompare/internal/aggregation/domain"
	tariff "wattcompare/internal/tariff/domain"
)

// AggregationView resolves the aggregation bucket an offer must be priced
// against. Classification depends on the offer's family (and, for peak-day
// families, on the offer's own date list), so candidates of different
// families see differently labelled buckets of the same consumption profile.
type AggregationView interface {
	BucketFor(offer tariff.Offer) (aggregation.Bucket, bool)
}

// SingleBucket is an AggregationView serving the same bucket to every offer,
// sufficient when all candidates share one classification scheme.
type SingleBucket struct {
	Bucket aggregation.Bucket
}

// BucketFor implements AggregationView.
func (s SingleBucket) BucketFor(tariff.Offer) (aggregation.Bucket, bool) {
	return s.Bucket, true
}

// Rank prices every power-compatible candidate against the household's
// aggregated profile and orders them cheapest first. Ties are broken by offer
// id so the ordering is deterministic. When currentOfferID resolves among the
// priced candidates, each result carries the savings against it.
//
// Rank is pure: it reads immutable snapshots and returns fresh results.
func Rank(view AggregationView, candidates []tariff.Offer, currentOfferID string, subscribedPowerKVA int) ([]CostResult, error) {
	results := make([]CostResult, 0, len(candidates))
	for _, offer := range candidates {
		if offer.PowerKVA != subscribedPowerKVA {
			continue
		}
		bucket, ok := view.BucketFor(offer)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoAggregation, offer.ID)
		}
		result, err := Price(bucket, offer, subscribedPowerKVA)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalCost != results[j].TotalCost {
			return results[i].TotalCost < results[j].TotalCost
		}
		return results[i].OfferID < results[j].OfferID
	})

	var currentCost *float64
	for _, r := range results {
		if r.OfferID == currentOfferID {
			cost := r.TotalCost
			currentCost = &cost
			break
		}
	}
	if currentCost != nil {
		for i := range results {
			savings := *currentCost - results[i].TotalCost
			results[i].Savings = &savings
		}
	}
	return results, nil
}
