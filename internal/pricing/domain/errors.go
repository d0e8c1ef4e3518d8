package pricing

import "errors"

var (
	// ErrIncompatiblePower is returned when an offer's subscribed power does
	// not match the household's. Checked before any pricing happens.
	ErrIncompatiblePower = errors.New("pricing: incompatible subscribed power")
	// ErrNoAggregation is returned when the ranker has no bucket for an offer.
	ErrNoAggregation = errors.New("pricing: no aggregation for offer")
)
