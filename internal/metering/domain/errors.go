package metering

import "errors"

var (
	// ErrMalformedDuration is returned when a nominal interval token cannot be parsed.
	ErrMalformedDuration = errors.New("metering: malformed duration")
	// ErrNegativeEnergy is returned when a reading carries a negative raw value.
	ErrNegativeEnergy = errors.New("metering: negative energy")
	// ErrUnknownUnit is returned when a reading carries a unit other than W or Wh.
	ErrUnknownUnit = errors.New("metering: unknown unit")
	// ErrZeroTimestamp is returned when a reading has no end timestamp.
	ErrZeroTimestamp = errors.New("metering: zero end timestamp")
)
