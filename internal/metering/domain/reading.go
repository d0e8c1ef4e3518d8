package metering

import "time"

// Unit is the measurement unit of a raw meter reading.
type Unit string

const (
	// UnitWatt marks a mean-power reading that must be integrated over its interval.
	UnitWatt Unit = "W"
	// UnitWattHour marks an energy reading that passes through unscaled.
	UnitWattHour Unit = "Wh"
)

// IsValid reports whether the unit is one the normalizer understands.
func (u Unit) IsValid() bool {
	return u == UnitWatt || u == UnitWattHour
}

// MeterReading is one raw record from the metering source.
// Readings are stamped with the *end* of their measurement interval; the
// nominal interval is an ISO-8601 duration token such as "PT30M".
// Sequences are not guaranteed gap-free, ordered or duplicate-free.
type MeterReading struct {
	EndTime         time.Time
	RawValue        float64
	Unit            Unit
	NominalInterval string
}
