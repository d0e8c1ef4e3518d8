package tariff

import "errors"

var (
	// ErrUnsupportedFamily is returned when a pricing variant is not one the
	// classifier knows. This is a programming error, not a recoverable condition.
	ErrUnsupportedFamily = errors.New("tariff: unsupported family")
	// ErrLabelMismatch is returned when an offer's priced buckets do not match
	// its family's label alphabet exactly.
	ErrLabelMismatch = errors.New("tariff: label mismatch")
	// ErrNoCalendar is returned when a color-calendar offer is classified
	// without a calendar wired.
	ErrNoCalendar = errors.New("tariff: no color calendar configured")
	// ErrInvalidWindow is returned when a clock window fails to parse.
	ErrInvalidWindow = errors.New("tariff: invalid clock window")
	// ErrInvalidOffer is returned when an offer fails basic validation.
	ErrInvalidOffer = errors.New("tariff: invalid offer")
)
