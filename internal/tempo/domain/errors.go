package tempo

import "errors"

var (
	// ErrUnknownCalendarDay is returned when a past or current day has no ledger entry.
	// Unknown days are never guessed; billing on a defaulted color would be wrong.
	ErrUnknownCalendarDay = errors.New("tempo: unknown calendar day")
	// ErrInvalidDayKey is returned when a day key does not parse as a date.
	ErrInvalidDayKey = errors.New("tempo: invalid day key")
	// ErrOutsideSeason is returned when a forecast is requested beyond the season end.
	ErrOutsideSeason = errors.New("tempo: date outside current season")
)
