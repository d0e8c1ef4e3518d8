package metering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseNominalInterval parses an ISO-8601 duration token as used by metering
// feeds, e.g. "PT30M", "PT1H", "P1D". Only day, hour, minute and second
// designators are supported; calendar designators (years, months, weeks) have
// no fixed length and are rejected.
func ParseNominalInterval(token string) (time.Duration, error) {
	rest, ok := strings.CutPrefix(token, "P")
	if !ok || rest == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
	}

	datePart := rest
	timePart := ""
	if idx := strings.IndexByte(rest, 'T'); idx >= 0 {
		datePart = rest[:idx]
		timePart = rest[idx+1:]
		if timePart == "" {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
		}
	}

	var total time.Duration

	d, err := parseDesignators(datePart, map[byte]time.Duration{'D': 24 * time.Hour})
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
	}
	total += d

	d, err = parseDesignators(timePart, map[byte]time.Duration{
		'H': time.Hour,
		'M': time.Minute,
		'S': time.Second,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
	}
	total += d

	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
	}
	return total, nil
}

func parseDesignators(part string, units map[byte]time.Duration) (time.Duration, error) {
	var total time.Duration
	start := 0
	for i := 0; i < len(part); i++ {
		c := part[i]
		if c >= '0' && c <= '9' {
			continue
		}
		unit, ok := units[c]
		if !ok || i == start {
			return 0, ErrMalformedDuration
		}
		n, err := strconv.Atoi(part[start:i])
		if err != nil {
			return 0, ErrMalformedDuration
		}
		total += time.Duration(n) * unit
		start = i + 1
	}
	if start != len(part) {
		return 0, ErrMalformedDuration
	}
	return total, nil
}
