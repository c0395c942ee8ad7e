package auth

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultLifetime is used when a lifetime string is empty or malformed
const DefaultLifetime = 24 * time.Hour

var (
	lifetimePattern = regexp.MustCompile(`^(\d+)([dhms])$`)

	ErrMalformedDuration = errors.New("duration must look like <number><d|h|m|s>")
	ErrDurationRange     = errors.New("duration out of range")
)

// ParseDuration parses "<number><unit>" with unit one of d, h, m, s. The
// number must be positive and the result must fit in a time.Duration.
func ParseDuration(s string) (time.Duration, error) {
	m := lifetimePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrDurationRange, s)
	}

	var unit time.Duration
	switch m[2] {
	case "d":
		unit = 24 * time.Hour
	case "h":
		unit = time.Hour
	case "m":
		unit = time.Minute
	case "s":
		unit = time.Second
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %q", ErrDurationRange, s)
	}
	return time.Duration(n) * unit, nil
}

// ParseLifetime is ParseDuration with DefaultLifetime for anything it rejects.
func ParseLifetime(s string) time.Duration {
	d, err := ParseDuration(s)
	if err != nil {
		return DefaultLifetime
	}
	return d
}
