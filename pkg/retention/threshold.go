package retention

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrMalformedThreshold is returned when a threshold is not of the form "25m" or "12 months".
	ErrMalformedThreshold = errors.New("malformed threshold")
	// ErrNegativeThreshold is returned when a threshold cannot be represented as a non-negative integer.
	ErrNegativeThreshold = errors.New("threshold must be a non-negative number of months")
)

// Whitespace includes Unicode spaces such as U+00A0, not only ASCII.
var thresholdPattern = regexp.MustCompile(`(?i)^[\s\p{Z}]*(\d+)[\s\p{Z}]*m(?:onths?)?[\s\p{Z}]*$`)

// ParseThreshold parses a month threshold such as "25m", "1 month" or " 12 months ".
func ParseThreshold(s string) (int, error) {
	m := thresholdPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q (try '25m')", ErrMalformedThreshold, s)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeThreshold, s)
	}
	return n, nil
}
