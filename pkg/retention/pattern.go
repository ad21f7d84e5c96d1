package retention

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Convention is the date encoding used in index names.
type Convention int

const (
	// Month matches names like "<prefix>2025-03" or "<prefix>2025.03".
	Month Convention = iota
	// Week matches names like "<prefix>2025-7" where the second part is an ISO week.
	Week
)

// String implements fmt.Stringer and pflag.Value.
func (c Convention) String() string {
	switch c {
	case Month:
		return "month"
	case Week:
		return "week"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Set implements pflag.Value.
func (c *Convention) Set(s string) error {
	conv, err := ParseConvention(s)
	if err != nil {
		return err
	}
	*c = conv
	return nil
}

// Type implements pflag.Value.
func (c *Convention) Type() string {
	return "month|week"
}

// UnmarshalText lets a Convention be decoded from configuration files.
func (c *Convention) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}

// ParseConvention parses "month" or "week", ignoring case.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month":
		return Month, nil
	case "week":
		return Week, nil
	default:
		return 0, fmt.Errorf("unknown date pattern %q (expected month or week)", s)
	}
}

// Matcher recognizes index names that carry a date fragment after a fixed prefix.
type Matcher struct {
	convention Convention
	prefix     string
	re         *regexp.Regexp
}

// NewMatcher builds a Matcher for the given convention. The prefix is matched literally.
func NewMatcher(convention Convention, prefix string) (*Matcher, error) {
	quoted := regexp.QuoteMeta(prefix)

	var expr string
	switch convention {
	case Month:
		expr = `^` + quoted + `(\d{4})[.-](\d{2})$`
	case Week:
		expr = `^` + quoted + `(\d{4})-(\d{1,2})$`
	default:
		return nil, fmt.Errorf("unsupported date pattern %v", convention)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile date pattern for prefix %q: %w", prefix, err)
	}
	return &Matcher{convention: convention, prefix: prefix, re: re}, nil
}

// Convention returns the naming convention the matcher was built for.
func (m *Matcher) Convention() Convention {
	return m.convention
}

// Prefix returns the literal index prefix.
func (m *Matcher) Prefix() string {
	return m.prefix
}

// Match extracts the year and the month or week part from name. The numbers
// are not range checked; ok is false when name does not have the expected shape.
func (m *Matcher) Match(name string) (year, part int, ok bool) {
	sub := m.re.FindStringSubmatch(name)
	if sub == nil {
		return 0, 0, false
	}

	// The groups are bounded digit runs, so these cannot fail.
	year, _ = strconv.Atoi(sub[1])
	part, _ = strconv.Atoi(sub[2])
	return year, part, true
}
