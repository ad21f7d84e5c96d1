package retention

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMonthOutOfRange is returned for a month part outside 1-12.
	ErrMonthOutOfRange = errors.New("month out of range")
	// ErrWeekOutOfRange is returned for a week part outside 1-53.
	ErrWeekOutOfRange = errors.New("week out of range")
	// ErrInvalidISOWeek is returned for week 53 of a year that only has 52 ISO weeks.
	ErrInvalidISOWeek = errors.New("invalid ISO week")
)

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole calendar months from then to now.
// Only the year and month of each time are considered.
func MonthsBetween(now, then time.Time) int {
	return (now.Year()-then.Year())*12 + int(now.Month()) - int(then.Month())
}

// AgeInMonths converts a date fragment into an age relative to reference.
// The reference is normalized to the first of its month. For the Week
// convention the fragment is resolved to the Monday of the ISO week and then
// truncated to the first of that Monday's month, so weeks in the same month
// share an age. The result is negative for fragments in the future.
func AgeInMonths(convention Convention, year, part int, reference time.Time) (int, error) {
	var then time.Time

	switch convention {
	case Month:
		if part < 1 || part > 12 {
			return 0, fmt.Errorf("%w: %d", ErrMonthOutOfRange, part)
		}
		then = time.Date(year, time.Month(part), 1, 0, 0, 0, 0, time.UTC)
	case Week:
		if part < 1 || part > 53 {
			return 0, fmt.Errorf("%w: %d", ErrWeekOutOfRange, part)
		}
		monday, err := isoWeekMonday(year, part)
		if err != nil {
			return 0, err
		}
		then = MonthStart(monday)
	default:
		return 0, fmt.Errorf("unsupported date pattern %v", convention)
	}

	return MonthsBetween(MonthStart(reference), then), nil
}

// isoWeekMonday returns the Monday of ISO week `week` in ISO year `year`.
func isoWeekMonday(year, week int) (time.Time, error) {
	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, (week-1)*7-sinceMonday)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("%w: %04d-W%02d", ErrInvalidISOWeek, year, week)
	}
	return monday, nil
}
