package retention

import (
	"errors"
	"testing"
	"time"
)

var march2025 = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestMonthsBetween(t *testing.T) {
	then := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthsBetween(march2025, then); got != 2 {
		t.Errorf("MonthsBetween = %d, want 2", got)
	}
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, time.March, 17, 13, 45, 0, 0, time.FixedZone("CET", 3600))
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(in); !got.Equal(want) {
		t.Errorf("MonthStart = %v, want %v", got, want)
	}
}

func TestAgeInMonths(t *testing.T) {
	tests := []struct {
		name       string
		convention Convention
		year       int
		part       int
		reference  time.Time
		expected   int
		wantErr    error
	}{
		{"month two back", Month, 2025, 1, march2025, 2, nil},
		{"month same", Month, 2025, 3, march2025, 0, nil},
		{"month previous year", Month, 2023, 1, march2025, 26, nil},
		{"month future", Month, 2025, 6, march2025, -3, nil},
		{"reference mid-month", Month, 2025, 1, time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC), 2, nil},
		{"month zero", Month, 2025, 0, march2025, 0, ErrMonthOutOfRange},
		{"month thirteen", Month, 2025, 13, march2025, 0, ErrMonthOutOfRange},

		// Week 1 of 2025 starts on Monday 2024-12-30.
		{"week one", Week, 2025, 1, march2025, 3, nil},
		{"week two", Week, 2025, 2, march2025, 2, nil},
		{"week nine", Week, 2025, 9, march2025, 1, nil},
		{"week fifty-three", Week, 2020, 53, march2025, 51, nil},
		{"week zero", Week, 2025, 0, march2025, 0, ErrWeekOutOfRange},
		{"week fifty-four", Week, 2025, 54, march2025, 0, ErrWeekOutOfRange},
		{"week fifty-three in 52 week year", Week, 2025, 53, march2025, 0, ErrInvalidISOWeek},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AgeInMonths(tt.convention, tt.year, tt.part, tt.reference)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AgeInMonths error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AgeInMonths unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("AgeInMonths = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAgeInMonths_WeeksInSameMonthShareAge(t *testing.T) {
	// Weeks 6 through 9 of 2025 all start in February.
	for week := 6; week <= 9; week++ {
		age, err := AgeInMonths(Week, 2025, week, march2025)
		if err != nil {
			t.Fatalf("week %d: %v", week, err)
		}
		if age != 1 {
			t.Errorf("week %d: age = %d, want 1", week, age)
		}
	}
}

func TestAgeInMonths_MonotonicNonIncreasing(t *testing.T) {
	prev := 1 << 30
	for year := 2015; year <= 2030; year++ {
		for month := 1; month <= 12; month++ {
			age, err := AgeInMonths(Month, year, month, march2025)
			if err != nil {
				t.Fatalf("%d-%02d: %v", year, month, err)
			}
			if age > prev {
				t.Fatalf("%d-%02d: age %d increased from %d", year, month, age, prev)
			}
			prev = age
		}
	}
}

func TestISOWeekMonday(t *testing.T) {
	tests := []struct {
		year, week int
		want       time.Time
	}{
		{2025, 1, time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{2021, 1, time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)},
		{2020, 53, time.Date(2020, time.December, 28, 0, 0, 0, 0, time.UTC)},
		{2024, 10, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := isoWeekMonday(tt.year, tt.week)
		if err != nil {
			t.Fatalf("%d-W%02d: %v", tt.year, tt.week, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("%d-W%02d = %v, want %v", tt.year, tt.week, got, tt.want)
		}
	}
}
