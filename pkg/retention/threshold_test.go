package retention

import (
	"errors"
	"testing"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  error
	}{
		{"25m", 25, nil},
		{" 12 months ", 12, nil},
		{"0m", 0, nil},
		{"1 month", 1, nil},
		{"6M", 6, nil},
		{"3 MONTHS", 3, nil},
		{"007m", 7, nil},
		{"\u00a012m", 12, nil},
		{"12\u2009months\u3000", 12, nil},

		{"abc", 0, ErrMalformedThreshold},
		{"-1m", 0, ErrMalformedThreshold},
		{"25", 0, ErrMalformedThreshold},
		{"", 0, ErrMalformedThreshold},
		{"m", 0, ErrMalformedThreshold},
		{"25 mo", 0, ErrMalformedThreshold},
		{"25d", 0, ErrMalformedThreshold},
		{"25monthss", 0, ErrMalformedThreshold},

		{"99999999999999999999999m", 0, ErrNegativeThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseThreshold(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseThreshold(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseThreshold(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseThreshold(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}
