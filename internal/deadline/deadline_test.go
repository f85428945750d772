package deadline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edgard/tugasbot/internal/deadline"
)

func TestDaysRemaining(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 1, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline string
		want     int
	}{
		{name: "five days ahead", deadline: "2025-01-10", want: 5},
		{name: "due today", deadline: "2025-01-05", want: 0},
		{name: "tomorrow", deadline: "2025-01-06", want: 1},
		{name: "yesterday", deadline: "2025-01-04", want: -1},
		{name: "far past", deadline: "2024-12-01", want: -35},
		{name: "across month boundary", deadline: "2025-02-01", want: 27},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := deadline.DaysRemaining(today, tc.deadline)
			if err != nil {
				t.Fatalf("DaysRemaining(%q) error: %v", tc.deadline, err)
			}
			if got != tc.want {
				t.Errorf("DaysRemaining(%q) = %d, want %d", tc.deadline, got, tc.want)
			}
		})
	}
}

func TestDaysRemainingIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	// The fractional day between a late evaluation time and midnight must
	// not change the civil day count.
	lateToday := time.Date(2025, 1, 5, 23, 59, 59, 0, time.UTC)

	got, err := deadline.DaysRemaining(lateToday, "2025-01-06")
	if err != nil {
		t.Fatalf("DaysRemaining error: %v", err)
	}
	if got != 1 {
		t.Errorf("DaysRemaining late in the day = %d, want 1", got)
	}
}

func TestDaysRemainingRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		deadline string
	}{
		{name: "empty", deadline: ""},
		{name: "free text", deadline: "besok"},
		{name: "wrong order", deadline: "10-01-2025"},
		{name: "missing day", deadline: "2025-01"},
		{name: "slashes", deadline: "2025/01/10"},
		{name: "out of range month", deadline: "2025-13-01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := deadline.DaysRemaining(time.Now(), tc.deadline)
			if !errors.Is(err, deadline.ErrInvalidFormat) {
				t.Errorf("DaysRemaining(%q) error = %v, want ErrInvalidFormat", tc.deadline, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := deadline.Validate("2025-01-10"); err != nil {
		t.Errorf("Validate(valid date) = %v, want nil", err)
	}
	if err := deadline.Validate("soon"); !errors.Is(err, deadline.ErrInvalidFormat) {
		t.Errorf("Validate(free text) = %v, want ErrInvalidFormat", err)
	}
}
