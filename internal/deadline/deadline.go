// Package deadline evaluates task deadlines as civil dates.
package deadline

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the only accepted deadline format.
const Layout = "2006-01-02"

// ErrInvalidFormat is returned when a deadline string does not match Layout.
var ErrInvalidFormat = errors.New("invalid deadline format")

// DaysRemaining returns the number of whole days between today and the given
// deadline string: negative when overdue, zero when due today, positive when
// days remain. Only the calendar date of today is considered; no timezone or
// time-of-day component enters the comparison.
func DaysRemaining(today time.Time, deadlineStr string) (int, error) {
	d, err := parse(deadlineStr)
	if err != nil {
		return 0, err
	}

	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24), nil
}

// Validate reports whether the deadline string is a well-formed calendar date.
func Validate(deadlineStr string) error {
	_, err := parse(deadlineStr)
	return err
}

func parse(deadlineStr string) (time.Time, error) {
	d, err := time.Parse(Layout, deadlineStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, deadlineStr)
	}
	return d, nil
}
