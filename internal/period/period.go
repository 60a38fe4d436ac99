// Package period handles the YYYY-MM statement period key used across
// imports, commission runs, and payroll records.
package period

import (
	"errors"
	"fmt"
	"time"
)

const layout = "2006-01"

var ErrInvalidPeriod = errors.New("invalid_period")

// Parse validates a YYYY-MM period key and returns the first instant of
// that month in UTC.
func Parse(p string) (time.Time, error) {
	t, err := time.Parse(layout, p)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return t.UTC(), nil
}

// Valid reports whether p is a well-formed period key.
func Valid(p string) bool {
	_, err := Parse(p)
	return err == nil
}

// Bounds returns the [start, end) window of the month.
func Bounds(p string) (time.Time, time.Time, error) {
	start, err := Parse(p)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Prev returns the period key of the month before p.
func Prev(p string) (string, error) {
	start, err := Parse(p)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, -1, 0).Format(layout), nil
}

// Display renders "2024-01" as "January 2024".
func Display(p string) string {
	start, err := Parse(p)
	if err != nil {
		return p
	}
	return start.Format("January 2006")
}

// FromTime returns the period key containing t.
func FromTime(t time.Time) string {
	return t.UTC().Format(layout)
}
