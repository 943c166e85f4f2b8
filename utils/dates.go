// utils/dates.go
package utils

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var ErrBadTimeRange = errors.New("end time must be after start time")

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// NormalizeTime parses a HH:MM label and returns it zero-padded. Overlap
// checks compare labels as strings, so a label like "9:00" must be
// canonicalized to "09:00" before it is stored or compared.
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}

// MinutesBetween returns the elapsed minutes of the half-open interval
// [start, end) within one day.
func MinutesBetween(start, end string) (int, error) {
	s, err := time.Parse(TimeLayout, start)
	if err != nil {
		return 0, err
	}
	e, err := time.Parse(TimeLayout, end)
	if err != nil {
		return 0, err
	}
	minutes := int(e.Sub(s).Minutes())
	if minutes <= 0 {
		return 0, ErrBadTimeRange
	}
	return minutes, nil
}

// HoursBetween returns whole elapsed hours, truncated toward zero. A booking
// shorter than an hour yields zero billable units.
func HoursBetween(start, end string) (int, error) {
	minutes, err := MinutesBetween(start, end)
	if err != nil {
		return 0, err
	}
	return minutes / 60, nil
}

// Grid returns the fixed-grid slot start labels, ascending: one per hour
// from startHour up to but not including endHour.
func Grid(startHour, endHour int) []string {
	labels := make([]string, 0, endHour-startHour)
	for h := startHour; h < endHour; h++ {
		labels = append(labels, fmt.Sprintf("%02d:00", h))
	}
	return labels
}

// SlotEnd returns the end label of a slot starting at label lasting minutes.
func SlotEnd(label string, minutes int) string {
	s, err := time.Parse(TimeLayout, label)
	if err != nil {
		return label
	}
	return s.Add(time.Duration(minutes) * time.Minute).Format(TimeLayout)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. HH:MM labels compare correctly as strings.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
