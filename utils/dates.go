package utils

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"

	DayStart = "00:00:00"
	DayEnd   = "23:59:59"
)

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidClock = errors.New("invalid time, expected HH:MM or HH:MM:SS")
)

// NormalizeDate accepts YYYY-MM-DD or RFC3339 and returns YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", ErrInvalidDate
}

// NormalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", ErrInvalidClock
}

// NormalizeOptionalClock is NormalizeClock that maps blank input to nil.
func NormalizeOptionalClock(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := NormalizeClock(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func PtrString(s string) *string { return &s }

func PtrInt(i int) *int { return &i }

func PtrUint(u uint) *uint { return &u }
