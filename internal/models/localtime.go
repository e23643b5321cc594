package models

import (
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout is the wire format for timestamps: ISO-8601 without offset.
const LocalTimeLayout = "2006-01-02T15:04:05"

const DateLayout = "2006-01-02"

var parseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// Naive drops t's zone and keeps its wall clock. All stored timestamps are naive and
// carried in UTC, so clients in different zones are not reconciled.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfDay returns midnight of t's wall-clock date.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseLocalTime parses an ISO-8601 timestamp, discarding fractional seconds and any
// zone suffix ("Z", "+02:00", "-05:00") before reading the wall clock.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	cleaned := s
	if sep := strings.IndexAny(s, "T "); sep >= 0 {
		date, clock := s[:sep], s[sep+1:]
		if i := strings.IndexAny(clock, ".+-Zz"); i >= 0 {
			clock = clock[:i]
		}
		cleaned = date + "T" + clock
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format: %q", s)
}

// LocalTime marshals as a naive ISO-8601 timestamp. Request bodies carry plain strings
// that handlers parse with ParseLocalTime.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: Naive(t)}
}

func LocalTimePtr(t *time.Time) *LocalTime {
	if t == nil {
		return nil
	}
	lt := NewLocalTime(*t)
	return &lt
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}
