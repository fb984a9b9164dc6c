package model

import (
	"errors"
	"strings"
	"time"
)

const (
	isoLayout     = "2006-01-02"
	looseLayout   = "2006-1-2"
	displayLayout = "Mon Jan 02 2006"
)

var ErrInvalidDate = errors.New("not a calendar date")

// Date is a calendar date without time of day, kept in UTC
type Date struct {
	t time.Time
}

// NewDate builds a Date from its components
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today is the current UTC calendar date
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate accepts YYYY-MM-DD (month and day may be unpadded, 2024-1-5) or
// an RFC 3339 timestamp (date part kept)
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(looseLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

// ISO renders the storage form, e.g. 2024-01-01
func (d Date) ISO() string {
	return d.t.Format(isoLayout)
}

// Display renders the human-readable form, e.g. Mon Jan 01 2024
func (d Date) Display() string {
	return d.t.Format(displayLayout)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) String() string {
	return d.ISO()
}
