// Package timeparse reads the free-form datetime strings stored by the legacy
// checklist screens. Rows were typed by hand or pasted from spreadsheets, so the
// same column holds ISO, day-first and 12-hour values side by side.
package timeparse

import (
	"errors"
	"strings"
	"time"
)

var ErrUnparseable = errors.New("unparseable datetime")

// Day-first layouts come after ISO ones: "02/01/2006" is how the office
// writes dates, never month-first.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 03:04 PM",
	"2006-01-02 3:04 PM",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 03:04 PM",
	"02/01/2006 3:04 PM",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// ParseLoose parses s in loc using the known layouts. Zero dates such as
// "0000-00-00 00:00:00" are rejected.
func ParseLoose(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value := strings.Join(strings.Fields(s), " ")
	if value == "" || strings.HasPrefix(value, "0000-00-00") {
		return time.Time{}, ErrUnparseable
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}

	upper := strings.ToUpper(value)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparseable
}
