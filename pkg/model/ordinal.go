package model

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Proleptic Gregorian ordinal of 1970-01-01, where 0001-01-01 is day 1.
const unixEpochOrdinal = 719163

// Ordinal of 9999-12-31, the last date with a four digit year.
const maxOrdinal = 3652059

const secondsPerDay = 24 * 60 * 60

// FromOrdinal converts an ordinal day number into a UTC calendar date.
func FromOrdinal(n int) (time.Time, error) {
	if n < 1 || n > maxOrdinal {
		return time.Time{}, errors.Newf("ordinal %d out of range", n)
	}
	return time.Unix(int64(n-unixEpochOrdinal)*secondsPerDay, 0).UTC(), nil
}

// ToOrdinal is the inverse of FromOrdinal; the time of day is ignored.
func ToOrdinal(t time.Time) int {
	d := truncateDay(t)
	return int(d.Unix()/secondsPerDay) + unixEpochOrdinal
}

// truncateDay drops the clock and location, keeping the calendar date.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
