package model

import (
	"time"
)

type Binning string

const (
	BinDaily   Binning = "daily"
	BinWeekly  Binning = "weekly"
	BinMonthly Binning = "monthly"
)

// Valid reports whether b is one of the known binnings.
func (b Binning) Valid() bool {
	switch b {
	case BinDaily, BinWeekly, BinMonthly:
		return true
	}
	return false
}

// Weeks close on this day, so a weekly bin runs Monday..Sunday.
const WeekEnd = time.Sunday

const monthLayout = "2006-01"

// Bounds returns the calendar period containing d.
func (b Binning) Bounds(d time.Time) (start, end time.Time) {
	d = truncateDay(d)
	switch b {
	case BinWeekly:
		ahead := (int(WeekEnd) - int(d.Weekday()) + 7) % 7
		end = d.AddDate(0, 0, ahead)
		return end.AddDate(0, 0, -6), end
	case BinMonthly:
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	default:
		return d, d
	}
}

func (b Binning) label(p Period) string {
	switch b {
	case BinWeekly:
		return p.First.Format(dateLayout) + " to " + p.Last.Format(dateLayout)
	case BinMonthly:
		return p.Start.Format(monthLayout)
	default:
		return p.Start.Format(dateLayout)
	}
}

// Rebin groups a sorted daily axis into periods. Only periods holding at
// least one axis date are produced. assign[i] is the period of axis[i].
func Rebin(axis []time.Time, b Binning) (periods []Period, assign []int) {
	assign = make([]int, len(axis))
	for i, d := range axis {
		start, end := b.Bounds(d)
		if n := len(periods); n > 0 && periods[n-1].Start.Equal(start) {
			periods[n-1].Last = d
			assign[i] = n - 1
			continue
		}
		periods = append(periods, Period{
			Key:   start.Format(dateLayout),
			Start: start,
			End:   end,
			First: d,
			Last:  d,
		})
		assign[i] = len(periods) - 1
	}

	for i := range periods {
		periods[i].Label = b.label(periods[i])
	}
	return periods, assign
}

// SumByPeriod adds values (laid out on the axis) into their periods.
func SumByPeriod(values []int, assign []int, n int) []int {
	sums := make([]int, n)
	for i, v := range values {
		sums[assign[i]] += v
	}
	return sums
}

// Relative is matched as a percentage of total, defined as 0 when total is 0.
func Relative(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total) * 100
}

// Fraction is matched/total, defined as 0 when total is 0.
func Fraction(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}
