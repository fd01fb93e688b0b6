package dates

import (
	"fmt"
	"time"
)

// Basis selects the day-count convention for YearFraction.
type Basis int

const (
	ActAct Basis = iota
	Act365
	Act360
)

// YearFraction returns the day-count fraction between start and end.
// ACT/ACT divides the calendar days by the length of the year starting at
// start (start to start+1Y, unadjusted), so leap years divide by 366.
func YearFraction(start, end time.Time, basis Basis) float64 {
	days := calendarDays(start, end)
	switch basis {
	case Act365:
		return days / 365
	case Act360:
		return days / 360
	default:
		oneYear := addMonthsClamped(start, 12)
		return days / calendarDays(start, oneYear)
	}
}

func calendarDays(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// tradeDateLayout is the DD/MM/YYYY form used by run settings and trade
// descriptions.
const tradeDateLayout = "02/01/2006"

// ParseTradeDate parses a DD/MM/YYYY date.
func ParseTradeDate(s string) (time.Time, error) {
	d, err := time.Parse(tradeDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse trade date %q: %w", s, err)
	}
	return d, nil
}

// FormatTradeDate renders d as DD/MM/YYYY.
func FormatTradeDate(d time.Time) string {
	return d.Format(tradeDateLayout)
}

// DateIdentifier renders d as YYYYMMDD, the key used in path-ensemble
// file names.
func DateIdentifier(d time.Time) string {
	return d.Format("20060102")
}

// AttributeDate renders d as YYYY-MM-DD for the attributes record.
func AttributeDate(d time.Time) string {
	return d.Format("2006-01-02")
}
