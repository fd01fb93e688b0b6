// Package dates provides the calendar arithmetic the scenario engine
// needs: tenor parsing and rolling, England bank-holiday awareness,
// trading-day counts and ACT day-count year fractions.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is a tenor period unit.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "Day"
	case Week:
		return "Week"
	case Month:
		return "Month"
	case Year:
		return "Year"
	}
	return "Unknown"
}

// Tenor is a signed period such as 6M, 2D or -2D.
type Tenor struct {
	N    int
	Unit Unit
}

func (t Tenor) String() string {
	var u string
	switch t.Unit {
	case Day:
		u = "D"
	case Week:
		u = "W"
	case Month:
		u = "M"
	case Year:
		u = "Y"
	}
	return fmt.Sprintf("%d%s", t.N, u)
}

// ParseTenor parses strings like "6M", "10D", "1Y", "-2D".
func ParseTenor(s string) (Tenor, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("malformed tenor %q", s)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Tenor{}, fmt.Errorf("malformed tenor %q: %w", s, err)
	}

	var unit Unit
	switch strings.ToUpper(s[len(s)-1:]) {
	case "D":
		unit = Day
	case "W":
		unit = Week
	case "M":
		unit = Month
	case "Y":
		unit = Year
	default:
		return Tenor{}, fmt.Errorf("unknown tenor unit in %q", s)
	}

	return Tenor{N: n, Unit: unit}, nil
}

// addCalendar applies the tenor as plain calendar arithmetic. Month and
// year additions clamp to the last day of the target month instead of
// normalizing, so 31 Jan + 1M lands on 28/29 Feb rather than March.
func (t Tenor) addCalendar(d time.Time) time.Time {
	switch t.Unit {
	case Day:
		return d.AddDate(0, 0, t.N)
	case Week:
		return d.AddDate(0, 0, 7*t.N)
	case Month:
		return addMonthsClamped(d, t.N)
	case Year:
		return addMonthsClamped(d, 12*t.N)
	}
	return d
}

func addMonthsClamped(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	total := int(m) - 1 + months
	ny := y + total/12
	nm := total % 12
	if nm < 0 {
		nm += 12
		ny--
	}
	month := time.Month(nm + 1)
	if last := daysInMonth(ny, month); day > last {
		day = last
	}
	return time.Date(ny, month, day, 0, 0, 0, 0, d.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
