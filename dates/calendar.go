package dates

import (
	"sync"
	"time"
)

// Calendar knows which days are England bank holidays. Holiday sets are
// computed per year on first use and cached; safe for concurrent use.
type Calendar struct {
	mu    sync.Mutex
	years map[int]map[int]bool
}

// NewEnglandCalendar returns a calendar for England and Wales bank
// holidays: New Year, Good Friday, Easter Monday, the May day and spring
// holidays, the summer holiday, Christmas and Boxing Day, with weekend
// substitution days.
func NewEnglandCalendar() *Calendar {
	return &Calendar{years: make(map[int]map[int]bool)}
}

func dateKey(d time.Time) int {
	y, m, day := d.Date()
	return y*10000 + int(m)*100 + day
}

// IsHoliday reports whether d is a bank holiday (weekends excluded; use
// IsBusinessDay for the combined check).
func (c *Calendar) IsHoliday(d time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	year := d.Year()
	set, ok := c.years[year]
	if !ok {
		set = englandHolidays(year)
		c.years[year] = set
	}
	return set[dateKey(d)]
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.IsHoliday(d)
}

// Roll moves d to the nearest business day in the given direction
// (dir > 0 forward, dir < 0 backward). A business day is returned as-is.
func (c *Calendar) Roll(d time.Time, dir int) time.Time {
	if dir == 0 {
		dir = 1
	}
	step := 1
	if dir < 0 {
		step = -1
	}
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, step)
	}
	return d
}

// AddTenor shifts d by the tenor and rolls the result to a business day
// in the direction of the shift, so "-2D" rolls backward.
func (c *Calendar) AddTenor(d time.Time, t Tenor) time.Time {
	shifted := t.addCalendar(d)
	dir := 1
	if t.N < 0 {
		dir = -1
	}
	return c.Roll(shifted, dir)
}

// TradingDays counts business days from start to end inclusive on both
// ends (NETWORKDAYS semantics). Returns a negative count if end precedes
// start.
func (c *Calendar) TradingDays(start, end time.Time) int {
	sign := 1
	if end.Before(start) {
		start, end = end, start
		sign = -1
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return sign * count
}

func englandHolidays(year int) map[int]bool {
	set := make(map[int]bool)
	add := func(d time.Time) { set[dateKey(d)] = true }

	// New Year's Day, substituted to Monday when on a weekend.
	add(substituteWeekend(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)))

	easter := easterSunday(year)
	add(easter.AddDate(0, 0, -2)) // Good Friday
	add(easter.AddDate(0, 0, 1))  // Easter Monday

	add(firstWeekdayOfMonth(year, time.May, time.Monday))
	add(lastWeekdayOfMonth(year, time.May, time.Monday))
	add(lastWeekdayOfMonth(year, time.August, time.Monday))

	// Christmas and Boxing Day with substitution: each observance moves
	// forward past weekends and past the other observed day.
	xmas := time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)
	boxing := time.Date(year, time.December, 26, 0, 0, 0, 0, time.UTC)
	obsXmas := substituteWeekend(xmas)
	add(obsXmas)
	obsBoxing := substituteWeekend(boxing)
	for obsBoxing.Equal(obsXmas) || isWeekend(obsBoxing) {
		obsBoxing = obsBoxing.AddDate(0, 0, 1)
	}
	add(obsBoxing)

	return set
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func substituteWeekend(d time.Time) time.Time {
	for isWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func firstWeekdayOfMonth(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func lastWeekdayOfMonth(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Anonymous Gauss algorithm for the date of Easter Sunday.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
