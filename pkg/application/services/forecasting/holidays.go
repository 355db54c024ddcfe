package forecasting

import (
	"sync"
	"time"
)

// HolidayCalendar marks days on which production does not run
type HolidayCalendar interface {
	IsHoliday(day time.Time) bool
}

// HolidaySet is a fixed set of calendar days
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from dates, ignoring the time of day
func NewHolidaySet(days []time.Time) HolidaySet {
	set := make(HolidaySet, len(days))
	for _, d := range days {
		set[d.Format("2006-01-02")] = struct{}{}
	}
	return set
}

func (s HolidaySet) IsHoliday(day time.Time) bool {
	_, ok := s[day.Format("2006-01-02")]
	return ok
}

// PolishHolidays is the statutory public holiday calendar of Poland,
// computed per year on first use
type PolishHolidays struct {
	mu    sync.Mutex
	years map[int]HolidaySet
}

func NewPolishHolidays() *PolishHolidays {
	return &PolishHolidays{years: make(map[int]HolidaySet)}
}

func (p *PolishHolidays) IsHoliday(day time.Time) bool {
	p.mu.Lock()
	set, ok := p.years[day.Year()]
	if !ok {
		set = NewHolidaySet(polishHolidaysFor(day.Year()))
		p.years[day.Year()] = set
	}
	p.mu.Unlock()
	return set.IsHoliday(day)
}

func polishHolidaysFor(year int) []time.Time {
	d := func(m time.Month, day int) time.Time {
		return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
	}
	easter := easterSunday(year)
	return []time.Time{
		d(time.January, 1),
		d(time.January, 6),
		easter,
		easter.AddDate(0, 0, 1),  // Easter Monday
		d(time.May, 1),
		d(time.May, 3),
		easter.AddDate(0, 0, 49), // Pentecost
		easter.AddDate(0, 0, 60), // Corpus Christi
		d(time.August, 15),
		d(time.November, 1),
		d(time.November, 11),
		d(time.December, 25),
		d(time.December, 26),
	}
}

// easterSunday uses the anonymous Gregorian algorithm
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

// weekHasHoliday reports whether any day of the week starting at monday is a holiday
func weekHasHoliday(cal HolidayCalendar, monday time.Time) bool {
	if cal == nil {
		return false
	}
	for i := 0; i < 7; i++ {
		if cal.IsHoliday(monday.AddDate(0, 0, i)) {
			return true
		}
	}
	return false
}

type combinedCalendar []HolidayCalendar

func (c combinedCalendar) IsHoliday(day time.Time) bool {
	for _, cal := range c {
		if cal != nil && cal.IsHoliday(day) {
			return true
		}
	}
	return false
}

// CombineCalendars marks a day as a holiday when any calendar does
func CombineCalendars(calendars ...HolidayCalendar) HolidayCalendar {
	return combinedCalendar(calendars)
}
