package calendar

import (
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
)

// Fixed conversion factors. Weeks and months convert to calendar days before
// the working-day walk; hours never touch the calendar. A fractional day
// remainder converts through the 8h working day and is applied as wall time.
const (
	HoursPerDay  = 8.0
	DaysPerWeek  = 7.0
	DaysPerMonth = 30.0
)

// Direction selects which way a duration walk moves.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Calendar answers the working-day predicate and performs all duration date
// arithmetic. Computed spans are half-open: the returned end of a forward
// walk is the first instant after the last working day consumed.
type Calendar struct {
	workdays [7]bool // Monday-first
	holidays map[string]bool
}

const dateLayout = "2006-01-02"

// New builds a Calendar from a 7-character Monday-first mask ('1' = working)
// and a holiday list. Masks with no working day are rejected: every duration
// walk over them would diverge.
func New(mask string, holidays []time.Time) (*Calendar, error) {
	if len(mask) != 7 {
		return nil, fmt.Errorf("working days mask %q must be 7 characters, Monday first", mask)
	}
	c := &Calendar{holidays: make(map[string]bool, len(holidays))}
	anyWorking := false
	for i, ch := range mask {
		switch ch {
		case '1':
			c.workdays[i] = true
			anyWorking = true
		case '0':
		default:
			return nil, fmt.Errorf("working days mask %q may only contain '0' and '1'", mask)
		}
	}
	if !anyWorking {
		return nil, fmt.Errorf("working days mask %q has no working day", mask)
	}
	for _, h := range holidays {
		c.holidays[h.Format(dateLayout)] = true
	}
	return c, nil
}

// Default returns the standard Monday-Friday calendar with no holidays.
func Default() *Calendar {
	c, _ := New(domain.DefaultWorkingDays, nil)
	return c
}

// FromSchedule builds the calendar a schedule's activities are walked on.
func FromSchedule(s *domain.Schedule) (*Calendar, error) {
	mask := s.WorkingDays
	if mask == "" {
		mask = domain.DefaultWorkingDays
	}
	return New(mask, s.Holidays)
}

// IsWorkingDay reports whether the calendar date of t is a working day:
// its weekday is enabled in the mask and the date is not a holiday.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	// time.Weekday is Sunday-first; the mask is Monday-first.
	idx := (int(t.Weekday()) + 6) % 7
	if !c.workdays[idx] {
		return false
	}
	return !c.holidays[t.Format(dateLayout)]
}

// NextWorkingDay returns t unchanged when it falls on a working day,
// otherwise the same clock time on the next working day.
func (c *Calendar) NextWorkingDay(t time.Time) time.Time {
	for !c.IsWorkingDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// ToDays converts a duration amount to equivalent calendar-day units using
// the fixed factors. Hour amounts convert through the 8h working day.
func ToDays(amount float64, unit domain.DurationUnit) float64 {
	switch unit {
	case domain.UnitHours:
		return amount / HoursPerDay
	case domain.UnitWeeks:
		return amount * DaysPerWeek
	case domain.UnitMonths:
		return amount * DaysPerMonth
	default:
		return amount
	}
}

// HoursToUnit converts a working-hour quantity into the given duration unit.
func HoursToUnit(hours float64, unit domain.DurationUnit) float64 {
	switch unit {
	case domain.UnitHours:
		return hours
	case domain.UnitWeeks:
		return hours / (HoursPerDay * DaysPerWeek)
	case domain.UnitMonths:
		return hours / (HoursPerDay * DaysPerMonth)
	default:
		return hours / HoursPerDay
	}
}

// AddDuration walks a duration from t and returns the far boundary.
// Days, weeks and months convert to whole calendar days and advance one
// day at a time, consuming only working days and preserving the clock time.
// Hours accumulate wall time and ignore the working-day mask entirely.
// A negative amount flips the walk; so does Backward. The two flips compose,
// so a negative amount walked Backward moves forward.
func (c *Calendar) AddDuration(t time.Time, amount float64, unit domain.DurationUnit, dir Direction) time.Time {
	if dir == Backward {
		amount = -amount
	}
	if unit == domain.UnitHours {
		return t.Add(time.Duration(amount * float64(time.Hour)))
	}
	days := ToDays(amount, unit)
	if days >= 0 {
		return c.addWorkdays(t, days)
	}
	return c.subWorkdays(t, -days)
}

// addWorkdays advances t across days working days (days >= 0). The whole
// part walks the calendar; the fractional remainder converts to wall hours
// through the 8h working day and is added after the walk, keeping the whole
// and fractional parts composable with subWorkdays.
func (c *Calendar) addWorkdays(t time.Time, days float64) time.Time {
	whole := int(days)
	frac := days - float64(whole)
	cur := t
	for remaining := whole; remaining > 0; {
		if c.IsWorkingDay(cur) {
			remaining--
		}
		cur = cur.AddDate(0, 0, 1)
	}
	if frac > 0 {
		cur = cur.Add(time.Duration(frac * HoursPerDay * float64(time.Hour)))
	}
	return cur
}

// subWorkdays is the inverse of addWorkdays for working-day-aligned inputs:
// the fractional wall hours come off first, then the whole days walk back.
func (c *Calendar) subWorkdays(t time.Time, days float64) time.Time {
	whole := int(days)
	frac := days - float64(whole)
	cur := t
	if frac > 0 {
		cur = cur.Add(-time.Duration(frac * HoursPerDay * float64(time.Hour)))
	}
	for remaining := whole; remaining > 0; {
		cur = cur.AddDate(0, 0, -1)
		if c.IsWorkingDay(cur) {
			remaining--
		}
	}
	return cur
}

// WorkingDaysBetween counts the working calendar dates in the half-open
// range [from, to), stepping from from's clock time. Negative when to is
// before from.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) int {
	if to.Before(from) {
		return -c.WorkingDaysBetween(to, from)
	}
	days := 0
	for cur := from; cur.Before(to); cur = cur.AddDate(0, 0, 1) {
		if c.IsWorkingDay(cur) {
			days++
		}
	}
	return days
}

// WorkingHoursBetween measures the working time from from to to: 8 hours
// per whole working day plus the wall-clock remainder of a trailing partial
// working day, capped at one working day. This is the measure total float
// is computed in. Negative when to is before from.
func (c *Calendar) WorkingHoursBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return -c.WorkingHoursBetween(to, from)
	}
	hours := 0.0
	cur := from
	for !cur.AddDate(0, 0, 1).After(to) {
		if c.IsWorkingDay(cur) {
			hours += HoursPerDay
		}
		cur = cur.AddDate(0, 0, 1)
	}
	if cur.Before(to) && c.IsWorkingDay(cur) {
		rem := to.Sub(cur).Hours()
		if rem > HoursPerDay {
			rem = HoursPerDay
		}
		hours += rem
	}
	return hours
}
