package clock

import "time"

// DayKeyLayout is the layout of plan date keys.
const DayKeyLayout = "2006-01-02"

// Clock supplies the current time to the planning engine.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock reading the wall clock in loc. A nil loc means time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// Fixed is a Clock that always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a date key into midnight of that day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayKeyLayout, key, loc)
}

// DaysBetween returns the number of calendar days from earlier to later.
// Negative when later is before earlier. DST shifts do not affect the result.
func DaysBetween(later, earlier time.Time) int {
	ly, lm, ld := later.Date()
	ey, em, ed := earlier.Date()
	l := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(l.Sub(e).Hours() / 24)
}

// AddDays returns midnight of the day n days after t's calendar day.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}
