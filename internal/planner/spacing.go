package planner

import (
	"time"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/mastery"
)

// CanSchedule reports whether e may be studied on asOf. With spacing
// disabled, or for items never studied, it always allows.
func CanSchedule(e mastery.Entry, asOf time.Time, enabled bool) bool {
	if !enabled {
		return true
	}
	last := e.LastStudiedAt()
	if last == nil {
		return true
	}
	days := clock.DaysBetween(asOf, last.In(asOf.Location()))
	return days >= e.Difficulty().MinIntervalDays()
}
