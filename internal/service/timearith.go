package service

import (
	"fmt"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// Working-hours and lunch-block bounds, in minutes since 00:00. The spec
// fixes the scheduling day to 07:00-20:00 with a 12:00-13:00 lunch break.
const (
	workDayStartMinute = 7 * 60
	workDayEndMinute   = 20 * 60
	lunchStartMinute   = 12 * 60
	lunchEndMinute     = 13 * 60

	minFacultyRestMinutes = 30
)

// timeSlot is a candidate [Start, End) interval in minutes-of-day.
type timeSlot struct {
	Start int
	End   int
}

// minutesToClock renders a minute-of-day value as 24-hour "HH:MM".
func minutesToClock(minute int) string {
	h := minute / 60
	m := minute % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// clockToMinutes parses a 24-hour "HH:MM" string into minutes-of-day.
func clockToMinutes(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return h*60 + m, nil
}

// intervalsOverlap reports whether [s1,e1) and [s2,e2) overlap.
func intervalsOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// intersectsLunch reports whether [start,end) intersects [12:00,13:00).
func intersectsLunch(start, end int) bool {
	return intervalsOverlap(start, end, lunchStartMinute, lunchEndMinute)
}

// slotValid reports whether a candidate [start,end) slot satisfies the
// working-hours and lunch-block constraints (invariants 5 and 6).
func slotValid(start, end int) bool {
	if start >= end {
		return false
	}
	if start < workDayStartMinute || end > workDayEndMinute {
		return false
	}
	return !intersectsLunch(start, end)
}

// buildHourlySlots enumerates every valid 1-hour [start,start+60] slot on an
// hourly cadence, 07:00 through 19:00.
func buildHourlySlots() []timeSlot {
	slots := make([]timeSlot, 0, 12)
	for start := workDayStartMinute; start+60 <= workDayEndMinute; start += 60 {
		end := start + 60
		if slotValid(start, end) {
			slots = append(slots, timeSlot{Start: start, End: end})
		}
	}
	return slots
}

// buildNinetyMinuteSlots enumerates every valid 90-minute slot on a 30-minute
// cadence across the working day.
func buildNinetyMinuteSlots() []timeSlot {
	slots := make([]timeSlot, 0, 20)
	for start := workDayStartMinute; start+90 <= workDayEndMinute; start += 30 {
		end := start + 90
		if slotValid(start, end) {
			slots = append(slots, timeSlot{Start: start, End: end})
		}
	}
	return slots
}

// hourlySlots and ninetyMinuteSlots are the two canonical slot tables
// precomputed once at package init, per spec §4.1.
var (
	hourlySlots       = buildHourlySlots()
	ninetyMinuteSlots = buildNinetyMinuteSlots()
)

func slotTableFor(hoursPerSession float64) []timeSlot {
	if hoursPerSession >= 1.5 {
		return ninetyMinuteSlots
	}
	return hourlySlots
}

// dayPair is an ordered pair of weekdays a two-session-per-week subject may
// be placed on.
type dayPair [2]models.Weekday

// lecturePairs and labPairs are the canonical day-pair search orders fixed
// by spec §4.1.
var (
	lecturePairs = []dayPair{
		{models.Monday, models.Wednesday},
		{models.Tuesday, models.Thursday},
		{models.Monday, models.Friday},
		{models.Wednesday, models.Friday},
		{models.Tuesday, models.Friday},
	}
	labPairs = []dayPair{
		{models.Tuesday, models.Thursday},
		{models.Wednesday, models.Friday},
		{models.Monday, models.Friday},
		{models.Monday, models.Wednesday},
		{models.Tuesday, models.Friday},
	}
)

func dayPairsFor(tag models.SessionTag) []dayPair {
	if tag == models.SessionTagLaboratory {
		return labPairs
	}
	return lecturePairs
}
