package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func TestMinutesToClockAndBack(t *testing.T) {
	assert.Equal(t, "08:00", minutesToClock(8*60))
	assert.Equal(t, "13:05", minutesToClock(13*60+5))

	minutes, err := clockToMinutes("08:00")
	require.NoError(t, err)
	assert.Equal(t, 8*60, minutes)
}

func TestClockToMinutesRejectsInvalid(t *testing.T) {
	_, err := clockToMinutes("not-a-clock")
	assert.Error(t, err)

	_, err = clockToMinutes("25:00")
	assert.Error(t, err)
}

func TestIntervalsOverlap(t *testing.T) {
	assert.True(t, intervalsOverlap(60, 120, 90, 150))
	assert.False(t, intervalsOverlap(60, 120, 120, 180))
	assert.False(t, intervalsOverlap(60, 120, 0, 60))
}

func TestSlotValidEnforcesWorkingHoursAndLunch(t *testing.T) {
	assert.True(t, slotValid(8*60, 9*60))
	assert.False(t, slotValid(6*60, 7*60), "before the working day starts")
	assert.False(t, slotValid(19*60, 21*60), "past the working day end")
	assert.False(t, slotValid(11*60+30, 12*60+30), "crosses into lunch")
	assert.False(t, slotValid(9*60, 9*60), "zero-length slot")
}

func TestBuildHourlySlotsSkipsLunch(t *testing.T) {
	slots := buildHourlySlots()
	for _, s := range slots {
		assert.False(t, intersectsLunch(s.Start, s.End))
	}
	assert.NotContains(t, slots, timeSlot{Start: lunchStartMinute, End: lunchStartMinute + 60})
}

func TestSlotTableForPicksByDuration(t *testing.T) {
	assert.Equal(t, ninetyMinuteSlots, slotTableFor(1.5))
	assert.Equal(t, hourlySlots, slotTableFor(1.0))
}

func TestDayPairsForSelectsByTag(t *testing.T) {
	assert.Equal(t, labPairs, dayPairsFor(models.SessionTagLaboratory))
	assert.Equal(t, lecturePairs, dayPairsFor(models.SessionTagLecture))
}
