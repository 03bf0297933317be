package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func TestRoomFreeRespectsSemesterAndDayScoping(t *testing.T) {
	tracks := newTrackingTables()
	tracks.roomBookings["room-1"] = []bookingInterval{
		{Semester: "1st Semester", Day: models.Monday, Start: 8 * 60, End: 9 * 60},
	}

	assert.False(t, tracks.roomFree("room-1", []models.Weekday{models.Monday}, 8*60+30, 9*60+30, "1st Semester"))
	assert.True(t, tracks.roomFree("room-1", []models.Weekday{models.Tuesday}, 8*60, 9*60, "1st Semester"), "different day")
	assert.True(t, tracks.roomFree("room-1", []models.Weekday{models.Monday}, 8*60, 9*60, "2nd Semester"), "different semester")
}

func TestFacultyFreeEnforcesRestBuffer(t *testing.T) {
	tracks := newTrackingTables()
	tracks.facultyBookings["inst-1"] = []bookingInterval{
		{Semester: "1st Semester", Day: models.Monday, Start: 8 * 60, End: 9 * 60},
	}
	instructor := models.Instructor{ID: "inst-1"}

	assert.False(t, tracks.facultyFree(instructor, []models.Weekday{models.Monday}, 9*60+10, 10*60, "1st Semester"), "only 10 minutes rest")
	assert.True(t, tracks.facultyFree(instructor, []models.Weekday{models.Monday}, 9*60+30, 10*60+30, "1st Semester"), "30 minutes rest satisfies the buffer")
}

func TestFacultyFreeRespectsAvailableDaysAndPreferredWindow(t *testing.T) {
	tracks := newTrackingTables()
	instructor := models.Instructor{
		ID:              "inst-1",
		AvailableDays:   map[models.Weekday]bool{models.Monday: true},
		PreferredWindow: &models.TimeWindow{Start: 8 * 60, End: 12 * 60},
	}

	assert.False(t, tracks.facultyFree(instructor, []models.Weekday{models.Tuesday}, 8*60, 9*60, "1st Semester"), "not available on Tuesday")
	assert.False(t, tracks.facultyFree(instructor, []models.Weekday{models.Monday}, 13*60, 14*60, "1st Semester"), "outside preferred window")
	assert.True(t, tracks.facultyFree(instructor, []models.Weekday{models.Monday}, 8*60, 9*60, "1st Semester"))
}

func TestCohortFreeDetectsOverlap(t *testing.T) {
	tracks := newTrackingTables()
	key := models.CohortKey{Program: "BSCS", YearLevel: "1", Semester: "1st Semester"}
	tracks.cohortBookings[key] = []cohortInterval{{Day: models.Monday, Start: 8 * 60, End: 9 * 60}}

	assert.False(t, tracks.cohortFree(key, []models.Weekday{models.Monday}, 8*60+30, 9*60+30))
	assert.True(t, tracks.cohortFree(key, []models.Weekday{models.Monday}, 9*60, 10*60))
}

func TestDaysFreeOfSubjectFiltersUsedDays(t *testing.T) {
	tracks := newTrackingTables()
	key := models.SubjectSemesterKey{SubjectCode: "CS101", Semester: "1st Semester"}
	tracks.subjectDaysUsed[key] = map[models.Weekday]struct{}{models.Monday: {}}

	pairs := []dayPair{{models.Monday, models.Wednesday}, {models.Tuesday, models.Thursday}}
	filtered := tracks.daysFreeOfSubject("CS101", "1st Semester", pairs)

	assert.Equal(t, []dayPair{{models.Tuesday, models.Thursday}}, filtered)
}

func TestCommitRecordsAllTrackingTables(t *testing.T) {
	tracks := newTrackingTables()
	session := models.ScheduledSession{
		SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Semester: "1st Semester",
		Day: models.Monday, StartMinute: 8 * 60, EndMinute: 9 * 60,
		InstructorID: "inst-1", RoomID: "room-1",
	}

	tracks.commit(session)

	assert.Len(t, tracks.facultyBookings["inst-1"], 1)
	assert.Len(t, tracks.roomBookings["room-1"], 1)
	assert.Len(t, tracks.cohortBookings[session.CohortKey()], 1)
	_, used := tracks.subjectDaysUsed[models.SubjectSemesterKey{SubjectCode: "CS101", Semester: "1st Semester"}][models.Monday]
	assert.True(t, used)
}

func TestAddWorkloadCountsOncePerCourse(t *testing.T) {
	tracks := newTrackingTables()

	tracks.addWorkload("course-1", "inst-1", 3)
	tracks.addWorkload("course-1", "inst-1", 3)
	tracks.addWorkload("course-2", "inst-1", 2)

	assert.Equal(t, 5, tracks.workloadFor("inst-1"))
}
