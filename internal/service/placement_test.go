package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func candidateFor(instructor models.Instructor) models.FacultyCandidate {
	return models.FacultyCandidate{Instructor: instructor, MatchScore: 100, TagMatchPercentage: 100}
}

func TestRoomsForFallsBackWhenSpecializedListEmpty(t *testing.T) {
	engine := newPlacementEngine([]models.Room{{ID: "room-1", Name: "Room 101"}}, 18, zap.NewNop())

	assert.Equal(t, engine.rooms, engine.roomsFor(models.SessionTagLaboratory), "no lab rooms: falls back to all rooms")
	assert.Equal(t, engine.lecRooms, engine.roomsFor(models.SessionTagLecture))
}

func TestRoomsForPrefersMatchingRoomType(t *testing.T) {
	lecRoom := models.Room{ID: "room-1", Name: "Room 101"}
	labRoom := models.Room{ID: "room-2", Name: "Computer Lab 1"}
	engine := newPlacementEngine([]models.Room{lecRoom, labRoom}, 18, zap.NewNop())

	assert.Equal(t, []models.Room{labRoom}, engine.roomsFor(models.SessionTagLaboratory))
	assert.Equal(t, []models.Room{lecRoom}, engine.roomsFor(models.SessionTagLecture))
}

func TestPlaceSessionsSucceedsWithAvailableCandidate(t *testing.T) {
	room := models.Room{ID: "room-1", Name: "Room 101"}
	engine := newPlacementEngine([]models.Room{room}, 18, zap.NewNop())

	course := models.CurriculumCourse{
		ID: "course-1", SubjectCode: "CS101", SubjectName: "Intro to Programming",
		Program: "BSCS", YearLevel: "1", Semester: "1st Semester", TotalUnits: 3,
	}
	rule := lectureRule(1)
	instructor := models.Instructor{ID: "inst-1", FirstName: "Juan", LastName: "Dela Cruz", Status: models.InstructorApproved}

	sessions, ok := engine.placeSessions(course, rule, []models.FacultyCandidate{candidateFor(instructor)})

	require.True(t, ok)
	require.Len(t, sessions, 1)
	assert.Equal(t, "inst-1", sessions[0].InstructorID)
	assert.Equal(t, "room-1", sessions[0].RoomID)
	assert.Equal(t, 3, engine.tracks.workloadFor("inst-1"))
}

func TestPlaceSessionsFailsWhenNoCandidates(t *testing.T) {
	engine := newPlacementEngine([]models.Room{{ID: "room-1", Name: "Room 101"}}, 18, zap.NewNop())
	course := models.CurriculumCourse{ID: "course-1", SubjectCode: "CS101", TotalUnits: 1}
	rule := lectureRule(1)

	sessions, ok := engine.placeSessions(course, rule, nil)

	assert.False(t, ok)
	assert.Nil(t, sessions)
}

func TestPlaceSessionsSkipsCandidateOverCap(t *testing.T) {
	room := models.Room{ID: "room-1", Name: "Room 101"}
	engine := newPlacementEngine([]models.Room{room}, 3, zap.NewNop())
	course := models.CurriculumCourse{ID: "course-1", SubjectCode: "CS101", TotalUnits: 6}
	rule := lectureRule(1)
	instructor := models.Instructor{ID: "inst-1", Status: models.InstructorApproved}

	sessions, ok := engine.placeSessions(course, rule, []models.FacultyCandidate{candidateFor(instructor)})

	assert.False(t, ok)
	assert.Nil(t, sessions)
}

func TestDaysNeededForSingleSessionSkipsUsedDays(t *testing.T) {
	tracks := newTrackingTables()
	tracks.subjectDaysUsed[models.SubjectSemesterKey{SubjectCode: "CS101", Semester: "1st Semester"}] = map[models.Weekday]struct{}{
		models.Monday: {},
	}
	rule := models.SessionRule{SessionsPerWeek: 1}

	groups := daysNeeded(rule, "CS101", "1st Semester", tracks)

	for _, g := range groups {
		assert.NotEqual(t, models.Monday, g[0])
	}
	assert.Len(t, groups, 5)
}

func TestDaysNeededForPairedSessionUsesDayPairs(t *testing.T) {
	tracks := newTrackingTables()
	rule := models.SessionRule{SessionsPerWeek: 2, Tag: models.SessionTagLecture}

	groups := daysNeeded(rule, "CS101", "1st Semester", tracks)

	assert.Equal(t, len(lecturePairs), len(groups))
}

func TestBuildSessionsProducesOnePerDay(t *testing.T) {
	course := models.CurriculumCourse{ID: "course-1", SubjectCode: "CS101", LecUnits: 3, TotalUnits: 3}
	rule := models.SessionRule{Tag: models.SessionTagLecture}
	instructor := models.Instructor{ID: "inst-1", FirstName: "Juan", LastName: "Dela Cruz"}
	room := models.Room{ID: "room-1", Name: "Room 101"}

	sessions := buildSessions(course, rule, instructor, room, []models.Weekday{models.Monday, models.Wednesday}, timeSlot{Start: 8 * 60, End: 9 * 60})

	require.Len(t, sessions, 2)
	assert.Equal(t, models.Monday, sessions[0].Day)
	assert.Equal(t, models.Wednesday, sessions[1].Day)
	assert.Equal(t, "Juan Dela Cruz", sessions[0].InstructorName)
}

func TestUnplaceableWarningNamesTheCourse(t *testing.T) {
	course := models.CurriculumCourse{SubjectCode: "CS101", SubjectName: "Intro to Programming", Program: "BSCS", YearLevel: "1", Semester: "1st Semester"}
	rule := models.SessionRule{Tag: models.SessionTagLaboratory}

	warning := unplaceableWarning(course, rule)

	assert.Contains(t, warning, "CS101")
	assert.Contains(t, warning, "laboratory")
}
