package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func TestValidateFlagsHoursMismatch(t *testing.T) {
	courses := []models.CurriculumCourse{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", LecUnits: 3, LabUnits: 0},
	}
	sessions := []models.ScheduledSession{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Tag: models.SessionTagLecture, Day: models.Monday, StartMinute: 8 * 60, EndMinute: 9 * 60},
	}

	report := Validate(courses, sessions)

	require.Len(t, report.Issues, 2, "hours mismatch and lecture-count both fire for a single 1h session against 3 lec units")
	assert.Equal(t, models.ValidationLevelError, report.Issues[0].Level)
	assert.Equal(t, models.ValidationLevelWarning, report.Issues[1].Level)
	assert.Less(t, report.OptimizationScore, 100.0)
}

func TestValidatePassesWhenHoursMatchExpected(t *testing.T) {
	courses := []models.CurriculumCourse{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", LecUnits: 3, LabUnits: 0},
	}
	sessions := []models.ScheduledSession{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Tag: models.SessionTagLecture, Day: models.Monday, StartMinute: 8 * 60, EndMinute: 9*60 + 30},
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Tag: models.SessionTagLecture, Day: models.Wednesday, StartMinute: 8 * 60, EndMinute: 9*60 + 30},
	}

	report := Validate(courses, sessions)

	assert.Empty(t, report.Issues)
	assert.Equal(t, 100.0, report.OptimizationScore)
}

func TestValidateWarnsWhenLectureSessionCountIsOff(t *testing.T) {
	courses := []models.CurriculumCourse{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", LecUnits: 2, LabUnits: 0},
	}
	sessions := []models.ScheduledSession{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Tag: models.SessionTagLecture, Day: models.Monday, StartMinute: 8 * 60, EndMinute: 10 * 60},
	}

	report := Validate(courses, sessions)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.ValidationLevelWarning, report.Issues[0].Level)
}

func TestDetectCohortOverlapsFindsOverlappingPairs(t *testing.T) {
	sessions := []models.ScheduledSession{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Semester: "1st Semester", Day: models.Monday, StartMinute: 8 * 60, EndMinute: 9 * 60},
		{SubjectCode: "CS102", Program: "BSCS", YearLevel: "1", Semester: "1st Semester", Day: models.Monday, StartMinute: 8*60 + 30, EndMinute: 9*60 + 30},
	}

	issues := detectCohortOverlaps(sessions)

	require.Len(t, issues, 1)
	assert.Equal(t, models.ValidationLevelError, issues[0].Level)
}

func TestDetectCohortOverlapsIgnoresDifferentDays(t *testing.T) {
	sessions := []models.ScheduledSession{
		{SubjectCode: "CS101", Program: "BSCS", YearLevel: "1", Semester: "1st Semester", Day: models.Monday, StartMinute: 8 * 60, EndMinute: 9 * 60},
		{SubjectCode: "CS102", Program: "BSCS", YearLevel: "1", Semester: "1st Semester", Day: models.Tuesday, StartMinute: 8 * 60, EndMinute: 9 * 60},
	}

	issues := detectCohortOverlaps(sessions)

	assert.Empty(t, issues)
}
