package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
)

func TestScheduleGeneratorServiceGenerateSuccess(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	result, err := svc.Generate(context.Background(), dto.GenerateRequest{
		CurriculumYear: "2025-2026",
		Semester:       "1st Semester",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalSubjects)
	assert.NotEmpty(t, result.Subjects)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "Juan Dela Cruz", result.Subjects[0].InstructorName)
}

func TestScheduleGeneratorServiceGenerateNoCourses(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	_, err := svc.Generate(context.Background(), dto.GenerateRequest{
		CurriculumYear: "2099-2100",
		Semester:       "1st Semester",
	})
	require.Error(t, err)
}

func TestScheduleGeneratorServiceGenerateRejectsUnknownSemester(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	_, err := svc.Generate(context.Background(), dto.GenerateRequest{
		CurriculumYear: "2025-2026",
		Semester:       "Midterm",
	})
	require.Error(t, err)
}

func TestScheduleGeneratorServiceSaveReplacesPeriod(t *testing.T) {
	svc, schedules := newGeneratorServiceFixture()

	resp, err := svc.Save(context.Background(), dto.SaveRequest{
		Sessions: []dto.SessionResponse{
			{
				SubjectCode: "CS101", SubjectName: "Intro to Programming",
				Program: "BSCS", YearLevel: "1", Semester: "1st Semester", CurriculumYear: "2025-2026",
				Tag: "LECTURE", Day: "Monday", StartTime: "08:00", EndTime: "09:00",
				InstructorID: "inst-1", InstructorName: "Juan Dela Cruz", RoomID: "room-1", RoomName: "Room 101",
				LecUnits: 1, Units: 1,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Inserted)
	assert.Len(t, schedules.replaced, 1)
}

func TestScheduleGeneratorServiceSaveRejectsMixedPeriods(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	_, err := svc.Save(context.Background(), dto.SaveRequest{
		Sessions: []dto.SessionResponse{
			{SubjectCode: "CS101", CurriculumYear: "2025-2026", Program: "BSCS", Semester: "1st Semester", Day: "Monday", StartTime: "08:00", EndTime: "09:00"},
			{SubjectCode: "CS102", CurriculumYear: "2026-2027", Program: "BSCS", Semester: "1st Semester", Day: "Monday", StartTime: "08:00", EndTime: "09:00"},
		},
	})
	require.Error(t, err)
}

func TestScheduleGeneratorServiceSaveRejectsBadClock(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	_, err := svc.Save(context.Background(), dto.SaveRequest{
		Sessions: []dto.SessionResponse{
			{SubjectCode: "CS101", CurriculumYear: "2025-2026", Program: "BSCS", Semester: "1st Semester", Day: "Monday", StartTime: "09:00", EndTime: "08:00"},
		},
	})
	require.Error(t, err)
}

func TestScheduleGeneratorServiceListRequiresAcademicYear(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	_, err := svc.List(context.Background(), dto.ListQuery{})
	require.Error(t, err)
}

func TestScheduleGeneratorServiceListDelegates(t *testing.T) {
	svc, schedules := newGeneratorServiceFixture()
	schedules.byYear["2025-2026"] = []models.PersistedSession{{SubjectCode: "CS101"}}

	sessions, err := svc.List(context.Background(), dto.ListQuery{AcademicYear: "2025-2026"})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestScheduleGeneratorServiceProspectusGroupsByYearAndSemester(t *testing.T) {
	svc, _ := newGeneratorServiceFixture()

	groups, err := svc.Prospectus(context.Background(), "2025-2026", "BSCS")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "1", groups[0].YearLevel)
	assert.Equal(t, 1, groups[0].TotalUnits)
}

// --- Fixtures ---

type generatorCourseStub struct {
	courses []models.CurriculumCourse
}

func (s generatorCourseStub) ListAllForGeneration(ctx context.Context, curriculumYear, semester, program string) ([]models.CurriculumCourse, error) {
	var out []models.CurriculumCourse
	for _, c := range s.courses {
		if c.CurriculumYear == curriculumYear && c.Semester == semester && (program == "" || c.Program == program) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s generatorCourseStub) ListForProspectus(ctx context.Context, academicYear, program string) ([]models.CurriculumCourse, error) {
	var out []models.CurriculumCourse
	for _, c := range s.courses {
		if c.CurriculumYear == academicYear && (program == "" || c.Program == program) {
			out = append(out, c)
		}
	}
	return out, nil
}

type generatorInstructorStub struct {
	instructors []models.Instructor
}

func (s generatorInstructorStub) ListSchedulable(ctx context.Context) ([]models.Instructor, error) {
	return s.instructors, nil
}

type generatorRoomStub struct {
	rooms []models.Room
}

func (s generatorRoomStub) ListAll(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type generatorScheduleStub struct {
	replaced []models.PersistedSession
	byYear   map[string][]models.PersistedSession
}

func (s *generatorScheduleStub) ReplaceForPeriod(ctx context.Context, academicYear, program, semester string, sessions []models.PersistedSession) (int, int, error) {
	s.replaced = sessions
	return 0, len(sessions), nil
}

func (s *generatorScheduleStub) ListByAcademicYear(ctx context.Context, academicYear string) ([]models.PersistedSession, error) {
	return s.byYear[academicYear], nil
}

func newGeneratorServiceFixture() (*ScheduleGeneratorService, *generatorScheduleStub) {
	courses := generatorCourseStub{courses: []models.CurriculumCourse{
		{
			ID: "course-1", CurriculumYear: "2025-2026", Program: "BSCS", YearLevel: "1",
			Semester: "1st Semester", SubjectCode: "CS101", SubjectName: "Intro to Programming",
			LecUnits: 1, TotalUnits: 1, Tags: []string{"programming"},
		},
	}}
	specializations, _ := json.Marshal([]string{"programming"})
	instructors := generatorInstructorStub{instructors: []models.Instructor{
		{
			ID: "inst-1", FirstName: "Juan", LastName: "Dela Cruz", Role: models.RoleFaculty,
			Status: models.InstructorApproved, SpecializationsRaw: specializations, YearsOfExperience: 5,
		},
	}}
	for i := range instructors.instructors {
		_ = instructors.instructors[i].Hydrate()
	}
	rooms := generatorRoomStub{rooms: []models.Room{{ID: "room-1", Name: "Room 101"}}}
	schedules := &generatorScheduleStub{byYear: make(map[string][]models.PersistedSession)}
	scorer := NewFacultyScorer(nil, zap.NewNop())

	svc := NewScheduleGeneratorService(courses, instructors, rooms, schedules, scorer, nil, nil, 18, time.Minute, zap.NewNop())
	return svc, schedules
}
