package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/pkg/export"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

type scheduleDataSourceStub struct{}

func (scheduleDataSourceStub) Generate(ctx context.Context, req dto.GenerateRequest) (*models.GenerationResult, error) {
	return &models.GenerationResult{
		Subjects: []models.ScheduledSession{
			{
				SubjectCode: "CS101", SubjectName: "Intro to Computing", Program: "BSCS", YearLevel: "1st Year",
				Tag: models.SessionTagLecture, Day: models.Monday, StartMinute: 480, EndMinute: 540,
				InstructorName: "Jane Cruz", RoomName: "Room 101",
			},
		},
		TotalSubjects: 1,
	}, nil
}

func (scheduleDataSourceStub) Prospectus(ctx context.Context, academicYear, program string) ([]models.ProspectusGroup, error) {
	return []models.ProspectusGroup{
		{
			YearLevel: "1st Year",
			Semester:  "1st Semester",
			Courses: []models.ProspectusCourse{
				{SubjectCode: "CS101", SubjectName: "Intro to Computing", LecUnits: 2, LabUnits: 1, TotalUnits: 3},
			},
			TotalUnits: 3,
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportServiceConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(scheduleDataSourceStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateTimetableCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ScheduleExportJob{
		ID:        "job-1",
		Type:      models.ScheduleExportTimetable,
		Params:    models.ScheduleExportParams{CurriculumYear: "2025-2026", Semester: "1st Semester", Format: models.ScheduleExportCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/schedules/export/download/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateProspectusPDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ScheduleExportJob{
		ID:        "job-2",
		Type:      models.ScheduleExportProspectus,
		Params:    models.ScheduleExportParams{AcademicYear: "2025-2026", Program: "BSCS", Format: models.ScheduleExportPDF},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ScheduleExportPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
