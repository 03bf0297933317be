package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/pkg/export"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

// scheduleDataSource supplies the data an export job renders into a file,
// reusing the same generator and prospectus lookups the interactive
// endpoints call.
type scheduleDataSource interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*models.GenerationResult, error)
	Prospectus(ctx context.Context, academicYear, program string) ([]models.ProspectusGroup, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportServiceConfig tunes export behaviour.
type ExportServiceConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ScheduleExportFormat
	ExpiresAt    time.Time
}

// ExportService builds timetable/prospectus datasets and persists rendered
// files, grounded on the teacher's report renderer pipeline.
type ExportService struct {
	source  scheduleDataSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportServiceConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(source scheduleDataSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportServiceConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		source:  source,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds a dataset according to the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ScheduleExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ScheduleExportCSV:
		payload, err = s.csv.Render(dataset)
	case models.ScheduleExportPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/schedules/export/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ScheduleExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	namePart := sanitizeFilename(job.Params.CurriculumYear + "_" + job.Params.Semester)
	name := fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), namePart, timestamp, job.Params.Format)
	return name
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ScheduleExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ScheduleExportTimetable:
		return s.buildTimetableDataset(ctx, job.Params)
	case models.ScheduleExportProspectus:
		return s.buildProspectusDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) buildTimetableDataset(ctx context.Context, params models.ScheduleExportParams) (export.Dataset, string, error) {
	result, err := s.source.Generate(ctx, dto.GenerateRequest{
		CurriculumYear: params.CurriculumYear,
		Semester:       params.Semester,
		Program:        params.Program,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}

	rows := make([]map[string]string, 0, len(result.Subjects))
	for _, session := range result.Subjects {
		rows = append(rows, map[string]string{
			"Subject Code": session.SubjectCode,
			"Subject Name": session.SubjectName,
			"Program":      session.Program,
			"Year Level":   session.YearLevel,
			"Type":         string(session.Tag),
			"Day":          session.Day.String(),
			"Start":        minutesToClock(session.StartMinute),
			"End":          minutesToClock(session.EndMinute),
			"Instructor":   session.InstructorName,
			"Room":         session.RoomName,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Subject Code", "Subject Name", "Program", "Year Level", "Type", "Day", "Start", "End", "Instructor", "Room"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Timetable %s %s", params.CurriculumYear, params.Semester)
	return dataset, title, nil
}

func (s *ExportService) buildProspectusDataset(ctx context.Context, params models.ScheduleExportParams) (export.Dataset, string, error) {
	groups, err := s.source.Prospectus(ctx, params.AcademicYear, params.Program)
	if err != nil {
		return export.Dataset{}, "", err
	}

	rows := make([]map[string]string, 0)
	for _, group := range groups {
		for _, course := range group.Courses {
			rows = append(rows, map[string]string{
				"Year Level":   group.YearLevel,
				"Semester":     group.Semester,
				"Subject Code": course.SubjectCode,
				"Subject Name": course.SubjectName,
				"Lec Units":    fmt.Sprintf("%d", course.LecUnits),
				"Lab Units":    fmt.Sprintf("%d", course.LabUnits),
				"Total Units":  fmt.Sprintf("%d", course.TotalUnits),
			})
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Year Level", "Semester", "Subject Code", "Subject Name", "Lec Units", "Lab Units", "Total Units"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Prospectus %s %s", params.AcademicYear, params.Program)
	return dataset, title, nil
}
