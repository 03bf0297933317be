package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/jobs"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ScheduleExportJob) error
	GetByID(ctx context.Context, id string) (*models.ScheduleExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ScheduleExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ScheduleExportJob) (*ExportResult, error)
}

// ScheduleExportService orchestrates the lifecycle of asynchronous
// timetable/prospectus export jobs, grounded on the teacher's report job
// service.
type ScheduleExportService struct {
	repo     exportJobStore
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      ScheduleExportServiceConfig
}

// ScheduleExportServiceConfig governs queue recovery and cleanup.
type ScheduleExportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ScheduleExportDownload aggregates resolved download data.
type ScheduleExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ScheduleExportFormat
	ExpiresAt time.Time
}

// NewScheduleExportService constructs the export service.
func NewScheduleExportService(repo exportJobStore, queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg ScheduleExportServiceConfig) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ScheduleExportService{
		repo:     repo,
		queue:    queue,
		exporter: exporter,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateJob validates the request, persists the job, and enqueues processing.
// Exports touch whole-program timetables rather than a single class, so
// authorization is role-based rather than the teacher's per-class ownership
// check: plain faculty cannot request exports, only staff who administer
// scheduling can.
func (s *ScheduleExportService) CreateJob(ctx context.Context, req dto.ScheduleExportRequest, actorID string, actorRole models.InstructorRole) (*dto.ScheduleExportJobResponse, error) {
	if !canRequestExport(actorRole) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role is not permitted to request schedule exports")
	}
	if err := validateExportRequest(req); err != nil {
		return nil, err
	}
	job := &models.ScheduleExportJob{
		Type: req.Type,
		Params: models.ScheduleExportParams{
			CurriculumYear: req.CurriculumYear,
			AcademicYear:   req.AcademicYear,
			Semester:       req.Semester,
			Program:        req.Program,
			Format:         req.Format,
		},
		Status:    models.ScheduleExportQueued,
		Progress:  0,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		status := models.ScheduleExportFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ScheduleExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ScheduleExportService) GetStatus(ctx context.Context, id string) (*dto.ScheduleExportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	resp := &dto.ScheduleExportStatusResponse{
		ID:       job.ID,
		Status:   job.Status,
		Progress: job.Progress,
	}
	if job.ResultURL != nil {
		resp.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ScheduleExportService) ResolveDownload(ctx context.Context, token string) (*ScheduleExportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ScheduleExportFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	filename := filepath.Base(relPath)
	return &ScheduleExportDownload{
		File:      file,
		Filename:  filename,
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs (e.g. after process restart).
func (s *ScheduleExportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ScheduleExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ScheduleExportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		finished, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(finished) == 0 {
			break
		}
		for _, job := range finished {
			if job.ResultURL == nil {
				continue
			}
			token := extractToken(*job.ResultURL)
			if token == "" {
				continue
			}
			_, relPath, _, err := s.exporter.ParseToken(token, true)
			if err != nil {
				continue
			}
			if err := s.exporter.Delete(relPath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(finished) < 100 {
			break
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func canRequestExport(role models.InstructorRole) bool {
	switch role {
	case models.RoleRegistrar, models.RoleDepartmentHead, models.RoleCampusAdmin:
		return true
	default:
		return false
	}
}

func validateExportRequest(req dto.ScheduleExportRequest) error {
	if req.Type != models.ScheduleExportTimetable && req.Type != models.ScheduleExportProspectus {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported export type")
	}
	if req.Format != models.ScheduleExportCSV && req.Format != models.ScheduleExportPDF {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if req.Type == models.ScheduleExportTimetable && (req.CurriculumYear == "" || req.Semester == "") {
		return appErrors.Clone(appErrors.ErrValidation, "curriculumYear and semester are required for timetable exports")
	}
	if req.Type == models.ScheduleExportProspectus && (req.AcademicYear == "" || req.Program == "") {
		return appErrors.Clone(appErrors.ErrValidation, "academicYear and program are required for prospectus exports")
	}
	return nil
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ScheduleExportWorker bridges queue jobs to ExportService.
type ScheduleExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
}

// NewScheduleExportWorker constructs a worker.
func NewScheduleExportWorker(repo exportJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ScheduleExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ScheduleExportWorker{
		repo:       repo,
		exporter:   exporter,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job.
func (w *ScheduleExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ScheduleExportProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ScheduleExportFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
		} else {
			queued := models.ScheduleExportQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}
	finished := models.ScheduleExportFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}
