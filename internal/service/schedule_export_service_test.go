package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	"github.com/noah-isme/sma-adp-api/pkg/jobs"
)

type exportJobRepoStub struct {
	jobs        map[string]*models.ScheduleExportJob
	createErr   error
	getErr      error
	updateCalls []repository.UpdateExportJobParams
}

func newExportJobRepoStub() *exportJobRepoStub {
	return &exportJobRepoStub{jobs: make(map[string]*models.ScheduleExportJob)}
}

func (s *exportJobRepoStub) Create(ctx context.Context, job *models.ScheduleExportJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	if job.ID == "" {
		job.ID = "job-stub-1"
	}
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

func (s *exportJobRepoStub) GetByID(ctx context.Context, id string) (*models.ScheduleExportJob, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *job
	return &clone, nil
}

func (s *exportJobRepoStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	s.updateCalls = append(s.updateCalls, params)
	job, ok := s.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportJobRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ScheduleExportJob, error) {
	var out []models.ScheduleExportJob
	for _, job := range s.jobs {
		if job.Status == models.ScheduleExportQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportJobRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleExportJob, error) {
	var out []models.ScheduleExportJob
	for _, job := range s.jobs {
		if job.Status == models.ScheduleExportFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type exportQueueStub struct {
	enqueued  []jobs.Job
	enqueueErr error
}

func (q *exportQueueStub) Enqueue(job jobs.Job) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type exportGeneratorStub struct {
	result *ExportResult
	err    error
}

func (g *exportGeneratorStub) Generate(ctx context.Context, job *models.ScheduleExportJob) (*ExportResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newScheduleExportServiceForTest() (*ScheduleExportService, *exportJobRepoStub, *exportQueueStub) {
	repo := newExportJobRepoStub()
	queue := &exportQueueStub{}
	svc := NewScheduleExportService(repo, queue, nil, zap.NewNop(), ScheduleExportServiceConfig{})
	return svc, repo, queue
}

func TestScheduleExportServiceCreateJobRejectsFaculty(t *testing.T) {
	svc, _, _ := newScheduleExportServiceForTest()
	_, err := svc.CreateJob(context.Background(), dto.ScheduleExportRequest{
		Type:           models.ScheduleExportTimetable,
		CurriculumYear: "2025-2026",
		Semester:       "1st Semester",
		Format:         models.ScheduleExportCSV,
	}, "faculty-1", models.RoleFaculty)
	require.Error(t, err)
}

func TestScheduleExportServiceCreateJobEnqueues(t *testing.T) {
	svc, repo, queue := newScheduleExportServiceForTest()
	resp, err := svc.CreateJob(context.Background(), dto.ScheduleExportRequest{
		Type:           models.ScheduleExportTimetable,
		CurriculumYear: "2025-2026",
		Semester:       "1st Semester",
		Format:         models.ScheduleExportCSV,
	}, "registrar-1", models.RoleRegistrar)
	require.NoError(t, err)
	require.Equal(t, models.ScheduleExportQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	require.Contains(t, repo.jobs, resp.ID)
}

func TestScheduleExportServiceCreateJobValidatesRequest(t *testing.T) {
	svc, _, _ := newScheduleExportServiceForTest()
	_, err := svc.CreateJob(context.Background(), dto.ScheduleExportRequest{
		Type:   models.ScheduleExportTimetable,
		Format: models.ScheduleExportCSV,
	}, "registrar-1", models.RoleRegistrar)
	require.Error(t, err)
}

func TestScheduleExportServiceGetStatus(t *testing.T) {
	svc, repo, _ := newScheduleExportServiceForTest()
	repo.jobs["job-1"] = &models.ScheduleExportJob{
		ID: "job-1", Status: models.ScheduleExportProcessing, Progress: 40,
	}
	resp, err := svc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, models.ScheduleExportProcessing, resp.Status)
	require.Equal(t, 40, resp.Progress)
}

func TestScheduleExportWorkerHandleSuccess(t *testing.T) {
	repo := newExportJobRepoStub()
	repo.jobs["job-1"] = &models.ScheduleExportJob{ID: "job-1", Status: models.ScheduleExportQueued}
	gen := &exportGeneratorStub{result: &ExportResult{URL: "/api/v1/schedules/export/download/tok123", Format: models.ScheduleExportCSV}}
	worker := NewScheduleExportWorker(repo, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Type: "TIMETABLE"})
	require.NoError(t, err)
	require.Equal(t, models.ScheduleExportFinished, repo.jobs["job-1"].Status)
	require.Equal(t, 100, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].ResultURL)
}

func TestScheduleExportWorkerHandleFailureRetries(t *testing.T) {
	repo := newExportJobRepoStub()
	repo.jobs["job-1"] = &models.ScheduleExportJob{ID: "job-1", Status: models.ScheduleExportQueued}
	gen := &exportGeneratorStub{err: errors.New("render failed")}
	worker := NewScheduleExportWorker(repo, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Type: "TIMETABLE", Attempt: 1})
	require.Error(t, err)
	require.Equal(t, models.ScheduleExportQueued, repo.jobs["job-1"].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Type: "TIMETABLE", Attempt: 3})
	require.Error(t, err)
	require.Equal(t, models.ScheduleExportFailed, repo.jobs["job-1"].Status)
}
