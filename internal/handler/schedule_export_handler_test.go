package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/middleware"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type scheduleExporterMock struct {
	createResp *dto.ScheduleExportJobResponse
	createErr  error
	statusResp *dto.ScheduleExportStatusResponse
	statusErr  error
	captured   string
}

func (m *scheduleExporterMock) CreateJob(ctx context.Context, req dto.ScheduleExportRequest, actorID string, role models.InstructorRole) (*dto.ScheduleExportJobResponse, error) {
	m.captured = actorID
	return m.createResp, m.createErr
}

func (m *scheduleExporterMock) GetStatus(ctx context.Context, id string) (*dto.ScheduleExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *scheduleExporterMock) ResolveDownload(ctx context.Context, token string) (*service.ScheduleExportDownload, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
}

func TestScheduleExportHandlerCreateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleExportHandler(&scheduleExporterMock{})
	payload := []byte(`{"type":"TIMETABLE","format":"csv","curriculumYear":"2025-2026","semester":"1st Semester"}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/export", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.CreateExport(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleExportHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleExporterMock{createResp: &dto.ScheduleExportJobResponse{ID: "job-1", Status: models.ScheduleExportQueued}}
	h := NewScheduleExportHandler(mockSvc)
	payload := []byte(`{"type":"TIMETABLE","format":"csv","curriculumYear":"2025-2026","semester":"1st Semester"}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/export", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.AccessClaims{Subject: "registrar-1", Role: models.RoleRegistrar})

	h.CreateExport(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "registrar-1", mockSvc.captured)
}

func TestScheduleExportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleExporterMock{statusResp: &dto.ScheduleExportStatusResponse{ID: "job-1", Status: models.ScheduleExportFinished, Progress: 100}}
	h := NewScheduleExportHandler(mockSvc)
	req, _ := http.NewRequest(http.MethodGet, "/schedules/export/job-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	h.ExportStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleExportHandlerDownloadRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleExportHandler(&scheduleExporterMock{})
	req, _ := http.NewRequest(http.MethodGet, "/schedules/export/download/bad-token", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "bad-token"}}

	h.DownloadExport(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}
