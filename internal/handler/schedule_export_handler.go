package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

type scheduleExporter interface {
	CreateJob(ctx context.Context, req dto.ScheduleExportRequest, actorID string, role models.InstructorRole) (*dto.ScheduleExportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ScheduleExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ScheduleExportDownload, error)
}

// ScheduleExportHandler exposes the asynchronous timetable/prospectus export endpoints.
type ScheduleExportHandler struct {
	exports scheduleExporter
}

// NewScheduleExportHandler constructs the handler.
func NewScheduleExportHandler(exports scheduleExporter) *ScheduleExportHandler {
	return &ScheduleExportHandler{exports: exports}
}

// CreateExport godoc
// @Summary Queue a new schedule export job
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /schedules/export [post]
func (h *ScheduleExportHandler) CreateExport(c *gin.Context) {
	var req dto.ScheduleExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), req, claims.Subject, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Get schedule export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/export/{id} [get]
func (h *ScheduleExportHandler) ExportStatus(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadExport godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /schedules/export/download/{token} [get]
func (h *ScheduleExportHandler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close() //nolint:errcheck
	info, err := file.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata"))
		return
	}
	contentType := mimeForFormat(file.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file.File, nil)
}

func mimeForFormat(format models.ScheduleExportFormat) string {
	if format == models.ScheduleExportPDF {
		return "application/pdf"
	}
	return "text/csv"
}
