package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*models.GenerationResult, error)
	Save(ctx context.Context, req dto.SaveRequest) (dto.SaveResponse, error)
	List(ctx context.Context, query dto.ListQuery) ([]models.PersistedSession, error)
	Prospectus(ctx context.Context, academicYear, program string) ([]models.ProspectusGroup, error)
}

// ScheduleGeneratorHandler exposes the schedule generation, persistence, and
// prospectus endpoints.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate a schedule proposal
// @Description Builds a proposal for one curriculum year, semester, and optional program. Never persisted.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generate request"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, service.GenerationToResponse(result), nil)
}

// Save godoc
// @Summary Persist a reviewed schedule proposal
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.SaveRequest true "Save request"
// @Success 201 {object} response.Envelope
// @Router /schedules/save [post]
func (h *ScheduleGeneratorHandler) Save(c *gin.Context) {
	var req dto.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	result, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List the persisted timetable for an academic year
// @Tags Scheduler
// @Produce json
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleGeneratorHandler) List(c *gin.Context) {
	query := dto.ListQuery{AcademicYear: c.Query("academicYear")}
	sessions, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Prospectus godoc
// @Summary Get the curriculum prospectus for an academic year and program
// @Tags Scheduler
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param program query string false "Program code"
// @Success 200 {object} response.Envelope
// @Router /schedules/prospectus [get]
func (h *ScheduleGeneratorHandler) Prospectus(c *gin.Context) {
	academicYear := c.Query("academicYear")
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear is required"))
		return
	}
	groups, err := h.service.Prospectus(c.Request.Context(), academicYear, c.Query("program"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
