package dto

import "github.com/noah-isme/sma-adp-api/internal/models"

// ScheduleExportRequest captures POST /schedules/export payload.
type ScheduleExportRequest struct {
	Type           models.ScheduleExportType   `json:"type" validate:"required,oneof=TIMETABLE PROSPECTUS"`
	CurriculumYear string                      `json:"curriculumYear"`
	AcademicYear   string                      `json:"academicYear"`
	Semester       string                      `json:"semester"`
	Program        string                      `json:"program,omitempty"`
	Format         models.ScheduleExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ScheduleExportJobResponse is returned after enqueueing an export.
type ScheduleExportJobResponse struct {
	ID       string                      `json:"id"`
	Status   models.ScheduleExportStatus `json:"status"`
	Progress int                         `json:"progress"`
}

// ScheduleExportStatusResponse exposes job progress metadata.
type ScheduleExportStatusResponse struct {
	ID        string                      `json:"id"`
	Status    models.ScheduleExportStatus `json:"status"`
	Progress  int                         `json:"progress"`
	ResultURL *string                     `json:"resultUrl,omitempty"`
	Error     *string                     `json:"error,omitempty"`
}
