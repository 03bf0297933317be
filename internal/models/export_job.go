package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleExportType enumerates the kinds of views that can be exported.
type ScheduleExportType string

const (
	ScheduleExportTimetable  ScheduleExportType = "TIMETABLE"
	ScheduleExportProspectus ScheduleExportType = "PROSPECTUS"
)

// ScheduleExportFormat enumerates supported rendering formats.
type ScheduleExportFormat string

const (
	ScheduleExportCSV ScheduleExportFormat = "csv"
	ScheduleExportPDF ScheduleExportFormat = "pdf"
)

// ScheduleExportStatus captures background job lifecycle states.
type ScheduleExportStatus string

const (
	ScheduleExportQueued     ScheduleExportStatus = "QUEUED"
	ScheduleExportProcessing ScheduleExportStatus = "PROCESSING"
	ScheduleExportFinished   ScheduleExportStatus = "FINISHED"
	ScheduleExportFailed     ScheduleExportStatus = "FAILED"
)

// ScheduleExportJob is persisted background job metadata for an asynchronous
// timetable or prospectus export, adapted from the teacher's ReportJob.
type ScheduleExportJob struct {
	ID           string                `db:"id" json:"id"`
	Type         ScheduleExportType    `db:"type" json:"type"`
	Params       ScheduleExportParams  `db:"params" json:"params"`
	Status       ScheduleExportStatus  `db:"status" json:"status"`
	Progress     int                   `db:"progress" json:"progress"`
	ResultURL    *string               `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string                `db:"created_by" json:"created_by"`
	CreatedAt    time.Time             `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time            `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string               `db:"error_message" json:"error_message,omitempty"`
}

// ScheduleExportParams stores request-scoped options persisted as JSONB.
type ScheduleExportParams struct {
	CurriculumYear string                `json:"curriculumYear"`
	AcademicYear   string                `json:"academicYear"`
	Semester       string                `json:"semester"`
	Program        string                `json:"program,omitempty"`
	Format         ScheduleExportFormat  `json:"format"`
}

// Value marshals params to JSON for persistence.
func (p ScheduleExportParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule export params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ScheduleExportParams) Scan(value interface{}) error {
	if value == nil {
		*p = ScheduleExportParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScheduleExportParams", value)
	}
	if len(data) == 0 {
		*p = ScheduleExportParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal schedule export params: %w", err)
	}
	return nil
}
