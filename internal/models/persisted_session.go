package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PersistedSessionStatus mirrors the status strings fixed by the spec for a
// persisted timetable row.
type PersistedSessionStatus string

const (
	PersistedStatusConflictFree PersistedSessionStatus = "conflict-free"
	PersistedStatusActive       PersistedSessionStatus = "active"
	PersistedStatusConflict     PersistedSessionStatus = "conflict"
)

// PersistedSession is the bit-exact denormalized row the persistence adapter
// reads and writes for the `subject_schedule` table (spec §6).
type PersistedSession struct {
	ID                 int64                  `db:"id" json:"id"`
	SubjectCode        string                 `db:"subject_code" json:"subject_code"`
	SubjectName        string                 `db:"subject_name" json:"subject_name"`
	FacultyID          string                 `db:"faculty_id" json:"faculty_id"`
	FacultyName        string                 `db:"faculty_name" json:"faculty_name"`
	RoomName           string                 `db:"room_name" json:"room_name"`
	Day                string                 `db:"day" json:"day"`
	StartTime          string                 `db:"start_time" json:"start_time"`
	EndTime            string                 `db:"end_time" json:"end_time"`
	Semester           string                 `db:"semester" json:"semester"`
	AcademicYear       string                 `db:"academic_year" json:"academic_year"`
	Program            string                 `db:"program" json:"program"`
	YearLevel          string                 `db:"year_level" json:"year_level"`
	Units              int                    `db:"units" json:"units"`
	Lec                int                    `db:"lec" json:"lec"`
	Lab                int                    `db:"lab" json:"lab"`
	Tags               types.JSONText         `db:"tags" json:"tags,omitempty"`
	RecommendedFaculty types.JSONText         `db:"recommended_faculty" json:"recommended_faculty,omitempty"`
	HasConflict        bool                   `db:"has_conflict" json:"has_conflict"`
	Status             PersistedSessionStatus `db:"status" json:"status"`
	IsActive           bool                   `db:"is_active" json:"is_active"`
	CreatedAt          time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time              `db:"updated_at" json:"updated_at"`
	LastGenerated      time.Time              `db:"last_generated" json:"last_generated"`
}

// ScheduleFilter captures query parameters for listing persisted sessions.
type ScheduleFilter struct {
	AcademicYear string
	Program      string
	Semester     string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
