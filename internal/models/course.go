package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CurriculumCourse represents a single curriculum row for a (curriculum year,
// program, year level, semester) combination.
type CurriculumCourse struct {
	ID             string         `db:"id" json:"id"`
	CurriculumYear string         `db:"curriculum_year" json:"curriculum_year"`
	Program        string         `db:"program" json:"program"`
	YearLevel      string         `db:"year_level" json:"year_level"`
	Semester       string         `db:"semester" json:"semester"`
	SubjectCode    string         `db:"subject_code" json:"subject_code"`
	SubjectName    string         `db:"subject_name" json:"subject_name"`
	LecUnits       int            `db:"lec_units" json:"lec_units"`
	LabUnits       int            `db:"lab_units" json:"lab_units"`
	TotalUnits     int            `db:"total_units" json:"total_units"`
	TagsRaw        types.JSONText `db:"tags" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	Tags []string `db:"-" json:"tags,omitempty"`
}

// Hydrate decodes the raw JSON tag payload into the Tags slice. Safe to call
// repeatedly; a nil or empty payload leaves Tags nil.
func (c *CurriculumCourse) Hydrate() error {
	if len(c.TagsRaw) == 0 {
		return nil
	}
	return json.Unmarshal(c.TagsRaw, &c.Tags)
}

// TagSet returns the course's tags normalized to lowercase for set comparisons.
func (c CurriculumCourse) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// CourseFilter captures query parameters for listing curriculum courses.
type CourseFilter struct {
	CurriculumYear string
	Program        string
	Semester       string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
