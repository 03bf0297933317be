package dto

// ProspectusQuery filters a curriculum prospectus view.
type ProspectusQuery struct {
	AcademicYear string `form:"academicYear" json:"academicYear" validate:"required"`
	Program      string `form:"program" json:"program" validate:"required"`
}
