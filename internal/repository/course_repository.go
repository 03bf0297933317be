package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

const courseColumns = "id, curriculum_year, program, year_level, semester, subject_code, subject_name, lec_units, lab_units, total_units, tags, created_at, updated_at"

// CourseRepository manages persistence for curriculum courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns curriculum courses matching filter criteria, paginated.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CurriculumCourse, int, error) {
	base := "FROM curriculum_courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CurriculumYear != "" {
		conditions = append(conditions, fmt.Sprintf("curriculum_year = $%d", len(args)+1))
		args = append(args, filter.CurriculumYear)
	}
	if filter.Program != "" {
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)+1))
		args = append(args, filter.Program)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"subject_code": true,
		"year_level":   true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "subject_code"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courseColumns, base, sortBy, order, size, offset)
	var courses []models.CurriculumCourse
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list curriculum courses: %w", err)
	}
	for i := range courses {
		if err := courses[i].Hydrate(); err != nil {
			return nil, 0, fmt.Errorf("hydrate curriculum course %s: %w", courses[i].ID, err)
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count curriculum courses: %w", err)
	}
	return courses, total, nil
}

// ListAllForGeneration returns every course for a (curriculum year, semester,
// program?) tuple, unpaginated, as the generator needs the complete set.
func (r *CourseRepository) ListAllForGeneration(ctx context.Context, curriculumYear, semester, program string) ([]models.CurriculumCourse, error) {
	base := "FROM curriculum_courses WHERE curriculum_year = $1 AND semester = $2"
	args := []interface{}{curriculumYear, semester}
	if program != "" {
		base += fmt.Sprintf(" AND program = $%d", len(args)+1)
		args = append(args, program)
	}
	query := fmt.Sprintf("SELECT %s %s ORDER BY subject_code ASC", courseColumns, base)
	var courses []models.CurriculumCourse
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses for generation: %w", err)
	}
	for i := range courses {
		if err := courses[i].Hydrate(); err != nil {
			return nil, fmt.Errorf("hydrate curriculum course %s: %w", courses[i].ID, err)
		}
	}
	return courses, nil
}

// ListForProspectus returns every course for an (academic year, program)
// tuple grouped later by the caller into year-level/semester buckets.
func (r *CourseRepository) ListForProspectus(ctx context.Context, academicYear, program string) ([]models.CurriculumCourse, error) {
	base := "FROM curriculum_courses WHERE curriculum_year = $1 AND program = $2"
	query := fmt.Sprintf("SELECT %s %s ORDER BY year_level ASC, semester ASC, subject_code ASC", courseColumns, base)
	var courses []models.CurriculumCourse
	if err := r.db.SelectContext(ctx, &courses, query, academicYear, program); err != nil {
		return nil, fmt.Errorf("list courses for prospectus: %w", err)
	}
	for i := range courses {
		if err := courses[i].Hydrate(); err != nil {
			return nil, fmt.Errorf("hydrate curriculum course %s: %w", courses[i].ID, err)
		}
	}
	return courses, nil
}

// FindByID returns a curriculum course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CurriculumCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM curriculum_courses WHERE id = $1", courseColumns)
	var course models.CurriculumCourse
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	if err := course.Hydrate(); err != nil {
		return nil, fmt.Errorf("hydrate curriculum course %s: %w", course.ID, err)
	}
	return &course, nil
}
