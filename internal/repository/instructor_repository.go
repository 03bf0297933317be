package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

const instructorColumns = `id, first_name, last_name, role, designation, department, specializations,
previous_subjects, years_of_experience, preferred_window, available_days, status, created_at, updated_at`

// InstructorRepository manages persistence for schedulable faculty, merging
// the teacher's separate profile and preference tables into one row.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an instructor repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors matching filter criteria, paginated.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	base := "FROM instructors WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"last_name":  true,
		"department": true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "last_name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", instructorColumns, base, sortBy, order, size, offset)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}
	if err := hydrateInstructors(instructors); err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// ListSchedulable returns every approved instructor eligible for placement,
// unpaginated, as the faculty scorer needs the complete candidate pool.
func (r *InstructorRepository) ListSchedulable(ctx context.Context) ([]models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE status = $1 ORDER BY last_name ASC", instructorColumns)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, models.InstructorApproved); err != nil {
		return nil, fmt.Errorf("list schedulable instructors: %w", err)
	}
	if err := hydrateInstructors(instructors); err != nil {
		return nil, err
	}
	return instructors, nil
}

// FindByID returns an instructor by ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE id = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	if err := instructor.Hydrate(); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func hydrateInstructors(instructors []models.Instructor) error {
	for i := range instructors {
		if err := instructors[i].Hydrate(); err != nil {
			return fmt.Errorf("hydrate instructor %s: %w", instructors[i].ID, err)
		}
	}
	return nil
}
