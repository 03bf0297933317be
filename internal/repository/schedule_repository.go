package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

const persistedSessionColumns = `id, subject_code, subject_name, faculty_id, faculty_name, room_name, day, start_time,
end_time, semester, academic_year, program, year_level, units, lec, lab, tags, recommended_faculty, has_conflict,
status, is_active, created_at, updated_at, last_generated`

// ScheduleRepository persists generated timetables to the subject_schedule
// table, grounded on the teacher's schedule repository and its
// BulkCreateWithTx transactional insert pattern.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns persisted sessions matching filter criteria, paginated.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.PersistedSession, int, error) {
	base := "FROM subject_schedule WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
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
		"day":          true,
		"subject_code": true,
		"created_at":   true,
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
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", persistedSessionColumns, base, sortBy, order, size, offset)
	var sessions []models.PersistedSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list persisted sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count persisted sessions: %w", err)
	}
	return sessions, total, nil
}

// ListByAcademicYear returns every persisted session for an academic year,
// unpaginated, for the list() external interface.
func (r *ScheduleRepository) ListByAcademicYear(ctx context.Context, academicYear string) ([]models.PersistedSession, error) {
	query := fmt.Sprintf("SELECT %s FROM subject_schedule WHERE academic_year = $1 ORDER BY subject_code ASC, day ASC, start_time ASC", persistedSessionColumns)
	var sessions []models.PersistedSession
	if err := r.db.SelectContext(ctx, &sessions, query, academicYear); err != nil {
		return nil, fmt.Errorf("list persisted sessions by academic year: %w", err)
	}
	return sessions, nil
}

// ReplaceForPeriod atomically deletes every row for (academic_year, program,
// semester) and inserts the replacement rows, returning the deleted/inserted
// counts. This is the save() external interface's persistence semantics per
// spec §6: a full replace, never a merge.
func (r *ScheduleRepository) ReplaceForPeriod(ctx context.Context, academicYear, program, semester string, sessions []models.PersistedSession) (deleted, inserted int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin replace schedule period: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleteQuery := `DELETE FROM subject_schedule WHERE academic_year = $1 AND program = $2 AND semester = $3`
	result, execErr := tx.ExecContext(ctx, deleteQuery, academicYear, program, semester)
	if execErr != nil {
		err = fmt.Errorf("delete existing schedule rows: %w", execErr)
		return 0, 0, err
	}
	deletedCount, _ := result.RowsAffected()

	insertedCount, insertErr := r.bulkInsertSessions(ctx, tx, sessions)
	if insertErr != nil {
		err = insertErr
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit replace schedule period: %w", err)
	}
	return int(deletedCount), insertedCount, nil
}

// BulkCreateWithTx inserts sessions using an existing transaction.
func (r *ScheduleRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, sessions []models.PersistedSession) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsertSessions(ctx, tx, sessions)
}

func (r *ScheduleRepository) bulkInsertSessions(ctx context.Context, exec sqlx.ExtContext, sessions []models.PersistedSession) (int, error) {
	now := time.Now().UTC()
	for i := range sessions {
		payload := sessions[i]
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now
		if payload.LastGenerated.IsZero() {
			payload.LastGenerated = now
		}
		if payload.Status == "" {
			payload.Status = models.PersistedStatusConflictFree
		}

		const query = `INSERT INTO subject_schedule (subject_code, subject_name, faculty_id, faculty_name, room_name,
day, start_time, end_time, semester, academic_year, program, year_level, units, lec, lab, tags,
recommended_faculty, has_conflict, status, is_active, created_at, updated_at, last_generated)
VALUES (:subject_code, :subject_name, :faculty_id, :faculty_name, :room_name, :day, :start_time, :end_time,
:semester, :academic_year, :program, :year_level, :units, :lec, :lab, :tags, :recommended_faculty, :has_conflict,
:status, :is_active, :created_at, :updated_at, :last_generated)`
		if _, err := sqlx.NamedExecContext(ctx, exec, query, &payload); err != nil {
			return 0, fmt.Errorf("bulk insert subject schedule row: %w", err)
		}
		sessions[i] = payload
	}
	return len(sessions), nil
}
