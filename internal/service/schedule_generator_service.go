package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type courseSource interface {
	ListAllForGeneration(ctx context.Context, curriculumYear, semester, program string) ([]models.CurriculumCourse, error)
	ListForProspectus(ctx context.Context, academicYear, program string) ([]models.CurriculumCourse, error)
}

type instructorSource interface {
	ListSchedulable(ctx context.Context) ([]models.Instructor, error)
}

type roomSource interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type scheduleStore interface {
	ReplaceForPeriod(ctx context.Context, academicYear, program, semester string, sessions []models.PersistedSession) (int, int, error)
	ListByAcademicYear(ctx context.Context, academicYear string) ([]models.PersistedSession, error)
}

// ScheduleGeneratorService runs the constraint-based schedule generator: it
// loads the curriculum, ranks faculty, places sessions, validates the
// result, and persists or serves prospectus views of the outcome.
type ScheduleGeneratorService struct {
	courses     courseSource
	instructors instructorSource
	rooms       roomSource
	schedules   scheduleStore
	scorer      *FacultyScorer
	cache       *CacheService
	metrics     *MetricsService
	validate    *validator.Validate
	globalCap   int
	prospectTTL time.Duration
	logger      *zap.Logger
}

// NewScheduleGeneratorService constructs the orchestrator.
func NewScheduleGeneratorService(
	courses courseSource,
	instructors instructorSource,
	rooms roomSource,
	schedules scheduleStore,
	scorer *FacultyScorer,
	cache *CacheService,
	metrics *MetricsService,
	globalCap int,
	prospectTTL time.Duration,
	logger *zap.Logger,
) *ScheduleGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prospectTTL <= 0 {
		prospectTTL = 10 * time.Minute
	}
	return &ScheduleGeneratorService{
		courses:     courses,
		instructors: instructors,
		rooms:       rooms,
		schedules:   schedules,
		scorer:      scorer,
		cache:       cache,
		metrics:     metrics,
		validate:    validator.New(),
		globalCap:   globalCap,
		prospectTTL: prospectTTL,
		logger:      logger,
	}
}

// Generate builds a fresh schedule proposal for the requested curriculum
// year, semester, and optional program. It never persists the result; use
// Save to commit a proposal the caller has reviewed.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateRequest) (*models.GenerationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate request")
	}

	start := time.Now()
	program := req.NormalizedProgram()

	courses, err := s.courses.ListAllForGeneration(ctx, req.CurriculumYear, req.Semester, program)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load curriculum courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no curriculum courses found for the requested period")
	}
	sortCoursesForGeneration(courses)

	instructors, err := s.instructors.ListSchedulable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load schedulable instructors")
	}

	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rooms configured for scheduling")
	}

	engine := newPlacementEngine(rooms, s.globalCap, s.logger)

	var sessions []models.ScheduledSession
	var warnings []string
	facultyNamesByID := make(map[string]string)

	for _, course := range courses {
		for _, rule := range BuildSessionRules(course.LecUnits, course.LabUnits, course.Program) {
			candidates := s.scorer.Rank(ctx, course, instructors, engine.tracks.facultyWorkload, s.globalCap)
			placed, ok := engine.placeSessions(course, rule, candidates)
			if s.metrics != nil {
				s.metrics.RecordPlacement(ok)
			}
			if !ok {
				warnings = append(warnings, unplaceableWarning(course, rule))
				continue
			}
			sessions = append(sessions, placed...)
			for _, sess := range placed {
				facultyNamesByID[sess.InstructorID] = sess.InstructorName
			}
		}
	}

	report := Validate(courses, sessions)

	facultyNames := make([]string, 0, len(facultyNamesByID))
	for _, name := range facultyNamesByID {
		facultyNames = append(facultyNames, name)
	}
	sort.Strings(facultyNames)

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start))
	}

	return &models.GenerationResult{
		Subjects:          sessions,
		TotalSubjects:     len(courses),
		TotalFaculty:      len(facultyNamesByID),
		FacultyNames:      facultyNames,
		OptimizationScore: report.OptimizationScore,
		Validation:        report,
		Warnings:          warnings,
	}, nil
}

// sortCoursesForGeneration orders courses deterministically so that two
// generation runs over the same inputs place sessions in the same order.
func sortCoursesForGeneration(courses []models.CurriculumCourse) {
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i], courses[j]
		if a.YearLevel != b.YearLevel {
			return a.YearLevel < b.YearLevel
		}
		if a.Program != b.Program {
			return a.Program < b.Program
		}
		return a.SubjectCode < b.SubjectCode
	})
}

// Save replaces the persisted timetable for the sessions' shared curriculum
// year, program, and semester with the given set, per the full-replace
// semantics fixed for this operation: nothing outside that scope is
// touched, and nothing inside it survives unless it is in the new set.
func (s *ScheduleGeneratorService) Save(ctx context.Context, req dto.SaveRequest) (dto.SaveResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SaveResponse{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save request")
	}

	academicYear := req.Sessions[0].CurriculumYear
	program := req.Sessions[0].Program
	semester := req.Sessions[0].Semester

	persisted := make([]models.PersistedSession, 0, len(req.Sessions))
	for _, sess := range req.Sessions {
		if sess.CurriculumYear != academicYear || sess.Program != program || sess.Semester != semester {
			return dto.SaveResponse{}, appErrors.Clone(appErrors.ErrValidation, "sessions must share one curriculum year, program, and semester")
		}
		if err := validateSessionResponse(sess); err != nil {
			return dto.SaveResponse{}, err
		}
		persisted = append(persisted, models.PersistedSession{
			SubjectCode:  sess.SubjectCode,
			SubjectName:  sess.SubjectName,
			FacultyID:    sess.InstructorID,
			FacultyName:  sess.InstructorName,
			RoomName:     sess.RoomName,
			Day:          sess.Day,
			StartTime:    sess.StartTime,
			EndTime:      sess.EndTime,
			Semester:     sess.Semester,
			AcademicYear: sess.CurriculumYear,
			Program:      sess.Program,
			YearLevel:    sess.YearLevel,
			Units:        sess.Units,
			Lec:          sess.LecUnits,
			Lab:          sess.LabUnits,
			IsActive:     true,
		})
	}

	deleted, inserted, err := s.schedules.ReplaceForPeriod(ctx, academicYear, program, semester, persisted)
	if err != nil {
		return dto.SaveResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "replace persisted schedule")
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("scheduler:prospectus:%s:*", academicYear))
	}

	return dto.SaveResponse{Deleted: deleted, Inserted: inserted}, nil
}

// validateSessionResponse rejects a session payload whose day or clock
// values the save path cannot make sense of, since a malformed row would
// otherwise be written to the persisted timetable verbatim.
func validateSessionResponse(sess dto.SessionResponse) error {
	if _, err := models.ParseWeekday(sess.Day); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: %v", sess.SubjectCode, err))
	}
	start, err := clockToMinutes(sess.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: %v", sess.SubjectCode, err))
	}
	end, err := clockToMinutes(sess.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: %v", sess.SubjectCode, err))
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: start time must precede end time", sess.SubjectCode))
	}
	return nil
}

// List returns the persisted timetable for one academic year.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.ListQuery) ([]models.PersistedSession, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list query")
	}
	if query.AcademicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	sessions, err := s.schedules.ListByAcademicYear(ctx, query.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list persisted schedule")
	}
	return sessions, nil
}

// Prospectus returns the curriculum grouped by year level and semester for
// one academic year and program, cached since it changes only when the
// curriculum itself does.
func (s *ScheduleGeneratorService) Prospectus(ctx context.Context, academicYear, program string) ([]models.ProspectusGroup, error) {
	cacheKey := fmt.Sprintf("scheduler:prospectus:%s:%s", academicYear, program)

	if s.cache.Enabled() {
		var cached []models.ProspectusGroup
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	courses, err := s.courses.ListForProspectus(ctx, academicYear, program)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load prospectus courses")
	}

	groups := groupProspectus(courses)

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, groups, s.prospectTTL)
	}
	return groups, nil
}

type prospectusGroupKey struct {
	YearLevel string
	Semester  string
}

func groupProspectus(courses []models.CurriculumCourse) []models.ProspectusGroup {
	order := make([]prospectusGroupKey, 0)
	byKey := make(map[prospectusGroupKey][]models.ProspectusCourse)
	totals := make(map[prospectusGroupKey]int)

	for _, c := range courses {
		key := prospectusGroupKey{YearLevel: c.YearLevel, Semester: c.Semester}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], models.ProspectusCourse{
			SubjectCode: c.SubjectCode,
			SubjectName: c.SubjectName,
			LecUnits:    c.LecUnits,
			LabUnits:    c.LabUnits,
			TotalUnits:  c.TotalUnits,
			Tags:        c.Tags,
		})
		totals[key] += c.TotalUnits
	}

	groups := make([]models.ProspectusGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, models.ProspectusGroup{
			YearLevel:  key.YearLevel,
			Semester:   key.Semester,
			Courses:    byKey[key],
			TotalUnits: totals[key],
		})
	}
	return groups
}

// SessionToResponse renders a placed session for the wire, converting its
// packed weekday and minute-of-day fields to the display forms the API uses.
func SessionToResponse(s models.ScheduledSession) dto.SessionResponse {
	return dto.SessionResponse{
		CourseID:       s.CourseID,
		SubjectCode:    s.SubjectCode,
		SubjectName:    s.SubjectName,
		Program:        s.Program,
		YearLevel:      s.YearLevel,
		Semester:       s.Semester,
		CurriculumYear: s.CurriculumYear,
		Tag:            string(s.Tag),
		Day:            s.Day.String(),
		StartTime:      minutesToClock(s.StartMinute),
		EndTime:        minutesToClock(s.EndMinute),
		InstructorID:   s.InstructorID,
		InstructorName: s.InstructorName,
		RoomID:         s.RoomID,
		RoomName:       s.RoomName,
		LecUnits:       s.LecUnits,
		LabUnits:       s.LabUnits,
		Units:          s.Units,
	}
}

// IssueToResponse renders a validation issue for the wire.
func IssueToResponse(issue models.ValidationIssue) dto.ValidationIssueResponse {
	return dto.ValidationIssueResponse{
		Level:       string(issue.Level),
		Message:     issue.Message,
		SubjectCode: issue.SubjectCode,
		Program:     issue.Program,
		YearLevel:   issue.YearLevel,
	}
}

// GenerationToResponse renders a full generation result for the wire.
func GenerationToResponse(result *models.GenerationResult) dto.GenerateResponse {
	subjects := make([]dto.SessionResponse, 0, len(result.Subjects))
	for _, s := range result.Subjects {
		subjects = append(subjects, SessionToResponse(s))
	}
	issues := make([]dto.ValidationIssueResponse, 0, len(result.Validation.Issues))
	for _, issue := range result.Validation.Issues {
		issues = append(issues, IssueToResponse(issue))
	}
	return dto.GenerateResponse{
		Subjects:          subjects,
		TotalSubjects:     result.TotalSubjects,
		TotalFaculty:      result.TotalFaculty,
		FacultyNames:      result.FacultyNames,
		OptimizationScore: result.OptimizationScore,
		Issues:            issues,
		Warnings:          result.Warnings,
	}
}
