package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// placementEngine places every session a SessionRule demands for one course,
// searching outer-over-ranked-instructors and committing all of a rule's
// sessions atomically or none, per spec §4.5.
type placementEngine struct {
	tracks    *trackingTables
	rooms     []models.Room
	labRooms  []models.Room
	lecRooms  []models.Room
	globalCap int
	logger    *zap.Logger
}

func newPlacementEngine(rooms []models.Room, globalCap int, logger *zap.Logger) *placementEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	lab := make([]models.Room, 0, len(rooms))
	lec := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.IsLaboratory() {
			lab = append(lab, r)
		} else {
			lec = append(lec, r)
		}
	}
	return &placementEngine{
		tracks:    newTrackingTables(),
		rooms:     rooms,
		labRooms:  lab,
		lecRooms:  lec,
		globalCap: globalCap,
		logger:    logger,
	}
}

// roomsFor returns the candidate room list for a session tag, falling back to
// every room when the specialized list is empty.
func (e *placementEngine) roomsFor(tag models.SessionTag) []models.Room {
	if tag == models.SessionTagLaboratory {
		if len(e.labRooms) > 0 {
			return e.labRooms
		}
		return e.rooms
	}
	if len(e.lecRooms) > 0 {
		return e.lecRooms
	}
	return e.rooms
}

// placeSessions attempts to place every session demanded by rule for course,
// searching candidates in rank order, day-pair order, then slot order, then
// room order. It commits all sessions of the rule or none, and reports
// whether placement succeeded.
func (e *placementEngine) placeSessions(course models.CurriculumCourse, rule models.SessionRule, candidates []models.FacultyCandidate) ([]models.ScheduledSession, bool) {
	slotTable := slotTableFor(rule.HoursPerSession)
	days := daysNeeded(rule, course.SubjectCode, course.Semester, e.tracks)

	for _, candidate := range candidates {
		instructor := candidate.Instructor
		alreadyCounted := e.hasExistingCourseLoad(instructor.ID, course.ID)
		projectedLoad := e.tracks.workloadFor(instructor.ID)
		if !alreadyCounted {
			projectedLoad += course.TotalUnits
		}
		if projectedLoad > instructor.Cap(e.globalCap) {
			continue
		}

		for _, dayGroup := range days {
			if !allAvailable(instructor, dayGroup) {
				continue
			}
			for _, slot := range slotTable {
				if !slotValid(slot.Start, slot.End) {
					continue
				}
				if !e.cohortsFree(course, dayGroup, slot) {
					continue
				}
				if !e.tracks.facultyFree(instructor, dayGroup, slot.Start, slot.End, course.Semester) {
					continue
				}
				room, ok := e.findFreeRoom(rule.Tag, dayGroup, slot, course.Semester)
				if !ok {
					continue
				}
				sessions := buildSessions(course, rule, instructor, room, dayGroup, slot)
				for _, s := range sessions {
					e.tracks.commit(s)
				}
				e.tracks.addWorkload(course.ID, instructor.ID, course.TotalUnits)
				return sessions, true
			}
		}
	}
	return nil, false
}

func (e *placementEngine) hasExistingCourseLoad(instructorID, courseID string) bool {
	if set, ok := e.tracks.facultyCourses[instructorID]; ok {
		_, found := set[courseID]
		return found
	}
	return false
}

func (e *placementEngine) cohortsFree(course models.CurriculumCourse, dayGroup []models.Weekday, slot timeSlot) bool {
	key := models.CohortKey{Program: course.Program, YearLevel: course.YearLevel, Semester: course.Semester}
	return e.tracks.cohortFree(key, dayGroup, slot.Start, slot.End)
}

func (e *placementEngine) findFreeRoom(tag models.SessionTag, dayGroup []models.Weekday, slot timeSlot, semester string) (models.Room, bool) {
	for _, room := range e.roomsFor(tag) {
		if e.tracks.roomFree(room.ID, dayGroup, slot.Start, slot.End, semester) {
			return room, true
		}
	}
	return models.Room{}, false
}

// daysNeeded enumerates the candidate day-groups for a rule: day-pairs for a
// two-sessions-per-week rule (filtered against subject_days_used), or single
// days for a one-session-per-week rule.
func daysNeeded(rule models.SessionRule, subjectCode, semester string, tracks *trackingTables) [][]models.Weekday {
	if rule.SessionsPerWeek == 2 {
		pairs := tracks.daysFreeOfSubject(subjectCode, semester, dayPairsFor(rule.Tag))
		groups := make([][]models.Weekday, 0, len(pairs))
		for _, p := range pairs {
			groups = append(groups, []models.Weekday{p[0], p[1]})
		}
		return groups
	}

	used := tracks.subjectDaysUsed[models.SubjectSemesterKey{SubjectCode: subjectCode, Semester: semester}]
	groups := make([][]models.Weekday, 0, 7)
	for d := models.Monday; d <= models.Saturday; d++ {
		if _, blocked := used[d]; blocked {
			continue
		}
		groups = append(groups, []models.Weekday{d})
	}
	return groups
}

func allAvailable(instructor models.Instructor, days []models.Weekday) bool {
	for _, d := range days {
		if !instructor.IsAvailableOn(d) {
			return false
		}
	}
	return true
}

// buildSessions renders the final ScheduledSession(s) for a successful
// placement: one per day in dayGroup, all sharing start/end and assignment.
func buildSessions(course models.CurriculumCourse, rule models.SessionRule, instructor models.Instructor, room models.Room, dayGroup []models.Weekday, slot timeSlot) []models.ScheduledSession {
	sessions := make([]models.ScheduledSession, 0, len(dayGroup))
	for _, day := range dayGroup {
		sessions = append(sessions, models.ScheduledSession{
			CourseID:       course.ID,
			SubjectCode:    course.SubjectCode,
			SubjectName:    course.SubjectName,
			Program:        course.Program,
			YearLevel:      course.YearLevel,
			Semester:       course.Semester,
			CurriculumYear: course.CurriculumYear,
			Tag:            rule.Tag,
			Day:            day,
			StartMinute:    slot.Start,
			EndMinute:      slot.End,
			InstructorID:   instructor.ID,
			InstructorName: instructor.FullName(),
			RoomID:         room.ID,
			RoomName:       room.Name,
			LecUnits:       course.LecUnits,
			LabUnits:       course.LabUnits,
			Units:          course.TotalUnits,
		})
	}
	return sessions
}

// unplaceableWarning renders the warning record emitted when a course's
// session rule could not be placed against any candidate, per the failure
// semantics in spec §4.5: log and continue, the run always succeeds.
func unplaceableWarning(course models.CurriculumCourse, rule models.SessionRule) string {
	return fmt.Sprintf("could not place %s %s session for %s (%s, %s %s)",
		course.SubjectCode, strings.ToLower(string(rule.Tag)), course.SubjectName, course.Program, course.YearLevel, course.Semester)
}
