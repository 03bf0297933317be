package service

import "github.com/noah-isme/sma-adp-api/internal/models"

// bookingInterval is a packed (semester, day, start, end) triple tracked
// against an instructor or a room.
type bookingInterval struct {
	Semester string
	Day      models.Weekday
	Start    int
	End      int
}

// cohortInterval is a packed (day, start, end) triple tracked against a
// student cohort; cohorts are already semester-scoped by their key.
type cohortInterval struct {
	Day   models.Weekday
	Start int
	End   int
}

// trackingTables holds the shared mutable booking and workload maps for the life of
// one generation run, per spec §3 and the design notes in §9. It is owned
// exclusively by one placement run; there is no cross-run sharing.
type trackingTables struct {
	facultyBookings map[string][]bookingInterval
	roomBookings    map[string][]bookingInterval
	cohortBookings  map[models.CohortKey][]cohortInterval
	facultyWorkload map[string]int
	facultyCourses  map[string]map[string]struct{}
	subjectDaysUsed map[models.SubjectSemesterKey]map[models.Weekday]struct{}
}

func newTrackingTables() *trackingTables {
	return &trackingTables{
		facultyBookings: make(map[string][]bookingInterval),
		roomBookings:    make(map[string][]bookingInterval),
		cohortBookings:  make(map[models.CohortKey][]cohortInterval),
		facultyWorkload: make(map[string]int),
		facultyCourses:  make(map[string]map[string]struct{}),
		subjectDaysUsed: make(map[models.SubjectSemesterKey]map[models.Weekday]struct{}),
	}
}

func containsDay(days []models.Weekday, day models.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// roomFree answers "is this room usable on all of days at [start,end) in
// this semester?", per spec §4.4.
func (t *trackingTables) roomFree(roomID string, days []models.Weekday, start, end int, semester string) bool {
	for _, b := range t.roomBookings[roomID] {
		if b.Semester != semester || !containsDay(days, b.Day) {
			continue
		}
		if intervalsOverlap(b.Start, b.End, start, end) {
			return false
		}
	}
	return true
}

// facultyFree answers whether the instructor can teach on all of days at
// [start,end), honoring existing bookings, the 30-minute rest buffer, the
// instructor's available-day set, and their preferred window (invariants
// 1, 4, 7).
func (t *trackingTables) facultyFree(instructor models.Instructor, days []models.Weekday, start, end int, semester string) bool {
	for _, d := range days {
		if !instructor.IsAvailableOn(d) {
			return false
		}
	}
	if instructor.PreferredWindow != nil {
		if start < instructor.PreferredWindow.Start || end > instructor.PreferredWindow.End {
			return false
		}
	}
	for _, b := range t.facultyBookings[instructor.ID] {
		if b.Semester != semester || !containsDay(days, b.Day) {
			continue
		}
		if intervalsOverlap(b.Start, b.End, start, end) {
			return false
		}
		if b.End <= start && start-b.End < minFacultyRestMinutes {
			return false
		}
		if end <= b.Start && b.Start-end < minFacultyRestMinutes {
			return false
		}
	}
	return true
}

// cohortFree answers "is this student cohort unoccupied on all of days at
// [start,end)?", per spec §4.4.
func (t *trackingTables) cohortFree(key models.CohortKey, days []models.Weekday, start, end int) bool {
	for _, b := range t.cohortBookings[key] {
		if !containsDay(days, b.Day) {
			continue
		}
		if intervalsOverlap(b.Start, b.End, start, end) {
			return false
		}
	}
	return true
}

// daysFreeOfSubject filters a day-pair list down to pairs where neither day
// has already been used by this subject in this semester (invariant 10).
func (t *trackingTables) daysFreeOfSubject(subjectCode, semester string, pairs []dayPair) []dayPair {
	used := t.subjectDaysUsed[models.SubjectSemesterKey{SubjectCode: subjectCode, Semester: semester}]
	if len(used) == 0 {
		return pairs
	}
	filtered := make([]dayPair, 0, len(pairs))
	for _, pair := range pairs {
		if _, blocked := used[pair[0]]; blocked {
			continue
		}
		if _, blocked := used[pair[1]]; blocked {
			continue
		}
		filtered = append(filtered, pair)
	}
	return filtered
}

// commit records a placed session into every tracking table it touches.
func (t *trackingTables) commit(session models.ScheduledSession) {
	t.facultyBookings[session.InstructorID] = append(t.facultyBookings[session.InstructorID], bookingInterval{
		Semester: session.Semester, Day: session.Day, Start: session.StartMinute, End: session.EndMinute,
	})
	t.roomBookings[session.RoomID] = append(t.roomBookings[session.RoomID], bookingInterval{
		Semester: session.Semester, Day: session.Day, Start: session.StartMinute, End: session.EndMinute,
	})
	cohortKey := session.CohortKey()
	t.cohortBookings[cohortKey] = append(t.cohortBookings[cohortKey], cohortInterval{
		Day: session.Day, Start: session.StartMinute, End: session.EndMinute,
	})
	sdKey := models.SubjectSemesterKey{SubjectCode: session.SubjectCode, Semester: session.Semester}
	if t.subjectDaysUsed[sdKey] == nil {
		t.subjectDaysUsed[sdKey] = make(map[models.Weekday]struct{})
	}
	t.subjectDaysUsed[sdKey][session.Day] = struct{}{}
}

// addWorkload adds the course's units to the instructor's load exactly once
// per course, regardless of how many sessions the course generates.
func (t *trackingTables) addWorkload(courseID, instructorID string, units int) {
	if t.facultyCourses[instructorID] == nil {
		t.facultyCourses[instructorID] = make(map[string]struct{})
	}
	if _, already := t.facultyCourses[instructorID][courseID]; already {
		return
	}
	t.facultyCourses[instructorID][courseID] = struct{}{}
	t.facultyWorkload[instructorID] += units
}

func (t *trackingTables) workloadFor(instructorID string) int {
	return t.facultyWorkload[instructorID]
}
