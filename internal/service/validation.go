package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

type validationGroupKey struct {
	SubjectCode string
	Program     string
	YearLevel   string
}

// Validate compares the actual placed sessions against each course's
// expected weekly hours, checks lecture-session counts, and detects cohort
// time overlaps, per spec §4.6.
func Validate(courses []models.CurriculumCourse, sessions []models.ScheduledSession) models.ValidationReport {
	issues := make([]models.ValidationIssue, 0)

	courseByKey := make(map[validationGroupKey]models.CurriculumCourse, len(courses))
	for _, c := range courses {
		courseByKey[validationGroupKey{SubjectCode: c.SubjectCode, Program: c.Program, YearLevel: c.YearLevel}] = c
	}

	grouped := make(map[validationGroupKey][]models.ScheduledSession)
	for _, s := range sessions {
		key := validationGroupKey{SubjectCode: s.SubjectCode, Program: s.Program, YearLevel: s.YearLevel}
		grouped[key] = append(grouped[key], s)
	}

	keys := make([]validationGroupKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SubjectCode != keys[j].SubjectCode {
			return keys[i].SubjectCode < keys[j].SubjectCode
		}
		if keys[i].Program != keys[j].Program {
			return keys[i].Program < keys[j].Program
		}
		return keys[i].YearLevel < keys[j].YearLevel
	})

	for _, key := range keys {
		group := grouped[key]
		course, ok := courseByKey[key]
		if !ok {
			continue
		}

		expected := ExpectedWeeklyHours(course.LecUnits, course.LabUnits)
		actual := 0.0
		lectureCount := 0
		for _, s := range group {
			actual += s.DurationHours()
			if s.Tag == models.SessionTagLecture {
				lectureCount++
			}
		}

		if diff := expected - actual; diff > 0.1 || diff < -0.1 {
			issues = append(issues, models.ValidationIssue{
				Level:       models.ValidationLevelError,
				Message:     fmt.Sprintf("%s: expected %.1fh weekly but scheduled %.1fh", key.SubjectCode, expected, actual),
				SubjectCode: key.SubjectCode,
				Program:     key.Program,
				YearLevel:   key.YearLevel,
			})
		}

		if course.LecUnits >= 2 && lectureCount != 2 {
			issues = append(issues, models.ValidationIssue{
				Level:       models.ValidationLevelWarning,
				Message:     fmt.Sprintf("%s: expected 2 lecture sessions but found %d", key.SubjectCode, lectureCount),
				SubjectCode: key.SubjectCode,
				Program:     key.Program,
				YearLevel:   key.YearLevel,
			})
		}
	}

	issues = append(issues, detectCohortOverlaps(sessions)...)

	errorCount := 0
	for _, issue := range issues {
		if issue.Level == models.ValidationLevelError {
			errorCount++
		}
	}
	score := 100 - 5*float64(errorCount)
	if score < 0 {
		score = 0
	}

	return models.ValidationReport{Issues: issues, OptimizationScore: score}
}

// detectCohortOverlaps pairwise-compares sessions sharing a cohort key and
// day, emitting an ERROR for each overlapping pair.
func detectCohortOverlaps(sessions []models.ScheduledSession) []models.ValidationIssue {
	byCohortDay := make(map[models.CohortKey]map[models.Weekday][]models.ScheduledSession)
	for _, s := range sessions {
		key := s.CohortKey()
		if byCohortDay[key] == nil {
			byCohortDay[key] = make(map[models.Weekday][]models.ScheduledSession)
		}
		byCohortDay[key][s.Day] = append(byCohortDay[key][s.Day], s)
	}

	issues := make([]models.ValidationIssue, 0)
	for key, byDay := range byCohortDay {
		for day, group := range byDay {
			for i := 0; i < len(group); i++ {
				for j := i + 1; j < len(group); j++ {
					a, b := group[i], group[j]
					if intervalsOverlap(a.StartMinute, a.EndMinute, b.StartMinute, b.EndMinute) {
						issues = append(issues, models.ValidationIssue{
							Level:       models.ValidationLevelError,
							Message:     fmt.Sprintf("%s on %s: %s overlaps %s for %s %s", key.Program, day, a.SubjectCode, b.SubjectCode, key.YearLevel, key.Semester),
							Program:     key.Program,
							YearLevel:   key.YearLevel,
						})
					}
				}
			}
		}
	}
	return issues
}
