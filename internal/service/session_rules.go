package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// BuildSessionRules maps a course's lecture/laboratory unit counts into an
// ordered list of SessionRule, lectures before labs, per spec §4.2.
func BuildSessionRules(lecUnits, labUnits int, department string) []models.SessionRule {
	rules := make([]models.SessionRule, 0, 2)
	if lecUnits > 0 {
		rules = append(rules, lectureRule(lecUnits))
	}
	if labUnits > 0 {
		rules = append(rules, laboratoryRule(labUnits, department))
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Tag.Priority() < rules[j].Tag.Priority()
	})
	return rules
}

func lectureRule(units int) models.SessionRule {
	switch units {
	case 3:
		return models.SessionRule{Tag: models.SessionTagLecture, HoursPerSession: 1.5, SessionsPerWeek: 2, TotalHoursNeeded: 3}
	case 2:
		return models.SessionRule{Tag: models.SessionTagLecture, HoursPerSession: 1.0, SessionsPerWeek: 2, TotalHoursNeeded: 2}
	case 1:
		return models.SessionRule{Tag: models.SessionTagLecture, HoursPerSession: 1.0, SessionsPerWeek: 1, TotalHoursNeeded: 1}
	default:
		return models.SessionRule{Tag: models.SessionTagLecture, HoursPerSession: 1.0, SessionsPerWeek: units, TotalHoursNeeded: float64(units)}
	}
}

// labExpandedDepartments lists departments whose 1 lab unit expands to 3
// weekly hours (2 x 1.5h) instead of the default 1 x 1h, per the Open
// Question resolution recorded in DESIGN.md.
var labExpandedDepartments = map[string]struct{}{
	"BSCS": {},
	"ACT":  {},
}

func laboratoryRule(units int, department string) models.SessionRule {
	dept := strings.ToUpper(strings.TrimSpace(department))
	if _, expand := labExpandedDepartments[dept]; expand {
		return models.SessionRule{
			Tag:              models.SessionTagLaboratory,
			HoursPerSession:  1.5,
			SessionsPerWeek:  2,
			TotalHoursNeeded: 3.0 * float64(units),
		}
	}
	return models.SessionRule{
		Tag:              models.SessionTagLaboratory,
		HoursPerSession:  1.0,
		SessionsPerWeek:  units,
		TotalHoursNeeded: float64(units),
	}
}

// ExpectedWeeklyHours computes the weekly hours the validation pass checks a
// course's sessions against: 1 hour per lecture unit and 3 hours per lab
// unit for every department. laboratoryRule gives non-BSCS/ACT labs only
// 1 hour per unit, so those courses differ from this figure (see DESIGN.md).
func ExpectedWeeklyHours(lecUnits, labUnits int) float64 {
	return float64(lecUnits)*1.0 + float64(labUnits)*3.0
}
