package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func TestBuildSessionRulesOrdersLectureBeforeLab(t *testing.T) {
	rules := BuildSessionRules(3, 1, "BSIT")
	require.Len(t, rules, 2)
	assert.Equal(t, models.SessionTagLecture, rules[0].Tag)
	assert.Equal(t, models.SessionTagLaboratory, rules[1].Tag)
}

func TestBuildSessionRulesOmitsZeroUnitComponents(t *testing.T) {
	rules := BuildSessionRules(0, 2, "BSIT")
	require.Len(t, rules, 1)
	assert.Equal(t, models.SessionTagLaboratory, rules[0].Tag)
}

func TestLectureRuleByUnitCount(t *testing.T) {
	three := lectureRule(3)
	assert.Equal(t, 2, three.SessionsPerWeek)
	assert.InDelta(t, 1.5, three.HoursPerSession, 0.001)
	assert.InDelta(t, 3.0, three.TotalHoursNeeded, 0.001)

	one := lectureRule(1)
	assert.Equal(t, 1, one.SessionsPerWeek)
	assert.InDelta(t, 1.0, one.HoursPerSession, 0.001)
}

func TestLaboratoryRuleExpandsForListedDepartments(t *testing.T) {
	expanded := laboratoryRule(1, "bscs")
	assert.Equal(t, 2, expanded.SessionsPerWeek)
	assert.InDelta(t, 1.5, expanded.HoursPerSession, 0.001)
	assert.InDelta(t, 3.0, expanded.TotalHoursNeeded, 0.001)

	plain := laboratoryRule(1, "BSIT")
	assert.Equal(t, 1, plain.SessionsPerWeek)
	assert.InDelta(t, 1.0, plain.HoursPerSession, 0.001)
	assert.InDelta(t, 1.0, plain.TotalHoursNeeded, 0.001)
}

func TestExpectedWeeklyHours(t *testing.T) {
	assert.InDelta(t, 6.0, ExpectedWeeklyHours(3, 1), 0.001)
	assert.InDelta(t, 0.0, ExpectedWeeklyHours(0, 0), 0.001)
}
