package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

func TestHardViolations(t *testing.T) {
	var eval ConstraintEvaluator
	shift := testShift("s1", day(0), "07:00", "15:00", slot("nurse", 1))
	state := NewRunState()

	qualified := testProfile("a", "nurse")
	assert.Empty(t, eval.HardViolations(qualified, shift, "nurse", state))

	unqualified := testProfile("b", "porter")
	assert.Equal(t, []Violation{ViolationNotQualified}, eval.HardViolations(unqualified, shift, "nurse", state))

	state.AddPersisted("a", shift.DateKey())
	assert.Equal(t, []Violation{ViolationDateTaken}, eval.HardViolations(qualified, shift, "nurse", state))

	away := testProfile("c", "nurse")
	away.Availability = map[string]models.EmployeeAvailability{
		shift.DateKey(): {EmployeeID: "c", Date: day(0), IsAvailable: false},
	}
	assert.Equal(t, []Violation{ViolationUnavailable}, eval.HardViolations(away, shift, "nurse", state))
}

func TestHardViolationsSeePendingPlacements(t *testing.T) {
	var eval ConstraintEvaluator
	morning := testShift("s1", day(0), "07:00", "15:00", slot("nurse", 1))
	evening := testShift("s2", day(0), "15:00", "23:00", slot("nurse", 1))
	state := NewRunState()
	a := testProfile("a", "nurse")

	state.Record(morning, "nurse", "a", dto.AssignmentSourceGreedy)

	assert.False(t, eval.PassesHard(a, evening, "nurse", state))
}

func TestSoftViolationsCategory(t *testing.T) {
	var eval ConstraintEvaluator
	night := testShift("s1", day(0), "23:00", "07:00", slot("nurse", 1))
	night.Category = models.ShiftCategoryNight
	state := NewRunState()

	noPrefs := testProfile("a", "nurse")
	assert.Empty(t, eval.SoftViolations(noPrefs, night, state))

	dayOnly := testProfile("b", "nurse")
	dayOnly.Preference = &models.EmployeePreference{EmployeeID: "b", PreferredCategories: []string{"day"}}
	assert.Equal(t, []Violation{ViolationCategory}, eval.SoftViolations(dayOnly, night, state))

	dayOnly.Availability = map[string]models.EmployeeAvailability{
		night.DateKey(): {EmployeeID: "b", IsAvailable: true, PreferredCategory: categoryPtr(models.ShiftCategoryNight)},
	}
	assert.Empty(t, eval.SoftViolations(dayOnly, night, state), "a per-date category overrides the standing preference")
}

func TestSoftViolationsWeeklyCeilings(t *testing.T) {
	var eval ConstraintEvaluator
	state := NewRunState()
	p := testProfile("a", "nurse")
	p.Preference = &models.EmployeePreference{EmployeeID: "a", MaxShiftsPerWeek: intPtr(2), MaxHoursPerWeek: floatPtr(20)}
	state.SetWeeklyStats(models.WeeklyStats{EmployeeID: "a", WeekStart: "2024-03-04", ShiftsInWeek: 1, HoursInWeek: 8})

	tuesday := testShift("s2", day(1), "07:00", "15:00", slot("nurse", 1))
	assert.Empty(t, eval.SoftViolations(p, tuesday, state))
	state.Record(tuesday, "nurse", "a", dto.AssignmentSourceGreedy)

	thursday := testShift("s4", day(3), "07:00", "15:00", slot("nurse", 1))
	violations := eval.SoftViolations(p, thursday, state)
	assert.Contains(t, violations, ViolationWeeklyShifts)
	assert.Contains(t, violations, ViolationWeeklyHours)

	nextWeek := testShift("s8", day(7), "07:00", "15:00", slot("nurse", 1))
	assert.Empty(t, eval.SoftViolations(p, nextWeek, state))
}

func TestSoftViolationsConsecutiveDays(t *testing.T) {
	var eval ConstraintEvaluator
	state := NewRunState()
	p := testProfile("a", "nurse")
	p.Preference = &models.EmployeePreference{EmployeeID: "a", MaxConsecutiveDays: intPtr(3)}
	state.SetWeeklyStats(models.WeeklyStats{
		EmployeeID:  "a",
		WeekStart:   "2024-03-04",
		WorkedDates: []string{"2024-03-02", "2024-03-03"},
	})

	monShift := testShift("s1", day(0), "07:00", "15:00", slot("nurse", 1))
	assert.Empty(t, eval.SoftViolations(p, monShift, state))
	state.Record(monShift, "nurse", "a", dto.AssignmentSourceGreedy)

	tueShift := testShift("s2", day(1), "07:00", "15:00", slot("nurse", 1))
	assert.Equal(t, []Violation{ViolationConsecutiveDays}, eval.SoftViolations(p, tueShift, state))
}

func TestSoftViolationsConsecutiveDaysSeeLaterPlacements(t *testing.T) {
	var eval ConstraintEvaluator
	state := NewRunState()
	p := testProfile("a", "nurse")
	p.Preference = &models.EmployeePreference{EmployeeID: "a", MaxConsecutiveDays: intPtr(3)}

	for i, id := range []string{"s2", "s3", "s4"} {
		state.Record(testShift(id, day(i+1), "07:00", "15:00", slot("nurse", 1)), "nurse", "a", dto.AssignmentSourceOracle)
	}
	monShift := testShift("s1", day(0), "07:00", "15:00", slot("nurse", 1))
	assert.Equal(t, 3, state.AdjacentDays("a", day(0)))
	assert.Equal(t, []Violation{ViolationConsecutiveDays}, eval.SoftViolations(p, monShift, state))
	assert.False(t, eval.CanAssign(p, monShift, "nurse", state, true))
	assert.True(t, eval.CanAssign(p, monShift, "nurse", state, false))

	gapped := NewRunState()
	for i, id := range []string{"s3", "s4", "s5"} {
		gapped.Record(testShift(id, day(i+2), "07:00", "15:00", slot("nurse", 1)), "nurse", "a", dto.AssignmentSourceOracle)
	}
	assert.Empty(t, eval.SoftViolations(p, monShift, gapped))
}

func TestCanAssignStrictMode(t *testing.T) {
	var eval ConstraintEvaluator
	state := NewRunState()
	night := testShift("s1", day(0), "23:00", "07:00", slot("nurse", 1))
	night.Category = models.ShiftCategoryNight
	p := testProfile("a", "nurse")
	p.Preference = &models.EmployeePreference{EmployeeID: "a", PreferredCategories: []string{"day"}}

	assert.True(t, eval.CanAssign(p, night, "nurse", state, false))
	assert.False(t, eval.CanAssign(p, night, "nurse", state, true))
}

func TestCandidatePoolBuilder(t *testing.T) {
	shifts := []models.Shift{
		testShift("s1", day(0), "07:00", "15:00", slot("nurse", 2), slot("porter", 1)),
	}
	state := NewRunState()
	state.AddPersisted("b", shifts[0].DateKey())
	profiles := []*EmployeeProfile{
		testProfile("c", "nurse"),
		testProfile("a", "nurse", "porter"),
		testProfile("b", "nurse"),
	}

	pool := CandidatePoolBuilder{}.Build(shifts, profiles, state)

	assert.Equal(t, []string{"a", "c"}, pool.Candidates("s1", "nurse"))
	assert.Equal(t, []string{"a"}, pool.Candidates("s1", "porter"))
	assert.True(t, pool.Known("s1", "porter"))
	assert.False(t, pool.Known("s1", "doctor"))
	assert.False(t, pool.Contains("s1", "nurse", "b"))
	assert.Equal(t, 3, pool.Size())
}
