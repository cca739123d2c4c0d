package service

import (
	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// Violation names a constraint an assignment would break.
type Violation string

const (
	ViolationNotQualified    Violation = "not_qualified"
	ViolationDateTaken       Violation = "date_taken"
	ViolationUnavailable     Violation = "unavailable"
	ViolationCategory        Violation = "preferred_category"
	ViolationWeeklyShifts    Violation = "max_shifts_per_week"
	ViolationWeeklyHours     Violation = "max_hours_per_week"
	ViolationConsecutiveDays Violation = "max_consecutive_days"
)

// ConstraintEvaluator decides whether an employee may take a shift position.
// It never mutates the run state.
type ConstraintEvaluator struct{}

// HardViolations lists the rules that always reject the placement.
func (ConstraintEvaluator) HardViolations(p *EmployeeProfile, shift models.Shift, positionID string, state *RunState) []Violation {
	var out []Violation
	if !p.Qualifies(positionID) {
		out = append(out, ViolationNotQualified)
	}
	date := shift.DateKey()
	if state.HasDate(p.ID, date) {
		out = append(out, ViolationDateTaken)
	}
	if a, ok := p.AvailabilityOn(date); ok && !a.IsAvailable {
		out = append(out, ViolationUnavailable)
	}
	return out
}

// SoftViolations lists the preference rules the placement would break.
// Without a preference record only a per-date category hint can apply.
func (ConstraintEvaluator) SoftViolations(p *EmployeeProfile, shift models.Shift, state *RunState) []Violation {
	var out []Violation
	date := shift.DateKey()

	if a, ok := p.AvailabilityOn(date); ok && a.PreferredCategory != nil {
		if *a.PreferredCategory != shift.Category {
			out = append(out, ViolationCategory)
		}
	} else if p.Preference != nil && !p.Preference.Prefers(shift.Category) {
		out = append(out, ViolationCategory)
	}

	pref := p.Preference
	if pref == nil {
		return out
	}

	shifts, hours := state.WeekLoad(p.ID, shift.Date)
	if pref.MaxShiftsPerWeek != nil && shifts >= *pref.MaxShiftsPerWeek {
		out = append(out, ViolationWeeklyShifts)
	}
	if pref.MaxHoursPerWeek != nil && hours+shift.Hours() > *pref.MaxHoursPerWeek {
		out = append(out, ViolationWeeklyHours)
	}
	if pref.MaxConsecutiveDays != nil && state.AdjacentDays(p.ID, shift.Date) >= *pref.MaxConsecutiveDays {
		out = append(out, ViolationConsecutiveDays)
	}
	return out
}

// PassesHard reports whether no hard rule is broken.
func (e ConstraintEvaluator) PassesHard(p *EmployeeProfile, shift models.Shift, positionID string, state *RunState) bool {
	return len(e.HardViolations(p, shift, positionID, state)) == 0
}

// CanAssign applies the hard rules and, in strict mode, the soft rules.
func (e ConstraintEvaluator) CanAssign(p *EmployeeProfile, shift models.Shift, positionID string, state *RunState, strict bool) bool {
	if !e.PassesHard(p, shift, positionID, state) {
		return false
	}
	if strict && len(e.SoftViolations(p, shift, state)) > 0 {
		return false
	}
	return true
}
