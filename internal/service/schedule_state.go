package service

import (
	"time"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// EmployeeProfile bundles the read-only facts known about an employee for one run.
type EmployeeProfile struct {
	models.Employee
	Availability map[string]models.EmployeeAvailability
	Preference   *models.EmployeePreference
	Fatigue      *models.FatigueScore
}

// AvailabilityOn returns the availability record declared for the date, if any.
func (p *EmployeeProfile) AvailabilityOn(date string) (models.EmployeeAvailability, bool) {
	if p.Availability == nil {
		return models.EmployeeAvailability{}, false
	}
	a, ok := p.Availability[date]
	return a, ok
}

type slotKey struct {
	ShiftID    string
	PositionID string
}

type weekKey struct {
	EmployeeID string
	WeekStart  string
}

// PlannedAssignment is a draft together with the stage that produced it.
type PlannedAssignment struct {
	Draft  dto.AssignmentDraft
	Source dto.AssignmentSource
	Hours  float64
}

// RunState accumulates everything a generation run has decided so far. Only
// the oracle application and the greedy fill call Record; every other stage
// reads it.
type RunState struct {
	persisted   map[string]map[string]struct{}
	pending     map[string]map[string]struct{}
	hours       map[string]float64
	weekShifts  map[weekKey]int
	weekHours   map[weekKey]float64
	weekly      map[weekKey]models.WeeklyStats
	filled      map[slotKey]int
	placed      map[slotKey]map[string]struct{}
	assignments []PlannedAssignment
}

// NewRunState returns an empty accumulator.
func NewRunState() *RunState {
	return &RunState{
		persisted:  make(map[string]map[string]struct{}),
		pending:    make(map[string]map[string]struct{}),
		hours:      make(map[string]float64),
		weekShifts: make(map[weekKey]int),
		weekHours:  make(map[weekKey]float64),
		weekly:     make(map[weekKey]models.WeeklyStats),
		filled:     make(map[slotKey]int),
		placed:     make(map[slotKey]map[string]struct{}),
	}
}

// AddPersisted marks a date on which the employee already holds a committed assignment.
func (s *RunState) AddPersisted(employeeID, date string) {
	dates, ok := s.persisted[employeeID]
	if !ok {
		dates = make(map[string]struct{})
		s.persisted[employeeID] = dates
	}
	dates[date] = struct{}{}
}

// SetWeeklyStats stores persisted weekly aggregates used by the soft checks.
func (s *RunState) SetWeeklyStats(stats models.WeeklyStats) {
	s.weekly[weekKey{EmployeeID: stats.EmployeeID, WeekStart: stats.WeekStart}] = stats
}

// WeeklyStats returns the persisted aggregates for the employee's week containing date.
func (s *RunState) WeeklyStats(employeeID string, date time.Time) (models.WeeklyStats, bool) {
	stats, ok := s.weekly[weekKey{EmployeeID: employeeID, WeekStart: models.ISOWeekStart(date).Format(models.DateLayout)}]
	return stats, ok
}

// HasDate reports whether the employee is placed on the date, pending or persisted.
func (s *RunState) HasDate(employeeID, date string) bool {
	if _, ok := s.persisted[employeeID][date]; ok {
		return true
	}
	_, ok := s.pending[employeeID][date]
	return ok
}

// Hours is the total duration assigned to the employee during this run.
func (s *RunState) Hours(employeeID string) float64 {
	return s.hours[employeeID]
}

// Filled is the number of placements already made for a shift position.
func (s *RunState) Filled(shiftID, positionID string) int {
	return s.filled[slotKey{ShiftID: shiftID, PositionID: positionID}]
}

// Placed reports whether the employee already fills the shift position.
func (s *RunState) Placed(shiftID, positionID, employeeID string) bool {
	_, ok := s.placed[slotKey{ShiftID: shiftID, PositionID: positionID}][employeeID]
	return ok
}

// WeekLoad combines persisted and in-run shifts and hours for the ISO week containing date.
func (s *RunState) WeekLoad(employeeID string, date time.Time) (int, float64) {
	key := weekKey{EmployeeID: employeeID, WeekStart: models.ISOWeekStart(date).Format(models.DateLayout)}
	shifts := s.weekShifts[key]
	hours := s.weekHours[key]
	if stats, ok := s.weekly[key]; ok {
		shifts += stats.ShiftsInWeek
		hours += stats.HoursInWeek
	}
	return shifts, hours
}

// ConsecutiveDays is the employee's working streak ending the day before date,
// counting persisted and in-run placements.
func (s *RunState) ConsecutiveDays(employeeID string, date time.Time) int {
	stats, _ := s.WeeklyStats(employeeID, date)
	return stats.ConsecutiveDaysAsOf(date, func(day string) bool {
		return s.HasDate(employeeID, day)
	})
}

// AdjacentDays is the number of worked days touching date on either side, so a
// placement on date would extend the run to AdjacentDays+1 regardless of the
// order in which the surrounding days were filled.
func (s *RunState) AdjacentDays(employeeID string, date time.Time) int {
	stats, _ := s.WeeklyStats(employeeID, date)
	after := stats.ConsecutiveDaysAfter(date, func(day string) bool {
		return s.HasDate(employeeID, day)
	})
	return s.ConsecutiveDays(employeeID, date) + after
}

// Record applies an accepted placement.
func (s *RunState) Record(shift models.Shift, positionID, employeeID string, source dto.AssignmentSource) {
	date := shift.DateKey()
	hours := shift.Hours()

	dates, ok := s.pending[employeeID]
	if !ok {
		dates = make(map[string]struct{})
		s.pending[employeeID] = dates
	}
	dates[date] = struct{}{}
	s.hours[employeeID] += hours

	wk := weekKey{EmployeeID: employeeID, WeekStart: models.ISOWeekStart(shift.Date).Format(models.DateLayout)}
	s.weekShifts[wk]++
	s.weekHours[wk] += hours

	slot := slotKey{ShiftID: shift.ID, PositionID: positionID}
	s.filled[slot]++
	if s.placed[slot] == nil {
		s.placed[slot] = make(map[string]struct{})
	}
	s.placed[slot][employeeID] = struct{}{}

	s.assignments = append(s.assignments, PlannedAssignment{
		Draft: dto.AssignmentDraft{
			ShiftID:    shift.ID,
			EmployeeID: employeeID,
			PositionID: positionID,
			Kind:       models.AssignmentKindRegular,
			Status:     models.AssignmentStatusAssigned,
		},
		Source: source,
		Hours:  hours,
	})
}

// Assignments returns the placements in the order they were recorded.
func (s *RunState) Assignments() []PlannedAssignment {
	out := make([]PlannedAssignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}
