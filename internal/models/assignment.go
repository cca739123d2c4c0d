package models

import (
	"fmt"
	"time"
)

// AssignmentKind distinguishes regular from overtime work.
type AssignmentKind string

const (
	AssignmentKindRegular  AssignmentKind = "regular"
	AssignmentKindOvertime AssignmentKind = "overtime"
)

// AssignmentStatus is the lifecycle state of a persisted assignment.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// ShiftAssignment is a persisted employee placement on a shift position.
type ShiftAssignment struct {
	ID         string           `db:"id" json:"id"`
	ShiftID    string           `db:"shift_id" json:"shift_id"`
	EmployeeID string           `db:"employee_id" json:"employee_id"`
	PositionID string           `db:"position_id" json:"position_id"`
	Kind       AssignmentKind   `db:"kind" json:"kind"`
	Status     AssignmentStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// WorkedShift is a persisted assignment joined with its shift timing.
type WorkedShift struct {
	EmployeeID string    `db:"employee_id"`
	ShiftID    string    `db:"shift_id"`
	ShiftDate  time.Time `db:"shift_date"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
}

// Hours returns the worked shift length in hours.
func (w WorkedShift) Hours() float64 {
	return Shift{StartTime: w.StartTime, EndTime: w.EndTime}.Hours()
}

// AssignmentOverlap summarises persisted assignments inside a department range.
type AssignmentOverlap struct {
	Count     int        `db:"count"`
	FirstDate *time.Time `db:"first_date"`
	LastDate  *time.Time `db:"last_date"`
}

// ScheduleExistsError reports a committed schedule overlapping a requested range.
type ScheduleExistsError struct {
	DepartmentID string    `json:"department_id"`
	Count        int       `json:"count"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
}

func (e *ScheduleExistsError) Error() string {
	return fmt.Sprintf("schedule already exists for department %s: %d assignments between %s and %s",
		e.DepartmentID, e.Count, e.FirstDate.Format(DateLayout), e.LastDate.Format(DateLayout))
}

// RosterEntry is a committed assignment flattened for export.
type RosterEntry struct {
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	ShiftID      string           `db:"shift_id" json:"shift_id"`
	ShiftDate    time.Time        `db:"shift_date" json:"shift_date"`
	StartTime    string           `db:"start_time" json:"start_time"`
	EndTime      string           `db:"end_time" json:"end_time"`
	Category     ShiftCategory    `db:"category" json:"category"`
	EmployeeID   string           `db:"employee_id" json:"employee_id"`
	EmployeeName string           `db:"employee_name" json:"employee_name"`
	PositionID   string           `db:"position_id" json:"position_id"`
	PositionName string           `db:"position_name" json:"position_name"`
	Kind         AssignmentKind   `db:"kind" json:"kind"`
	Status       AssignmentStatus `db:"status" json:"status"`
}
