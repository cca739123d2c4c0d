package models

import (
	"time"

	"github.com/lib/pq"
)

// Employee is a directory entry with the positions the employee is qualified for.
type Employee struct {
	ID           string         `db:"id" json:"id"`
	DepartmentID string         `db:"department_id" json:"department_id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Email        string         `db:"email" json:"email"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	PositionIDs  pq.StringArray `db:"position_ids" json:"position_ids"`
}

// Qualifies reports whether the employee holds the position.
func (e Employee) Qualifies(positionID string) bool {
	for _, id := range e.PositionIDs {
		if id == positionID {
			return true
		}
	}
	return false
}

// EmployeeAvailability is a per-date availability declaration.
type EmployeeAvailability struct {
	EmployeeID        string         `db:"employee_id" json:"employee_id"`
	Date              time.Time      `db:"available_date" json:"date"`
	IsAvailable       bool           `db:"is_available" json:"is_available"`
	Reason            *string        `db:"reason" json:"reason,omitempty"`
	PreferredCategory *ShiftCategory `db:"preferred_category" json:"preferred_category,omitempty"`
}

// EmployeePreference captures scheduling preferences. Nil fields are undeclared.
type EmployeePreference struct {
	EmployeeID          string         `db:"employee_id" json:"employee_id"`
	PreferredCategories pq.StringArray `db:"preferred_categories" json:"preferred_categories"`
	MaxShiftsPerWeek    *int           `db:"max_shifts_per_week" json:"max_shifts_per_week,omitempty"`
	MaxHoursPerWeek     *float64       `db:"max_hours_per_week" json:"max_hours_per_week,omitempty"`
	MaxConsecutiveDays  *int           `db:"max_consecutive_days" json:"max_consecutive_days,omitempty"`
	PrefersWeekends     *bool          `db:"prefers_weekends" json:"prefers_weekends,omitempty"`
}

// Prefers reports whether the category is acceptable. An empty list accepts all.
func (p EmployeePreference) Prefers(category ShiftCategory) bool {
	if len(p.PreferredCategories) == 0 {
		return true
	}
	for _, c := range p.PreferredCategories {
		if ShiftCategory(c) == category {
			return true
		}
	}
	return false
}

// FatigueRiskTier buckets the latest fatigue assessment.
type FatigueRiskTier string

const (
	FatigueRiskLow      FatigueRiskTier = "low"
	FatigueRiskModerate FatigueRiskTier = "moderate"
	FatigueRiskHigh     FatigueRiskTier = "high"
	FatigueRiskCritical FatigueRiskTier = "critical"
)

// FatigueScore is the most recent fatigue assessment for an employee.
type FatigueScore struct {
	EmployeeID string          `db:"employee_id" json:"employee_id"`
	RiskTier   FatigueRiskTier `db:"risk_tier" json:"risk_tier"`
	TotalScore float64         `db:"total_score" json:"total_score"`
	AssessedAt time.Time       `db:"assessed_at" json:"assessed_at"`
}
