package service

import (
	"time"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// monday is the first day of the ISO week used throughout the scheduling tests.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return monday.AddDate(0, 0, offset)
}

func intPtr(v int) *int                                        { return &v }
func floatPtr(v float64) *float64                              { return &v }
func boolPtr(v bool) *bool                                     { return &v }
func categoryPtr(c models.ShiftCategory) *models.ShiftCategory { return &c }

func testShift(id string, date time.Time, start, end string, positions ...models.ShiftPosition) models.Shift {
	for i := range positions {
		positions[i].ShiftID = id
	}
	return models.Shift{
		ID:           id,
		DepartmentID: "dept-1",
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		Category:     models.ShiftCategoryDay,
		Status:       models.ShiftStatusOpen,
		Positions:    positions,
	}
}

func slot(positionID string, required int) models.ShiftPosition {
	return models.ShiftPosition{PositionID: positionID, PositionName: "Position " + positionID, RequiredCount: required}
}

func testEmployee(id string, positions ...string) models.Employee {
	return models.Employee{
		ID:           id,
		DepartmentID: "dept-1",
		FullName:     "Employee " + id,
		Email:        id + "@example.com",
		IsActive:     true,
		PositionIDs:  positions,
	}
}

func testProfile(id string, positions ...string) *EmployeeProfile {
	return &EmployeeProfile{Employee: testEmployee(id, positions...)}
}

func profileIndex(profiles ...*EmployeeProfile) map[string]*EmployeeProfile {
	out := make(map[string]*EmployeeProfile, len(profiles))
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out
}
