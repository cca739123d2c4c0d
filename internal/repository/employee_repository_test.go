package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

func TestEmployeeRepositoryListActiveByDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.department_id = $1 AND e.is_active = TRUE GROUP BY e.id ORDER BY e.id")).
		WithArgs("dept-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "department_id", "full_name", "email", "is_active", "position_ids"}).
			AddRow("emp-a", "dept-1", "Ana", "ana@example.com", true, "{pos-nurse,pos-tech}").
			AddRow("emp-b", "dept-1", "Ben", "ben@example.com", true, "{}"))

	employees, err := repo.ListActiveByDepartment(context.Background(), "dept-1")
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.True(t, employees[0].Qualifies("pos-tech"))
	assert.False(t, employees[1].Qualifies("pos-nurse"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryListForEmployeesKeepsNulls(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM employee_preferences WHERE employee_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "preferred_categories", "max_shifts_per_week", "max_hours_per_week", "max_consecutive_days", "prefers_weekends"}).
			AddRow("emp-a", "{day}", 4, 32.0, nil, nil))

	prefs, err := repo.ListForEmployees(context.Background(), []string{"emp-a"})
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	require.NotNil(t, prefs[0].MaxShiftsPerWeek)
	assert.Equal(t, 4, *prefs[0].MaxShiftsPerWeek)
	require.NotNil(t, prefs[0].MaxHoursPerWeek)
	assert.Equal(t, 32.0, *prefs[0].MaxHoursPerWeek)
	assert.Nil(t, prefs[0].MaxConsecutiveDays)
	assert.True(t, prefs[0].Prefers(models.ShiftCategoryDay))
	assert.False(t, prefs[0].Prefers(models.ShiftCategoryNight))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListForRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employee_availability WHERE employee_id = ANY($1) AND available_date BETWEEN $2 AND $3")).
		WithArgs(sqlmock.AnyArg(), day, day).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "available_date", "is_available", "reason", "preferred_category"}).
			AddRow("emp-a", day, false, "leave", nil))

	items, err := repo.ListForRange(context.Background(), []string{"emp-a"}, day, day)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsAvailable)
	require.NotNil(t, items[0].Reason)
	assert.Equal(t, "leave", *items[0].Reason)
	assert.Nil(t, items[0].PreferredCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFatigueRepositoryLatestForEmployees(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFatigueRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (employee_id) employee_id, risk_tier, total_score, assessed_at")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "risk_tier", "total_score", "assessed_at"}).
			AddRow("emp-a", "high", 71.5, time.Now()))

	scores, err := repo.LatestForEmployees(context.Background(), []string{"emp-a"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, models.FatigueRiskHigh, scores[0].RiskTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}
