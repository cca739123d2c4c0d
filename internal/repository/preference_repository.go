package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// PreferenceRepository reads employee scheduling preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListForEmployees returns the preference records that exist for the employees.
func (r *PreferenceRepository) ListForEmployees(ctx context.Context, employeeIDs []string) ([]models.EmployeePreference, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT employee_id, COALESCE(preferred_categories, '{}') AS preferred_categories,
	max_shifts_per_week, max_hours_per_week, max_consecutive_days, prefers_weekends
FROM employee_preferences WHERE employee_id = ANY($1)`
	var items []models.EmployeePreference
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(employeeIDs)); err != nil {
		return nil, fmt.Errorf("list employee preferences: %w", err)
	}
	return items, nil
}
