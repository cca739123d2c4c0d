package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// AvailabilityRepository reads per-date availability declarations.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListForRange returns availability records for the employees within the inclusive range.
func (r *AvailabilityRepository) ListForRange(ctx context.Context, employeeIDs []string, start, end time.Time) ([]models.EmployeeAvailability, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT employee_id, available_date, is_available, reason, preferred_category
FROM employee_availability WHERE employee_id = ANY($1) AND available_date BETWEEN $2 AND $3
ORDER BY employee_id, available_date`
	var items []models.EmployeeAvailability
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(employeeIDs), start, end); err != nil {
		return nil, fmt.Errorf("list employee availability: %w", err)
	}
	return items, nil
}
