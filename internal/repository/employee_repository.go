package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// EmployeeRepository reads the employee directory with position qualifications.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeSelect = `SELECT e.id, e.department_id, e.full_name, e.email, e.is_active,
	COALESCE(ARRAY_AGG(ep.position_id ORDER BY ep.position_id) FILTER (WHERE ep.position_id IS NOT NULL), '{}') AS position_ids
FROM employees e LEFT JOIN employee_positions ep ON ep.employee_id = e.id`

// ListActiveByDepartment returns active employees ordered by id.
func (r *EmployeeRepository) ListActiveByDepartment(ctx context.Context, departmentID string) ([]models.Employee, error) {
	query := employeeSelect + ` WHERE e.department_id = $1 AND e.is_active = TRUE GROUP BY e.id ORDER BY e.id`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, departmentID); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return employees, nil
}

// FindByIDs loads employees regardless of department.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := employeeSelect + ` WHERE e.id = ANY($1) GROUP BY e.id ORDER BY e.id`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	return employees, nil
}
