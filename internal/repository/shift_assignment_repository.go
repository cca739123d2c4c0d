package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

const uniqueViolation = pq.ErrorCode("23505")

// ShiftAssignmentRepository persists committed assignments and answers overlap and workload queries.
type ShiftAssignmentRepository struct {
	db *sqlx.DB
}

// NewShiftAssignmentRepository constructs repository.
func NewShiftAssignmentRepository(db *sqlx.DB) *ShiftAssignmentRepository {
	return &ShiftAssignmentRepository{db: db}
}

func (r *ShiftAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// OverlapSummary counts persisted assignments for the department inside the inclusive range.
func (r *ShiftAssignmentRepository) OverlapSummary(ctx context.Context, exec sqlx.ExtContext, departmentID string, start, end time.Time) (models.AssignmentOverlap, error) {
	const query = `SELECT COUNT(a.id) AS count, MIN(s.shift_date) AS first_date, MAX(s.shift_date) AS last_date
FROM shift_assignments a JOIN shifts s ON s.id = a.shift_id
WHERE s.department_id = $1 AND s.shift_date BETWEEN $2 AND $3`
	var overlap models.AssignmentOverlap
	if err := sqlx.GetContext(ctx, r.exec(exec), &overlap, query, departmentID, start, end); err != nil {
		return models.AssignmentOverlap{}, fmt.Errorf("assignment overlap summary: %w", err)
	}
	return overlap, nil
}

// ListWorkedShifts returns persisted assignments of the employees whose shift date is within the inclusive range.
func (r *ShiftAssignmentRepository) ListWorkedShifts(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, start, end time.Time) ([]models.WorkedShift, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT a.employee_id, a.shift_id, s.shift_date, s.start_time, s.end_time
FROM shift_assignments a JOIN shifts s ON s.id = a.shift_id
WHERE a.employee_id = ANY($1) AND s.shift_date BETWEEN $2 AND $3
ORDER BY a.employee_id, s.shift_date`
	var items []models.WorkedShift
	if err := sqlx.SelectContext(ctx, r.exec(exec), &items, query, pq.Array(employeeIDs), start, end); err != nil {
		return nil, fmt.Errorf("list worked shifts: %w", err)
	}
	return items, nil
}

// LockDepartment serialises writers for a department until the surrounding transaction ends.
func (r *ShiftAssignmentRepository) LockDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, departmentID); err != nil {
		return fmt.Errorf("lock department %s: %w", departmentID, err)
	}
	return nil
}

// BulkInsert stores all assignments in a single statement.
func (r *ShiftAssignmentRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		assignments[i].UpdatedAt = now
	}

	const query = `INSERT INTO shift_assignments (id, shift_id, employee_id, position_id, kind, status, created_at, updated_at)
VALUES (:id, :shift_id, :employee_id, :position_id, :kind, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignments); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "assignment already exists")
		}
		return fmt.Errorf("bulk insert shift assignments: %w", err)
	}
	return nil
}

// CompletePast marks assignments whose shift date is before asOf as completed.
// An empty departmentID applies to every department.
func (r *ShiftAssignmentRepository) CompletePast(ctx context.Context, departmentID string, asOf time.Time) (int, error) {
	const query = `UPDATE shift_assignments a SET status = 'completed', updated_at = $3
FROM shifts s
WHERE s.id = a.shift_id AND s.shift_date < $1 AND ($2::text = '' OR s.department_id = $2)
	AND a.status IN ('assigned', 'confirmed')`
	result, err := r.db.ExecContext(ctx, query, asOf, departmentID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("complete past assignments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete past rows affected: %w", err)
	}
	return int(affected), nil
}

// ListRoster returns committed assignments for the department range joined with shift, employee and position names.
func (r *ShiftAssignmentRepository) ListRoster(ctx context.Context, departmentID string, start, end time.Time) ([]models.RosterEntry, error) {
	const query = `SELECT a.id AS assignment_id, a.shift_id, s.shift_date, s.start_time, s.end_time, s.category,
	a.employee_id, e.full_name AS employee_name, a.position_id, p.name AS position_name, a.kind, a.status
FROM shift_assignments a
JOIN shifts s ON s.id = a.shift_id
JOIN employees e ON e.id = a.employee_id
JOIN positions p ON p.id = a.position_id
WHERE s.department_id = $1 AND s.shift_date BETWEEN $2 AND $3
ORDER BY s.shift_date, s.start_time, p.name, e.full_name`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, departmentID, start, end); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}
