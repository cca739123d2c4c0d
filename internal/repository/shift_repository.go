package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// ShiftRepository reads shift requirements and maintains their aggregate status.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const shiftColumns = `id, department_id, shift_date, start_time, end_time, category, status, created_at, updated_at`

// ListRequirements returns the department's shifts within the inclusive date range with their positions.
func (r *ShiftRepository) ListRequirements(ctx context.Context, departmentID string, start, end time.Time) ([]models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE department_id = $1 AND shift_date BETWEEN $2 AND $3 ORDER BY shift_date, start_time, id`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, departmentID, start, end); err != nil {
		return nil, fmt.Errorf("list shift requirements: %w", err)
	}
	if err := r.attachPositions(ctx, shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// FindByIDs loads shifts by id with their positions.
func (r *ShiftRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Shift, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ANY($1) ORDER BY shift_date, start_time, id`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find shifts: %w", err)
	}
	if err := r.attachPositions(ctx, shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *ShiftRepository) attachPositions(ctx context.Context, shifts []models.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	ids := make([]string, len(shifts))
	index := make(map[string]int, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
		index[s.ID] = i
	}

	const query = `SELECT sp.shift_id, sp.position_id, p.name AS position_name, sp.required_count
FROM shift_positions sp JOIN positions p ON p.id = sp.position_id
WHERE sp.shift_id = ANY($1) ORDER BY sp.shift_id, sp.position_id`
	var positions []models.ShiftPosition
	if err := r.db.SelectContext(ctx, &positions, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list shift positions: %w", err)
	}
	for _, p := range positions {
		if i, ok := index[p.ShiftID]; ok {
			shifts[i].Positions = append(shifts[i].Positions, p)
		}
	}
	return nil
}

// RecomputeStatus derives open/understaffed/filled for the shifts from their
// assignment and headcount totals and returns the number of shifts updated.
func (r *ShiftRepository) RecomputeStatus(ctx context.Context, exec sqlx.ExtContext, shiftIDs []string) (int, error) {
	if len(shiftIDs) == 0 {
		return 0, nil
	}
	const query = `
UPDATE shifts s SET status = CASE
		WHEN agg.assigned = 0 THEN 'open'
		WHEN agg.assigned < agg.required THEN 'understaffed'
		ELSE 'filled'
	END,
	updated_at = $2
FROM (
	SELECT sp.shift_id, SUM(sp.required_count) AS required,
		(SELECT COUNT(*) FROM shift_assignments a WHERE a.shift_id = sp.shift_id) AS assigned
	FROM shift_positions sp
	WHERE sp.shift_id = ANY($1)
	GROUP BY sp.shift_id
) agg
WHERE s.id = agg.shift_id`
	result, err := r.exec(exec).ExecContext(ctx, query, pq.Array(shiftIDs), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("recompute shift status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("shift status rows affected: %w", err)
	}
	return int(affected), nil
}
