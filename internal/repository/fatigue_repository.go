package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// FatigueRepository reads fatigue assessments.
type FatigueRepository struct {
	db *sqlx.DB
}

// NewFatigueRepository constructs repository.
func NewFatigueRepository(db *sqlx.DB) *FatigueRepository {
	return &FatigueRepository{db: db}
}

// LatestForEmployees returns the most recent assessment per employee.
func (r *FatigueRepository) LatestForEmployees(ctx context.Context, employeeIDs []string) ([]models.FatigueScore, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT DISTINCT ON (employee_id) employee_id, risk_tier, total_score, assessed_at
FROM fatigue_scores WHERE employee_id = ANY($1) ORDER BY employee_id, assessed_at DESC`
	var items []models.FatigueScore
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(employeeIDs)); err != nil {
		return nil, fmt.Errorf("list fatigue scores: %w", err)
	}
	return items, nil
}
