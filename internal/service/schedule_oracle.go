package service

import (
	"context"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// SuggestionOracle is an untrusted, advisory source of placements. An error
// and an empty result are handled identically by callers.
type SuggestionOracle interface {
	Suggest(ctx context.Context, req dto.OracleRequest) ([]dto.OracleSuggestion, error)
}

// RejectionReason explains why a suggestion was discarded.
type RejectionReason string

const (
	RejectUnknownSlot RejectionReason = "unknown_slot"
	RejectNotInPool   RejectionReason = "not_in_pool"
	RejectSlotFull    RejectionReason = "slot_full"
	RejectDuplicate   RejectionReason = "duplicate"
	RejectConstraint  RejectionReason = "constraint"
)

// OracleApplyResult counts the outcome of validating a suggestion list.
type OracleApplyResult struct {
	Accepted int
	Rejected map[RejectionReason]int
}

// RejectedTotal sums rejections over all reasons.
func (r OracleApplyResult) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

// buildOracleRequest describes every shift position with a non-empty pool.
func buildOracleRequest(shifts []models.Shift, profiles map[string]*EmployeeProfile, pool CandidatePool, state *RunState) dto.OracleRequest {
	req := dto.OracleRequest{Shifts: make([]dto.OracleShift, 0, len(shifts))}
	for _, shift := range shifts {
		item := dto.OracleShift{
			ID:        shift.ID,
			Date:      shift.DateKey(),
			DayOfWeek: shift.Date.Weekday().String(),
			IsWeekend: shift.IsWeekend(),
			Start:     shift.StartTime,
			End:       shift.EndTime,
			Category:  string(shift.Category),
		}
		for _, position := range shift.Positions {
			ids := pool.Candidates(shift.ID, position.PositionID)
			if len(ids) == 0 {
				continue
			}
			op := dto.OraclePosition{
				ID:            position.PositionID,
				Name:          position.PositionName,
				RequiredCount: position.RequiredCount,
				Candidates:    make([]dto.OracleCandidate, 0, len(ids)),
			}
			for _, id := range ids {
				profile := profiles[id]
				if profile == nil {
					continue
				}
				candidate := dto.OracleCandidate{
					ID:         id,
					Name:       profile.FullName,
					HoursSoFar: state.Hours(id),
				}
				if profile.Fatigue != nil {
					candidate.FatigueRiskTier = string(profile.Fatigue.RiskTier)
				}
				if profile.Preference != nil {
					candidate.PrefersWeekends = profile.Preference.PrefersWeekends
				}
				op.Candidates = append(op.Candidates, candidate)
			}
			item.Positions = append(item.Positions, op)
		}
		if len(item.Positions) > 0 {
			req.Shifts = append(req.Shifts, item)
		}
	}
	return req
}

// applySuggestions validates each suggestion in order against the pool and
// the live run state, recording the ones that survive.
func applySuggestions(
	suggestions []dto.OracleSuggestion,
	shifts map[string]models.Shift,
	profiles map[string]*EmployeeProfile,
	pool CandidatePool,
	state *RunState,
	evaluator ConstraintEvaluator,
	strict bool,
) OracleApplyResult {
	result := OracleApplyResult{Rejected: make(map[RejectionReason]int)}
	for _, sg := range suggestions {
		shift, ok := shifts[sg.ShiftID]
		if !ok || !pool.Known(sg.ShiftID, sg.PositionID) {
			result.Rejected[RejectUnknownSlot]++
			continue
		}
		if !pool.Contains(sg.ShiftID, sg.PositionID, sg.EmployeeID) {
			result.Rejected[RejectNotInPool]++
			continue
		}
		if state.Placed(sg.ShiftID, sg.PositionID, sg.EmployeeID) {
			result.Rejected[RejectDuplicate]++
			continue
		}
		position, _ := shift.Position(sg.PositionID)
		if state.Filled(sg.ShiftID, sg.PositionID) >= position.RequiredCount {
			result.Rejected[RejectSlotFull]++
			continue
		}
		profile := profiles[sg.EmployeeID]
		if profile == nil || !evaluator.CanAssign(profile, shift, sg.PositionID, state, strict) {
			result.Rejected[RejectConstraint]++
			continue
		}
		state.Record(shift, sg.PositionID, sg.EmployeeID, dto.AssignmentSourceOracle)
		result.Accepted++
	}
	return result
}
