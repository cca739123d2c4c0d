package service

import (
	"sort"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// GreedyResult reports what the fairness fill placed and what it left open.
type GreedyResult struct {
	Assigned       int
	SoftViolations int
	Unfilled       []dto.UnfilledPosition
}

// FairnessGreedyFiller completes every slot the oracle left short, always
// choosing the least-loaded eligible candidate first.
type FairnessGreedyFiller struct {
	evaluator ConstraintEvaluator
}

type rankedCandidate struct {
	profile *EmployeeProfile
	hours   float64
	soft    bool
}

// Fill walks shifts in the given order. Candidates are ranked by in-run hours,
// then by the absence of soft violations, then by pool order.
func (f FairnessGreedyFiller) Fill(shifts []models.Shift, profiles map[string]*EmployeeProfile, pool CandidatePool, state *RunState, strict bool) GreedyResult {
	var result GreedyResult
	for _, shift := range shifts {
		for _, position := range shift.Positions {
			remaining := position.RequiredCount - state.Filled(shift.ID, position.PositionID)
			if remaining > 0 {
				ranked := f.rank(shift, pool.Candidates(shift.ID, position.PositionID), profiles, state)
				for _, c := range ranked {
					if remaining == 0 {
						break
					}
					if !f.evaluator.CanAssign(c.profile, shift, position.PositionID, state, strict) {
						continue
					}
					state.Record(shift, position.PositionID, c.profile.ID, dto.AssignmentSourceGreedy)
					result.Assigned++
					if c.soft {
						result.SoftViolations++
					}
					remaining--
				}
			}
			filled := state.Filled(shift.ID, position.PositionID)
			if filled < position.RequiredCount {
				result.Unfilled = append(result.Unfilled, dto.UnfilledPosition{
					ShiftID:       shift.ID,
					Date:          shift.DateKey(),
					PositionID:    position.PositionID,
					PositionName:  position.PositionName,
					RequiredCount: position.RequiredCount,
					FilledCount:   filled,
					Missing:       position.RequiredCount - filled,
				})
			}
		}
	}
	return result
}

func (f FairnessGreedyFiller) rank(shift models.Shift, ids []string, profiles map[string]*EmployeeProfile, state *RunState) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(ids))
	for _, id := range ids {
		profile := profiles[id]
		if profile == nil {
			continue
		}
		ranked = append(ranked, rankedCandidate{
			profile: profile,
			hours:   state.Hours(id),
			soft:    len(f.evaluator.SoftViolations(profile, shift, state)) > 0,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].hours != ranked[j].hours {
			return ranked[i].hours < ranked[j].hours
		}
		return !ranked[i].soft && ranked[j].soft
	})
	return ranked
}
