package service

import (
	"sort"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// CandidatePool maps every shift position of a run to the employees eligible
// for it when the run started. It is built once and never re-derived.
type CandidatePool struct {
	slots   map[slotKey][]string
	members map[slotKey]map[string]struct{}
}

// Known reports whether the shift position exists in the run.
func (p CandidatePool) Known(shiftID, positionID string) bool {
	_, ok := p.slots[slotKey{ShiftID: shiftID, PositionID: positionID}]
	return ok
}

// Candidates returns the pool for a shift position in directory order.
func (p CandidatePool) Candidates(shiftID, positionID string) []string {
	return p.slots[slotKey{ShiftID: shiftID, PositionID: positionID}]
}

// Contains reports pool membership.
func (p CandidatePool) Contains(shiftID, positionID, employeeID string) bool {
	_, ok := p.members[slotKey{ShiftID: shiftID, PositionID: positionID}][employeeID]
	return ok
}

// Size is the number of (slot, employee) pairs in the pool.
func (p CandidatePool) Size() int {
	total := 0
	for _, ids := range p.slots {
		total += len(ids)
	}
	return total
}

// CandidatePoolBuilder enumerates qualified employees passing the hard rules.
type CandidatePoolBuilder struct {
	evaluator ConstraintEvaluator
}

// Build computes the pool against the pre-run state. Employees are visited in
// ascending id order so the pool order is deterministic.
func (b CandidatePoolBuilder) Build(shifts []models.Shift, employees []*EmployeeProfile, state *RunState) CandidatePool {
	ordered := make([]*EmployeeProfile, len(employees))
	copy(ordered, employees)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	pool := CandidatePool{
		slots:   make(map[slotKey][]string),
		members: make(map[slotKey]map[string]struct{}),
	}
	for _, shift := range shifts {
		for _, position := range shift.Positions {
			key := slotKey{ShiftID: shift.ID, PositionID: position.PositionID}
			ids := make([]string, 0)
			members := make(map[string]struct{})
			for _, emp := range ordered {
				if !b.evaluator.PassesHard(emp, shift, position.PositionID, state) {
					continue
				}
				ids = append(ids, emp.ID)
				members[emp.ID] = struct{}{}
			}
			pool.slots[key] = ids
			pool.members[key] = members
		}
	}
	return pool
}
