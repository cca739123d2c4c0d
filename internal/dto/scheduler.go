package dto

import "github.com/noah-isme/shift-scheduler-api/internal/models"

// GenerateScheduleRequest asks the generator for a preview covering an inclusive date range.
type GenerateScheduleRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Strict       *bool  `json:"strict,omitempty"`
	UseOracle    *bool  `json:"useOracle,omitempty"`
	AsOf         string `json:"asOf,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// AssignmentSource records which stage produced a draft.
type AssignmentSource string

const (
	AssignmentSourceOracle AssignmentSource = "oracle"
	AssignmentSourceGreedy AssignmentSource = "greedy"
	AssignmentSourceManual AssignmentSource = "manual"
)

// AssignmentDraft is an in-memory placement of an employee on a shift position.
type AssignmentDraft struct {
	ShiftID    string                  `json:"shiftId" validate:"required"`
	EmployeeID string                  `json:"employeeId" validate:"required"`
	PositionID string                  `json:"positionId" validate:"required"`
	Kind       models.AssignmentKind   `json:"kind" validate:"omitempty,oneof=regular overtime"`
	Status     models.AssignmentStatus `json:"status" validate:"omitempty,oneof=assigned confirmed"`
}

// EnrichedAssignment is a draft decorated for human review.
type EnrichedAssignment struct {
	AssignmentDraft
	EmployeeName  string               `json:"employeeName"`
	PositionName  string               `json:"positionName"`
	Date          string               `json:"date"`
	StartTime     string               `json:"startTime"`
	EndTime       string               `json:"endTime"`
	Category      models.ShiftCategory `json:"category"`
	DurationHours float64              `json:"durationHours"`
	Source        AssignmentSource     `json:"source"`
}

// UnfilledPosition reports a slot left short after the greedy pass.
type UnfilledPosition struct {
	ShiftID       string `json:"shiftId"`
	Date          string `json:"date"`
	PositionID    string `json:"positionId"`
	PositionName  string `json:"positionName"`
	RequiredCount int    `json:"requiredCount"`
	FilledCount   int    `json:"filledCount"`
	Missing       int    `json:"missing"`
}

// GenerationStats summarises one generation run.
type GenerationStats struct {
	ShiftCount        int `json:"shiftCount"`
	SlotCount         int `json:"slotCount"`
	CandidateCount    int `json:"candidateCount"`
	OracleSuggested   int `json:"oracleSuggested"`
	OracleAccepted    int `json:"oracleAccepted"`
	OracleRejected    int `json:"oracleRejected"`
	GreedyAssigned    int `json:"greedyAssigned"`
	SoftViolations    int `json:"softViolations"`
	DurationMillis    int `json:"durationMs"`
	EmployeesAssigned int `json:"employeesAssigned"`
}

// GenerateScheduleResponse is the preview returned by a generation run.
type GenerateScheduleResponse struct {
	Success       bool                 `json:"success"`
	Message       string               `json:"message,omitempty"`
	ProposalID    string               `json:"proposalId,omitempty"`
	DepartmentID  string               `json:"departmentId"`
	StartDate     string               `json:"startDate"`
	EndDate       string               `json:"endDate"`
	Strict        bool                 `json:"strict"`
	AsOf          string               `json:"asOf"`
	Assignments   []EnrichedAssignment `json:"assignments"`
	Unfilled      []UnfilledPosition   `json:"unfilled"`
	UnfilledCount int                  `json:"unfilledCount"`
	PartialCount  int                  `json:"partialCount,omitempty"`
	Stats         GenerationStats      `json:"stats"`
	ExpiresAt     string               `json:"expiresAt,omitempty"`
}

// CommitScheduleRequest persists a stored proposal, optionally replacing its drafts.
type CommitScheduleRequest struct {
	ProposalID  string            `json:"proposalId" validate:"required"`
	Assignments []AssignmentDraft `json:"assignments,omitempty" validate:"omitempty,dive"`
	AsOf        string            `json:"asOf,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CommitScheduleResponse summarises a successful commit.
type CommitScheduleResponse struct {
	ProposalID        string `json:"proposalId"`
	Inserted          int    `json:"inserted"`
	Overtime          int    `json:"overtime"`
	ShiftsUpdated     int    `json:"shiftsUpdated"`
	EmployeesNotified int    `json:"employeesNotified"`
}

// ScheduleExistsQuery checks a department range for committed assignments.
type ScheduleExistsQuery struct {
	DepartmentID string `form:"departmentId" json:"departmentId" validate:"required"`
	StartDate    string `form:"startDate" json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `form:"endDate" json:"endDate" validate:"required,datetime=2006-01-02"`
}

// ScheduleExistsResponse is the result of an existence check.
type ScheduleExistsResponse struct {
	Exists    bool   `json:"exists"`
	Count     int    `json:"count"`
	FirstDate string `json:"firstDate,omitempty"`
	LastDate  string `json:"lastDate,omitempty"`
}

// CompletePastRequest transitions assignments dated before AsOf to completed.
type CompletePastRequest struct {
	AsOf string `json:"asOf,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CompletePastResponse reports how many assignments were completed.
type CompletePastResponse struct {
	Completed int `json:"completed"`
}

// RosterExportQuery selects committed assignments for export.
type RosterExportQuery struct {
	DepartmentID string `form:"departmentId" validate:"required"`
	StartDate    string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `form:"endDate" validate:"required,datetime=2006-01-02"`
	Format       string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// RosterExportResult carries a rendered roster document.
type RosterExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
