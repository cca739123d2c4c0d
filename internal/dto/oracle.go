package dto

// OracleRequest is the payload sent to the suggestion oracle.
type OracleRequest struct {
	Shifts []OracleShift `json:"shifts"`
}

// OracleShift describes one shift and its open positions.
type OracleShift struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	DayOfWeek string           `json:"dayOfWeek"`
	IsWeekend bool             `json:"isWeekend"`
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Category  string           `json:"category"`
	Positions []OraclePosition `json:"positions"`
}

// OraclePosition lists the candidate pool for one shift position.
type OraclePosition struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	RequiredCount int               `json:"requiredCount"`
	Candidates    []OracleCandidate `json:"candidates"`
}

// OracleCandidate is a pool member annotated for ranking.
type OracleCandidate struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FatigueRiskTier string  `json:"fatigueRiskTier,omitempty"`
	HoursSoFar      float64 `json:"hoursSoFar"`
	PrefersWeekends *bool   `json:"prefersWeekends,omitempty"`
}

// OracleSuggestion is a proposed placement returned by the oracle.
type OracleSuggestion struct {
	ShiftID    string `json:"shift_id"`
	PositionID string `json:"position_id"`
	EmployeeID string `json:"employee_id"`
}
