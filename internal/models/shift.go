package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used across the scheduler.
const DateLayout = "2006-01-02"

// ShiftCategory classifies a shift by the part of the day it covers.
type ShiftCategory string

const (
	ShiftCategoryDay      ShiftCategory = "day"
	ShiftCategoryEvening  ShiftCategory = "evening"
	ShiftCategoryNight    ShiftCategory = "night"
	ShiftCategoryRotating ShiftCategory = "rotating"
)

// ShiftStatus is the aggregate staffing state of a shift.
type ShiftStatus string

const (
	ShiftStatusOpen         ShiftStatus = "open"
	ShiftStatusUnderstaffed ShiftStatus = "understaffed"
	ShiftStatusFilled       ShiftStatus = "filled"
)

// Shift is a staffing requirement for one department on one calendar date.
type Shift struct {
	ID           string          `db:"id" json:"id"`
	DepartmentID string          `db:"department_id" json:"department_id"`
	Date         time.Time       `db:"shift_date" json:"date"`
	StartTime    string          `db:"start_time" json:"start_time"`
	EndTime      string          `db:"end_time" json:"end_time"`
	Category     ShiftCategory   `db:"category" json:"category"`
	Status       ShiftStatus     `db:"status" json:"status"`
	Positions    []ShiftPosition `db:"-" json:"positions"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ShiftPosition is the headcount required for one position on a shift.
type ShiftPosition struct {
	ShiftID       string `db:"shift_id" json:"shift_id"`
	PositionID    string `db:"position_id" json:"position_id"`
	PositionName  string `db:"position_name" json:"position_name"`
	RequiredCount int    `db:"required_count" json:"required_count"`
}

// DateKey returns the shift date in DateLayout.
func (s Shift) DateKey() string {
	return s.Date.Format(DateLayout)
}

// IsWeekend reports whether the shift falls on Saturday or Sunday.
func (s Shift) IsWeekend() bool {
	wd := s.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Duration returns the shift length. An end time at or before the start
// time means the shift runs past midnight.
func (s Shift) Duration() (time.Duration, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return 0, err
	}
	if end <= start {
		end += 24 * time.Hour
	}
	return end - start, nil
}

// Hours is Duration expressed in hours, zero when the times are malformed.
func (s Shift) Hours() float64 {
	d, err := s.Duration()
	if err != nil {
		return 0
	}
	return d.Hours()
}

// RequiredTotal sums the headcount over all positions.
func (s Shift) RequiredTotal() int {
	total := 0
	for _, p := range s.Positions {
		total += p.RequiredCount
	}
	return total
}

// Position looks up a position requirement by id.
func (s Shift) Position(positionID string) (ShiftPosition, bool) {
	for _, p := range s.Positions {
		if p.PositionID == positionID {
			return p, true
		}
	}
	return ShiftPosition{}, false
}

// ParseClock converts "15:04" or "15:04:05" into an offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	layout := "15:04"
	if strings.Count(raw, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", raw, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

// ISOWeekStart returns the Monday that opens the ISO week containing t.
func ISOWeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
