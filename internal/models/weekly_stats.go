package models

import "time"

// ConsecutiveLookbackDays bounds how far back a working streak is traced.
const ConsecutiveLookbackDays = 30

// WeeklyStats aggregates persisted work for one employee in one ISO week.
// WorkedDates covers the lookback window before the week as well as the week
// itself so streaks can be derived for any day of the week.
type WeeklyStats struct {
	EmployeeID   string    `json:"employee_id"`
	WeekStart    string    `json:"week_start"`
	ShiftsInWeek int       `json:"shifts_in_week"`
	HoursInWeek  float64   `json:"hours_in_week"`
	WorkedDates  []string  `json:"worked_dates"`
	ComputedAt   time.Time `json:"computed_at"`
}

// Worked reports whether a persisted assignment exists on the date.
func (w WeeklyStats) Worked(date string) bool {
	for _, d := range w.WorkedDates {
		if d == date {
			return true
		}
	}
	return false
}

// ConsecutiveDaysAsOf counts the unbroken run of worked days ending the day
// before date. extra marks additional days as worked.
func (w WeeklyStats) ConsecutiveDaysAsOf(date time.Time, extra func(string) bool) int {
	streak := 0
	for i := 1; i <= ConsecutiveLookbackDays; i++ {
		key := date.AddDate(0, 0, -i).Format(DateLayout)
		if w.Worked(key) || (extra != nil && extra(key)) {
			streak++
			continue
		}
		break
	}
	return streak
}

// ConsecutiveDaysAfter counts the unbroken run of worked days starting the day
// after date, bounded like ConsecutiveDaysAsOf.
func (w WeeklyStats) ConsecutiveDaysAfter(date time.Time, extra func(string) bool) int {
	streak := 0
	for i := 1; i <= ConsecutiveLookbackDays; i++ {
		key := date.AddDate(0, 0, i).Format(DateLayout)
		if w.Worked(key) || (extra != nil && extra(key)) {
			streak++
			continue
		}
		break
	}
	return streak
}
