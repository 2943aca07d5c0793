// Package clock provides the simulation calendar: a monotonic hour
// counter decomposed into a fixed 24-hour day, 30-day month, 12-month year.
package clock

import "fmt"

// Calendar constants. No leap logic — every month is 30 days.
const (
	HoursPerDay   = 24
	DaysPerMonth  = 30
	MonthsPerYear = 12
	HoursPerMonth = HoursPerDay * DaysPerMonth
	HoursPerYear  = HoursPerMonth * MonthsPerYear
)

// GameTime is a point in simulation time. Hour is the monotonic counter
// since world start; the calendar fields are derived from it.
type GameTime struct {
	TotalHours uint64 `json:"total_hours"`
	Year       int    `json:"year"`  // 1-based
	Month      int    `json:"month"` // 1-12
	Day        int    `json:"day"`   // 1-30
	Hour       int    `json:"hour"`  // 0-23
}

// At returns the GameTime for a given monotonic hour count.
func At(totalHours uint64) GameTime {
	hour := int(totalHours % HoursPerDay)
	totalDays := totalHours / HoursPerDay
	day := int(totalDays%DaysPerMonth) + 1
	totalMonths := totalDays / DaysPerMonth
	month := int(totalMonths%MonthsPerYear) + 1
	year := int(totalMonths/MonthsPerYear) + 1

	return GameTime{
		TotalHours: totalHours,
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       hour,
	}
}

// Next returns the time one hour later.
func (t GameTime) Next() GameTime {
	return At(t.TotalHours + 1)
}

// DayBoundary reports whether this hour is the last of its day.
func (t GameTime) DayBoundary() bool {
	return t.Hour == HoursPerDay-1
}

// MonthBoundary reports whether this hour is the last of its month.
func (t GameTime) MonthBoundary() bool {
	return t.DayBoundary() && t.Day == DaysPerMonth
}

// YearBoundary reports whether this hour is the last of its year.
func (t GameTime) YearBoundary() bool {
	return t.MonthBoundary() && t.Month == MonthsPerYear
}

// MidMonth reports whether this hour closes day 15 — the first wage
// installment point.
func (t GameTime) MidMonth() bool {
	return t.DayBoundary() && t.Day == DaysPerMonth/2
}

// String renders "Y3 M07 D12 14:00".
func (t GameTime) String() string {
	return fmt.Sprintf("Y%d M%02d D%02d %02d:00", t.Year, t.Month, t.Day, t.Hour)
}
