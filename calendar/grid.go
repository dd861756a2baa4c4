// Package calendar builds month grids and implements the popover date field
// used by the task form.
package calendar

import (
	"time"

	"github.com/ziyixi/tasklist/utils"
)

const (
	daysPerWeek   = 7
	shortGridSize = 5 * daysPerWeek
	longGridSize  = 6 * daysPerWeek
)

// Cell is one day in a month grid.
type Cell struct {
	Date    time.Time
	ISO     string
	Day     int
	InMonth bool
}

// MonthView identifies the month a grid displays.
type MonthView struct {
	Year  int
	Month time.Month
}

// FirstMonth and LastMonth bound navigation to the months whose every grid
// cell has a four digit year, so each cell's ISO string parses back.
var (
	FirstMonth = MonthView{Year: 1, Month: time.January}
	LastMonth  = MonthView{Year: 9999, Month: time.November}
)

// MonthOf returns the view containing t, clamped to FirstMonth..LastMonth.
func MonthOf(t time.Time) MonthView {
	return MonthView{Year: t.Year(), Month: t.Month()}.Clamp()
}

// Clamp limits v to FirstMonth..LastMonth.
func (v MonthView) Clamp() MonthView {
	switch {
	case v.before(FirstMonth):
		return FirstMonth
	case LastMonth.before(v):
		return LastMonth
	}
	return v
}

func (v MonthView) before(o MonthView) bool {
	return v.Year < o.Year || (v.Year == o.Year && v.Month < o.Month)
}

// Prev returns the previous month, rolling back the year after January. It
// stays on FirstMonth.
func (v MonthView) Prev() MonthView {
	if v.Month == time.January {
		return MonthView{Year: v.Year - 1, Month: time.December}.Clamp()
	}
	return MonthView{Year: v.Year, Month: v.Month - 1}.Clamp()
}

// Next returns the following month, rolling forward the year after December.
// It stays on LastMonth.
func (v MonthView) Next() MonthView {
	if v.Month == time.December {
		return MonthView{Year: v.Year + 1, Month: time.January}.Clamp()
	}
	return MonthView{Year: v.Year, Month: v.Month + 1}.Clamp()
}

// First is local midnight on the 1st of the month.
func (v MonthView) First() time.Time {
	return time.Date(v.Year, v.Month, 1, 0, 0, 0, 0, time.Local)
}

// Contains reports whether t falls inside the month.
func (v MonthView) Contains(t time.Time) bool {
	return t.Year() == v.Year && t.Month() == v.Month
}

// Cells is BuildGrid for this month.
func (v MonthView) Cells() []Cell {
	return BuildGrid(v.Year, v.Month)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// BuildGrid returns the Sunday-aligned cells covering the month: the tail of
// the previous month, every day of the month, then the head of the next month
// up to 35 cells, or 42 when five weeks are not enough.
func BuildGrid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	leading := int(first.Weekday())
	days := DaysIn(year, month)

	size := shortGridSize
	if leading+days > shortGridSize {
		size = longGridSize
	}

	cells := make([]Cell, 0, size)
	for i := 0; i < size; i++ {
		// time.Date normalizes days outside the month into its neighbours.
		d := time.Date(year, month, 1+i-leading, 0, 0, 0, 0, time.Local)
		cells = append(cells, Cell{
			Date:    d,
			ISO:     utils.ToISODate(d),
			Day:     d.Day(),
			InMonth: d.Month() == month && d.Year() == year,
		})
	}
	return cells
}
