// Package calendar builds the month grid shown by the scheduler UI and owns
// the canonical date key used to index appointments.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	// GridSize is the number of cells in a month view: 6 full weeks.
	GridSize = 42
	// DaysPerWeek is the number of columns of the grid.
	DaysPerWeek = 7

	// KeyLayout is the canonical date key format (YYYY-MM-DD).
	KeyLayout = "2006-01-02"
	// MonthLayout identifies a month in URLs and query params (YYYY-MM).
	MonthLayout = "2006-01"

	// MinYear and MaxYear bound the months that can be shown. Every cell of
	// their grids still has a four-digit year, so every key parses back.
	MinYear = 1
	MaxYear = 9998
)

var (
	ErrInvalidDateKey   = errors.New("invalid date key")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDirection = errors.New("invalid direction")
)

// Direction is a month navigation step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Day is one cell of the month grid.
type Day struct {
	Date           time.Time `json:"-"`
	Key            string    `json:"date"`
	Number         int       `json:"day"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	IsToday        bool      `json:"isToday"`
	Holiday        string    `json:"holiday,omitempty"`
}

// Grid is the 42-day display grid of a month.
type Grid struct {
	Year  int
	Month time.Month
	Days  []Day
}

// DateKey returns the calendar day of t, in t's own location, as YYYY-MM-DD.
// Every read and write of the appointment index goes through this function.
func DateKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseDateKey parses a canonical date key into midnight of that day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil || t.Format(KeyLayout) != key {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// MonthKey returns the YYYY-MM identifier of t's month.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonthKey parses YYYY-MM into the first day of that month in loc.
func ParseMonthKey(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil || t.Format(MonthLayout) != s || !SupportedYear(t.Year()) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t, nil
}

// SupportedYear reports whether months of year can be shown.
func SupportedYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// StartOfDay truncates t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BuildMonth returns the grid for ref's month: 42 consecutive days starting
// on the Sunday on or before the 1st. today is compared in ref's location.
func BuildMonth(ref, today time.Time) Grid {
	loc := ref.Location()
	year, month := ref.Year(), ref.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := int(first.Weekday())
	todayKey := DateKey(today.In(loc))

	holidays := map[int]map[string]string{}
	grid := Grid{Year: year, Month: month, Days: make([]Day, 0, GridSize)}
	for i := 0; i < GridSize; i++ {
		// time.Date normalises day overflow into the neighbouring months.
		d := time.Date(year, month, 1-offset+i, 0, 0, 0, 0, loc)
		key := DateKey(d)

		hy, ok := holidays[d.Year()]
		if !ok {
			hy = Holidays(d.Year())
			holidays[d.Year()] = hy
		}

		grid.Days = append(grid.Days, Day{
			Date:           d,
			Key:            key,
			Number:         d.Day(),
			IsCurrentMonth: d.Year() == year && d.Month() == month,
			IsToday:        key == todayKey,
			Holiday:        hy[key],
		})
	}
	return grid
}

// Weeks splits the grid into rows of seven days.
func (g Grid) Weeks() [][]Day {
	weeks := make([][]Day, 0, GridSize/DaysPerWeek)
	for i := 0; i < len(g.Days); i += DaysPerWeek {
		end := i + DaysPerWeek
		if end > len(g.Days) {
			end = len(g.Days)
		}
		weeks = append(weeks, g.Days[i:end])
	}
	return weeks
}

// Keys returns the date keys of every cell in grid order.
func (g Grid) Keys() []string {
	keys := make([]string, len(g.Days))
	for i, d := range g.Days {
		keys[i] = d.Key
	}
	return keys
}

// Title is the pt-BR heading of the grid, e.g. "Março 2024".
func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", MonthName(g.Month), g.Year)
}

// Reference returns the first day of the grid's month.
func (g Grid) Reference() time.Time {
	for _, d := range g.Days {
		if d.IsCurrentMonth {
			return d.Date
		}
	}
	return time.Time{}
}

// Navigate moves ref by exactly one month. Day-of-month is preserved when
// valid and overflows into the following month otherwise (31 Jan -> 2/3 Mar).
func Navigate(ref time.Time, dir Direction) time.Time {
	return ref.AddDate(0, int(dir), 0)
}

// ParseDirection accepts "prev" and "next".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "prev":
		return Prev, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}
