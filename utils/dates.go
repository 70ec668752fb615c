// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DayWindow returns [start of day, start of next day) for t shifted by offset days.
func DayWindow(t time.Time, offset int) (time.Time, time.Time) {
	start := BeginningOfDay(t).AddDate(0, 0, offset)
	return start, start.AddDate(0, 0, 1)
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
