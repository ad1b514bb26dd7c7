package capacity

import (
	"time"

	"teamcap/models"
)

// NormalizeDate truncates a timestamp to midnight UTC. All date arithmetic in
// this package runs on normalized dates to avoid timezone drift.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the Monday of the ISO week containing t, at midnight UTC.
func WeekStartOf(t time.Time) time.Time {
	d := NormalizeDate(t)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, -offset)
}

// IsWeekStart reports whether t is a Monday at midnight UTC.
func IsWeekStart(t time.Time) bool {
	return t.Equal(WeekStartOf(t))
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WorkingDays computes the net working days user has in the week starting at
// weekStart, given that user's approved time-off requests. Each request's
// inclusive date range is intersected with the 7-day week window and the
// weekday days in the intersection are subtracted from daysPerWeek, floored
// at zero. Non-approved requests are ignored.
func WorkingDays(weekStart time.Time, approved []models.TimeOffRequest, daysPerWeek int) int {
	weekStart = NormalizeDate(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)

	offDays := 0
	for _, req := range approved {
		if req.Status != models.StatusApproved {
			continue
		}
		start := NormalizeDate(req.StartDate)
		end := NormalizeDate(req.EndDate)
		if start.Before(weekStart) {
			start = weekStart
		}
		if end.After(weekEnd) {
			end = weekEnd
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if isWeekday(d) {
				offDays++
			}
		}
	}

	days := daysPerWeek - offDays
	if days < 0 {
		return 0
	}
	return days
}
