package capacity

import (
	"testing"
	"time"

	"teamcap/models"
)

// monday is a known Monday used as a week start throughout the tests.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func approved(start, end time.Time) models.TimeOffRequest {
	return models.TimeOffRequest{
		StartDate: start,
		EndDate:   end,
		Status:    models.StatusApproved,
	}
}

// TestWeekStartOf ensures week starts resolve to the Monday of the ISO week.
func TestWeekStartOf(t *testing.T) {
	if got := WeekStartOf(monday); !got.Equal(monday) {
		t.Fatalf("expected Monday to map to itself, got %v", got)
	}
	sunday := monday.AddDate(0, 0, 6)
	if got := WeekStartOf(sunday); !got.Equal(monday) {
		t.Fatalf("expected Sunday to map to previous Monday, got %v", got)
	}
	if !IsWeekStart(monday) {
		t.Fatal("expected Monday to be a week start")
	}
	if IsWeekStart(monday.AddDate(0, 0, 1)) {
		t.Fatal("expected Tuesday not to be a week start")
	}
}

// TestWorkingDaysNoTimeOff ensures a week with no approved time off yields
// the full working week.
func TestWorkingDaysNoTimeOff(t *testing.T) {
	if got := WorkingDays(monday, nil, 5); got != 5 {
		t.Fatalf("expected 5 working days, got %d", got)
	}
}

// TestWorkingDaysMidWeek covers the Wed-Thu scenario: two weekdays off leave
// three working days.
func TestWorkingDaysMidWeek(t *testing.T) {
	wed := monday.AddDate(0, 0, 2)
	thu := monday.AddDate(0, 0, 3)
	got := WorkingDays(monday, []models.TimeOffRequest{approved(wed, thu)}, 5)
	if got != 3 {
		t.Fatalf("expected 3 working days, got %d", got)
	}
}

// TestWorkingDaysWeekendOnly ensures weekend-only time off costs nothing.
func TestWorkingDaysWeekendOnly(t *testing.T) {
	sat := monday.AddDate(0, 0, 5)
	sun := monday.AddDate(0, 0, 6)
	got := WorkingDays(monday, []models.TimeOffRequest{approved(sat, sun)}, 5)
	if got != 5 {
		t.Fatalf("expected 5 working days, got %d", got)
	}
}

// TestWorkingDaysFloorsAtZero ensures a request covering the whole week
// cannot push the count below zero.
func TestWorkingDaysFloorsAtZero(t *testing.T) {
	start := monday.AddDate(0, 0, -7)
	end := monday.AddDate(0, 0, 14)
	got := WorkingDays(monday, []models.TimeOffRequest{approved(start, end)}, 5)
	if got != 0 {
		t.Fatalf("expected 0 working days, got %d", got)
	}
}

// TestWorkingDaysClipsToWeek ensures only the intersection with the week
// window is counted for a request spanning into the week.
func TestWorkingDaysClipsToWeek(t *testing.T) {
	start := monday.AddDate(0, 0, -3)
	end := monday.AddDate(0, 0, 1) // Mon and Tue of this week
	got := WorkingDays(monday, []models.TimeOffRequest{approved(start, end)}, 5)
	if got != 3 {
		t.Fatalf("expected 3 working days, got %d", got)
	}
}

// TestWorkingDaysIgnoresNonApproved ensures pending and rejected requests do
// not reduce working days.
func TestWorkingDaysIgnoresNonApproved(t *testing.T) {
	req := approved(monday, monday.AddDate(0, 0, 4))
	for _, status := range []models.TimeOffStatus{
		models.StatusPending, models.StatusRejected, models.StatusCancelled,
	} {
		req.Status = status
		if got := WorkingDays(monday, []models.TimeOffRequest{req}, 5); got != 5 {
			t.Fatalf("status %s: expected 5 working days, got %d", status, got)
		}
	}
}

// TestWorkingDaysMonotonic ensures growing coverage never increases the
// result.
func TestWorkingDaysMonotonic(t *testing.T) {
	prev := 5
	for days := 0; days < 5; days++ {
		req := approved(monday, monday.AddDate(0, 0, days))
		got := WorkingDays(monday, []models.TimeOffRequest{req}, 5)
		if got > prev {
			t.Fatalf("working days increased from %d to %d at coverage %d", prev, got, days+1)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("expected full weekday coverage to yield 0, got %d", prev)
	}
}
