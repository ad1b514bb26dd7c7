package models

import "testing"

// TestResolveCapacitySettings ensures stored rows override defaults and
// invalid values are ignored.
func TestResolveCapacitySettings(t *testing.T) {
	defaults := CapacitySettings{PaceFactor: 0.8, WorkingHoursPerDay: 8, WorkingDaysPerWeek: 5}

	rows := []Setting{
		{Key: SettingPaceFactor, Value: "0.75"},
		{Key: SettingWorkingDaysPerWeek, Value: "4"},
	}
	got := ResolveCapacitySettings(rows, defaults)
	if got.PaceFactor != 0.75 {
		t.Fatalf("expected pace factor 0.75, got %v", got.PaceFactor)
	}
	if got.WorkingDaysPerWeek != 4 {
		t.Fatalf("expected 4 days per week, got %d", got.WorkingDaysPerWeek)
	}
	if got.WorkingHoursPerDay != 8 {
		t.Fatalf("expected default hours per day, got %v", got.WorkingHoursPerDay)
	}

	bad := []Setting{
		{Key: SettingPaceFactor, Value: "2.5"},
		{Key: SettingWorkingHoursPerDay, Value: "banana"},
	}
	got = ResolveCapacitySettings(bad, defaults)
	if got != defaults {
		t.Fatalf("expected invalid values to keep defaults, got %+v", got)
	}
}
