package models

import (
	"strconv"
	"time"
)

// Setting keys for capacity tunables.
const (
	SettingPaceFactor         = "pace_factor"
	SettingWorkingHoursPerDay = "working_hours_per_day"
	SettingWorkingDaysPerWeek = "working_days_per_week"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Value     string    `gorm:"not null;size:200" json:"value"`
}

// CapacitySettings are the resolved tunables used by every capacity
// computation.
type CapacitySettings struct {
	PaceFactor         float64 `json:"pace_factor"`
	WorkingHoursPerDay float64 `json:"working_hours_per_day"`
	WorkingDaysPerWeek int     `json:"working_days_per_week"`
}

// ResolveCapacitySettings overlays stored settings rows on top of the given
// defaults. Unparseable values keep the default.
func ResolveCapacitySettings(rows []Setting, defaults CapacitySettings) CapacitySettings {
	resolved := defaults
	for _, row := range rows {
		switch row.Key {
		case SettingPaceFactor:
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v > 0 && v <= 1 {
				resolved.PaceFactor = v
			}
		case SettingWorkingHoursPerDay:
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v > 0 && v <= 24 {
				resolved.WorkingHoursPerDay = v
			}
		case SettingWorkingDaysPerWeek:
			if v, err := strconv.Atoi(row.Value); err == nil && v >= 1 && v <= 7 {
				resolved.WorkingDaysPerWeek = v
			}
		}
	}
	return resolved
}
