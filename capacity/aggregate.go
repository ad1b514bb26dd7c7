package capacity

import (
	"errors"
	"time"

	"teamcap/models"
)

var (
	// ErrOverAllocated is returned when an allocation's category percentages
	// sum to more than 100.
	ErrOverAllocated = errors.New("allocation percentages sum to more than 100")

	// ErrNoSourceWeek is returned by copy-previous-week when the source week
	// has no allocation rows.
	ErrNoSourceWeek = errors.New("no allocations found for source week")
)

// ValidateAllocation rejects allocations whose category sum exceeds 100.
// Exactly 100 is accepted.
func ValidateAllocation(a *models.Allocation) error {
	for _, v := range a.CategoryValues() {
		if v < 0 || v > 100 {
			return ErrOverAllocated
		}
	}
	if a.TotalPercent() > 100 {
		return ErrOverAllocated
	}
	return nil
}

// UserCapacity is one user's computed capacity for one week.
type UserCapacity struct {
	UserID         uint               `json:"user_id"`
	Username       string             `json:"username"`
	FullName       string             `json:"full_name"`
	Role           models.Role        `json:"role"`
	WeekStart      string             `json:"week_start"`
	WorkingDays    int                `json:"working_days"`
	MaxHours       float64            `json:"max_hours"`
	AllocatedHours float64            `json:"allocated_hours"`
	AvailableHours float64            `json:"available_hours"`
	TotalPercent   float64            `json:"total_percent"`
	Allocation     *models.Allocation `json:"allocation,omitempty"`
}

// ComputeUserCapacity derives hours for one user-week. alloc may be nil when
// the user has no allocation row for the week.
func ComputeUserCapacity(user *models.User, weekStart time.Time, workingDays int, alloc *models.Allocation, settings models.CapacitySettings) UserCapacity {
	maxHours := float64(workingDays) * settings.WorkingHoursPerDay * settings.PaceFactor

	var totalPercent float64
	if alloc != nil {
		totalPercent = alloc.TotalPercent()
	}
	allocatedHours := maxHours * totalPercent / 100

	return UserCapacity{
		UserID:         user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Role:           user.Role,
		WeekStart:      weekStart.Format("2006-01-02"),
		WorkingDays:    workingDays,
		MaxHours:       maxHours,
		AllocatedHours: allocatedHours,
		AvailableHours: maxHours - allocatedHours,
		TotalPercent:   totalPercent,
		Allocation:     alloc,
	}
}

// TeamOverview is the per-week team rollup. Availability compares actual
// capacity (net of time off) against the theoretical maximum; utilization
// compares allocated hours against the same baseline.
type TeamOverview struct {
	WeekStart              string             `json:"week_start"`
	TeamSize               int                `json:"team_size"`
	TotalCapacity          float64            `json:"total_capacity"`
	AllocatedCapacity      float64            `json:"allocated_capacity"`
	AvailableCapacity      float64            `json:"available_capacity"`
	TheoreticalMaxCapacity float64            `json:"theoretical_max_capacity"`
	Availability           float64            `json:"availability"`
	Utilization            float64            `json:"utilization"`
	Categories             map[string]float64 `json:"categories"`
	Users                  []UserCapacity     `json:"users"`
}

// ComputeTeamOverview rolls one week's user capacities up into team totals
// and a per-category hours breakdown. The caller passes only capacity-subject
// users.
func ComputeTeamOverview(weekStart time.Time, users []UserCapacity, settings models.CapacitySettings) TeamOverview {
	overview := TeamOverview{
		WeekStart:  weekStart.Format("2006-01-02"),
		TeamSize:   len(users),
		Categories: make(map[string]float64),
		Users:      users,
	}

	for _, name := range models.AllocationCategories {
		overview.Categories[name] = 0
	}

	for _, uc := range users {
		overview.TotalCapacity += uc.MaxHours
		overview.AllocatedCapacity += uc.AllocatedHours
		overview.AvailableCapacity += uc.AvailableHours

		if uc.Allocation != nil {
			for i, pct := range uc.Allocation.CategoryValues() {
				overview.Categories[models.AllocationCategories[i]] += uc.MaxHours * pct / 100
			}
		}
	}

	overview.TheoreticalMaxCapacity = float64(len(users)) *
		float64(settings.WorkingDaysPerWeek) * settings.WorkingHoursPerDay * settings.PaceFactor

	if overview.TheoreticalMaxCapacity > 0 {
		overview.Availability = overview.TotalCapacity / overview.TheoreticalMaxCapacity
		overview.Utilization = overview.AllocatedCapacity / overview.TheoreticalMaxCapacity
	}

	return overview
}

// CopyWeekPlan prepares the allocation rows to upsert into targetWeek from
// the source week's rows. Existing target rows are overwritten by the upsert.
func CopyWeekPlan(source []models.Allocation, targetWeek time.Time) ([]models.Allocation, error) {
	if len(source) == 0 {
		return nil, ErrNoSourceWeek
	}

	targetWeek = NormalizeDate(targetWeek)
	rows := make([]models.Allocation, 0, len(source))
	for _, src := range source {
		rows = append(rows, models.Allocation{
			UserID:            src.UserID,
			WeekStart:         targetWeek,
			Backend:           src.Backend,
			Frontend:          src.Frontend,
			CodeReview:        src.CodeReview,
			ReleaseMgmt:       src.ReleaseMgmt,
			UX:                src.UX,
			TechnicalAnalysis: src.TechnicalAnalysis,
			ProdSupport:       src.ProdSupport,
			Priority:          src.Priority,
		})
	}
	return rows, nil
}
