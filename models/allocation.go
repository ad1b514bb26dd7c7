package models

import (
	"time"

	"gorm.io/gorm"
)

// Allocation is one user's percentage split across work categories for a
// single week. WeekStart is always a Monday at midnight UTC; there is at most
// one row per (user, week).
type Allocation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_alloc_user_week" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeekStart time.Time      `gorm:"not null;type:date;uniqueIndex:idx_alloc_user_week" json:"week_start"`

	Backend           float64 `gorm:"not null;default:0" json:"backend"`
	Frontend          float64 `gorm:"not null;default:0" json:"frontend"`
	CodeReview        float64 `gorm:"not null;default:0" json:"code_review"`
	ReleaseMgmt       float64 `gorm:"not null;default:0" json:"release_mgmt"`
	UX                float64 `gorm:"not null;default:0" json:"ux"`
	TechnicalAnalysis float64 `gorm:"not null;default:0" json:"technical_analysis"`
	ProdSupport       float64 `gorm:"not null;default:0" json:"prod_support"`

	Priority string `gorm:"size:50" json:"priority"`
}

// AllocationCategories lists the category column names in export order.
var AllocationCategories = []string{
	"Backend", "Frontend", "Code Review", "Release Mgmt", "UX",
	"Technical Analysis", "Prod Support",
}

// CategoryValues returns the category percentages in the same order as
// AllocationCategories.
func (a *Allocation) CategoryValues() []float64 {
	return []float64{
		a.Backend, a.Frontend, a.CodeReview, a.ReleaseMgmt,
		a.UX, a.TechnicalAnalysis, a.ProdSupport,
	}
}

// TotalPercent is the sum of all category percentages.
func (a *Allocation) TotalPercent() float64 {
	var total float64
	for _, v := range a.CategoryValues() {
		total += v
	}
	return total
}
