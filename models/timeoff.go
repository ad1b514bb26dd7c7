package models

import (
	"time"

	"gorm.io/gorm"
)

type TimeOffStatus string

const (
	StatusPending   TimeOffStatus = "PENDING"
	StatusApproved  TimeOffStatus = "APPROVED"
	StatusRejected  TimeOffStatus = "REJECTED"
	StatusCancelled TimeOffStatus = "CANCELLED"
)

type TimeOffType string

const (
	TimeOffVacation TimeOffType = "VACATION"
	TimeOffSick     TimeOffType = "SICK"
	TimeOffPersonal TimeOffType = "PERSONAL"
	TimeOffHoliday  TimeOffType = "HOLIDAY"
)

// AllTimeOffTypes lists valid leave types for input validation.
var AllTimeOffTypes = []TimeOffType{
	TimeOffVacation, TimeOffSick, TimeOffPersonal, TimeOffHoliday,
}

func (t TimeOffType) Valid() bool {
	for _, typ := range AllTimeOffTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// TimeOffRequest is a date-range leave request. StartDate and EndDate are
// inclusive and normalized to midnight UTC. IsAdminCreated distinguishes
// company-imposed holidays from self-requested leave.
type TimeOffRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index:idx_timeoff_user_status" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`

	StartDate time.Time     `gorm:"not null;type:date" json:"start_date"`
	EndDate   time.Time     `gorm:"not null;type:date" json:"end_date"`
	Type      TimeOffType   `gorm:"not null;size:20" json:"type"`
	Status    TimeOffStatus `gorm:"not null;size:20;index:idx_timeoff_user_status" json:"status"`
	Reason    string        `gorm:"size:500" json:"reason"`

	IsAdminCreated bool  `gorm:"default:false" json:"is_admin_created"`
	CreatedBy      *uint `json:"created_by,omitempty"`
	Creator        *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	ApprovedBy *uint      `json:"approved_by,omitempty"`
	Approver   *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CancelledBy        *uint      `json:"cancelled_by,omitempty"`
	Canceller          *User      `gorm:"foreignKey:CancelledBy" json:"canceller,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"size:500" json:"cancellation_reason,omitempty"`
}

// Blocking reports whether the request occupies its date range for overlap
// purposes. Rejected and cancelled requests free their range.
func (r *TimeOffRequest) Blocking() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}
