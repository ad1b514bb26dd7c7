package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName           string         `gorm:"not null;size:200" json:"full_name"`
	Email              string         `gorm:"size:200" json:"email,omitempty"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`

	Allocations     []Allocation     `gorm:"foreignKey:UserID" json:"allocations,omitempty"`
	TimeOffRequests []TimeOffRequest `gorm:"foreignKey:UserID" json:"time_off_requests,omitempty"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
