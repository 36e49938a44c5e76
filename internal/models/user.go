package models

import (
	"time"
)

type User struct {
	ID            uint64 `gorm:"primarykey" json:"id"`
	Username      string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email         string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"type:varchar(255);not null" json:"-"`
	ProfileImage  string `gorm:"type:varchar(255)" json:"profile_image,omitempty"`
	NotifyByEmail bool   `gorm:"not null;default:false" json:"notify_by_email"`
	// GroupLeaderID is the leader this user reports to. Being a leader is a
	// separate axis, recorded by a GroupLeader row keyed on UserID.
	GroupLeaderID *uint64   `gorm:"index" json:"group_leader_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Tasks    []Task    `gorm:"foreignKey:UserID" json:"-"`
	Comments []Comment `gorm:"foreignKey:UserID" json:"-"`
}
