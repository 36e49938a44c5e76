package models

import (
	"time"
)

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	Progress    int       `gorm:"not null;default:0" json:"progress"`
	Priority    string    `gorm:"type:varchar(20);not null;default:'Low'" json:"priority"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	UserID      uint64    `gorm:"not null;index" json:"user_id"`
	// GroupLeaderID marks which delegation chain the task belongs to. Task
	// responses outside the delegation endpoints derive the leader from the
	// owning user instead of this column.
	GroupLeaderID *uint64   `gorm:"index" json:"group_leader_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Comments []Comment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}
