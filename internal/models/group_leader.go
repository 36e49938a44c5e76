package models

import "time"

// GroupLeader is the delegation role record. Its existence for a given
// UserID is what makes that user a leader; the users reporting to the
// leader point back via User.GroupLeaderID.
type GroupLeader struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Members []User `gorm:"foreignKey:GroupLeaderID" json:"members,omitempty"`
	Tasks   []Task `gorm:"foreignKey:GroupLeaderID" json:"tasks,omitempty"`
}
