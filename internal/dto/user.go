package dto

import (
	"time"

	"github.com/tsubakihara/task-management-backend/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID            uint64    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	NotifyByEmail bool      `json:"notify_by_email"`
	GroupLeaderID *uint64   `json:"group_leader_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		ProfileImage:  user.ProfileImage,
		NotifyByEmail: user.NotifyByEmail,
		GroupLeaderID: user.GroupLeaderID,
		CreatedAt:     user.CreatedAt,
	}
}
