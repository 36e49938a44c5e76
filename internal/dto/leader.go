package dto

import (
	"time"

	"github.com/tsubakihara/task-management-backend/internal/models"
)

// GroupLeaderDTO represents a group leader in API responses
type GroupLeaderDTO struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *UserDTO  `json:"user,omitempty"`
	Members   []UserDTO `json:"members,omitempty"`
	Tasks     []TaskDTO `json:"tasks,omitempty"`
}

// ToGroupLeaderDTO converts a GroupLeader model to GroupLeaderDTO
func ToGroupLeaderDTO(leader models.GroupLeader) GroupLeaderDTO {
	dto := GroupLeaderDTO{
		ID:        leader.ID,
		UserID:    leader.UserID,
		CreatedAt: leader.CreatedAt,
	}

	if leader.User.ID != 0 {
		user := ToUserDTO(leader.User)
		dto.User = &user
	}

	if len(leader.Members) > 0 {
		dto.Members = make([]UserDTO, len(leader.Members))
		for i, member := range leader.Members {
			dto.Members[i] = ToUserDTO(member)
		}
	}

	if len(leader.Tasks) > 0 {
		dto.Tasks = ToTaskDTOs(leader.Tasks, false)
	}

	return dto
}

// ToGroupLeaderDTOs converts a slice of group leaders
func ToGroupLeaderDTOs(leaders []models.GroupLeader) []GroupLeaderDTO {
	dtos := make([]GroupLeaderDTO, len(leaders))
	for i, leader := range leaders {
		dtos[i] = ToGroupLeaderDTO(leader)
	}
	return dtos
}
