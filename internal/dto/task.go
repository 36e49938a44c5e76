package dto

import (
	"time"

	"github.com/tsubakihara/task-management-backend/internal/constants"
	"github.com/tsubakihara/task-management-backend/internal/models"
)

// TaskDTO represents a task in API responses. GroupLeaderID is resolved from
// the owning user's leader link, which is the single source of truth outside
// the delegation endpoints.
type TaskDTO struct {
	ID            uint64       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Deadline      string       `json:"deadline"`
	Progress      int          `json:"progress"`
	Priority      string       `json:"priority"`
	Completed     bool         `json:"completed"`
	UserID        uint64       `json:"user_id"`
	GroupLeaderID *uint64      `json:"group_leader_id"`
	CreatedAt     time.Time    `json:"created_at"`
	User          *UserDTO     `json:"user,omitempty"`
	Comments      []CommentDTO `json:"comments"`
}

// TaskListResponse represents the paginated task listing
type TaskListResponse struct {
	Tasks       []TaskDTO `json:"tasks"`
	TotalTasks  int64     `json:"total_tasks"`
	CurrentPage int       `json:"current_page"`
	PerPage     int       `json:"per_page"`
}

// ToTaskDTO converts a Task model to TaskDTO. The owning user must be
// preloaded for the leader link to resolve; includeUser additionally nests
// the full user object (the public unpaginated listing does this).
func ToTaskDTO(task models.Task, includeUser bool) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline.Format(constants.DeadlineLayout),
		Progress:    task.Progress,
		Priority:    task.Priority,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		Comments:    ToCommentDTOs(task.Comments),
	}

	if task.User.ID != 0 {
		dto.GroupLeaderID = task.User.GroupLeaderID
		if includeUser {
			user := ToUserDTO(task.User)
			dto.User = &user
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, includeUser bool) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task, includeUser)
	}
	return dtos
}

// ToTaskListResponse assembles the paginated listing payload
func ToTaskListResponse(tasks []models.Task, page int, total int64) TaskListResponse {
	return TaskListResponse{
		Tasks:       ToTaskDTOs(tasks, false),
		TotalTasks:  total,
		CurrentPage: page,
		PerPage:     constants.TasksPerPage,
	}
}
