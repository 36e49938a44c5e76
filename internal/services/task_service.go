package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tsubakihara/task-management-backend/internal/constants"
	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskFieldsRequired = errors.New("title, description, and deadline are required")
	ErrInvalidDeadline    = errors.New("deadline must be a valid YYYY-MM-DD date")
	ErrTaskNotFound       = errors.New("task not found")
)

// TaskService handles task lifecycle business logic.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description string
	Deadline    string
	Progress    int
	Priority    string
}

// Create validates and persists a new task.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" || input.Description == "" || input.Deadline == "" {
		return nil, ErrTaskFieldsRequired
	}

	deadline, err := time.Parse(constants.DeadlineLayout, input.Deadline)
	if err != nil {
		return nil, ErrInvalidDeadline
	}

	priority := input.Priority
	if priority == "" {
		priority = constants.DefaultTaskPriority
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Deadline:    deadline,
		Progress:    clampProgress(input.Progress),
		Priority:    priority,
		Completed:   false,
		UserID:      input.OwnerID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListOwned returns one page of the owner's tasks plus the total count.
func (s *TaskService) ListOwned(ownerID uint64, page int) ([]models.Task, int64, error) {
	if page < 1 {
		page = 1
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:  &ownerID,
		Page:     page,
		PageSize: constants.TasksPerPage,
		Preload:  []string{"User", "Comments"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// ListAll returns every task with its owner and comments, unpaginated.
func (s *TaskService) ListAll() ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(repository.TaskFilter{
		Preload: []string{"User", "Comments"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetAny returns a task regardless of owner.
func (s *TaskService) GetAny(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "User", "Comments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// GetOwned returns a task scoped to its owner. A task owned by someone else
// is reported as missing, never as forbidden.
func (s *TaskService) GetOwned(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(taskID, ownerID, "User", "Comments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTaskInput represents a partial task update; nil means unchanged.
// Completed is deliberately not a pointer: an omitted value writes false.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Deadline    *string
	Progress    *int
	Priority    *string
	Completed   bool
}

// Update applies a partial update to an owned task.
func (s *TaskService) Update(taskID, ownerID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetOwned(taskID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Deadline != nil {
		deadline, err := time.Parse(constants.DeadlineLayout, *input.Deadline)
		if err != nil {
			return nil, ErrInvalidDeadline
		}
		task.Deadline = deadline
	}
	if input.Progress != nil {
		task.Progress = clampProgress(*input.Progress)
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	// Completed is always overwritten; omitting it marks the task incomplete.
	task.Completed = input.Completed

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetOwned(taskID, ownerID)
}

// Delete removes an owned task and its comments.
func (s *TaskService) Delete(taskID, ownerID uint64) error {
	task, err := s.GetOwned(taskID, ownerID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// clampProgress bounds progress to the valid range
func clampProgress(progress int) int {
	if progress < constants.ProgressMin {
		return constants.ProgressMin
	}
	if progress > constants.ProgressMax {
		return constants.ProgressMax
	}
	return progress
}
