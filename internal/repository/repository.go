package repository

import (
	"time"

	"github.com/tsubakihara/task-management-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// AssignLeader points every listed user at the leader within a single
	// transaction; nothing is written if any id is unknown.
	AssignLeader(leaderID uint64, userIDs []uint64) error

	// DeleteCascade removes a user together with their tasks, their
	// comments, comments under their tasks, and their leader record.
	DeleteCascade(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID  *uint64
	Page     int
	PageSize int
	Preload  []string
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindOwned finds a task scoped to an owner; a foreign task is
	// indistinguishable from a missing one.
	FindOwned(id, ownerID uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task and its comments in one transaction
	Delete(id uint64) error

	// Reassign moves the tasks to a new owner under a delegation chain in
	// one transaction.
	Reassign(taskIDs []uint64, ownerID, leaderID uint64) error

	// ListDueBefore returns the owner's incomplete tasks whose deadline is
	// at or before the cutoff.
	ListDueBefore(ownerID uint64, cutoff time.Time) ([]models.Task, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID
	FindByID(id uint64) (*models.Comment, error)

	// ListByTask lists all comments under a task
	ListByTask(taskID uint64) ([]models.Comment, error)

	// Update updates a comment
	Update(comment *models.Comment) error

	// Delete removes a comment
	Delete(id uint64) error
}

// LeaderRepository defines the interface for group leader data access
type LeaderRepository interface {
	// Create creates a new group leader record
	Create(leader *models.GroupLeader) error

	// FindByID finds a group leader by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.GroupLeader, error)

	// FindByUserID finds the leader record a user was promoted into
	FindByUserID(userID uint64) (*models.GroupLeader, error)

	// List lists all group leaders with members and delegated tasks
	List() ([]models.GroupLeader, error)

	// DeleteCascade clears member and task links, then removes the record,
	// in one transaction.
	DeleteCascade(id uint64) error
}
