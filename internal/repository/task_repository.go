package repository

import (
	"time"

	"github.com/tsubakihara/task-management-backend/internal/database"
	"github.com/tsubakihara/task-management-backend/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindOwned finds a task by ID restricted to its owner. The ownership
// constraint lives in the lookup filter, so a foreign task surfaces as
// ErrRecordNotFound rather than a separate authorization failure.
func (r *GormTaskRepository) FindOwned(id, ownerID uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ? AND user_id = ?", id, ownerID).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	for _, p := range filter.Preload {
		listQuery = listQuery.Preload(p)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes the task's comments first, then the task itself
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// Reassign moves the tasks to a new owner within the leader's chain
func (r *GormTaskRepository) Reassign(taskIDs []uint64, ownerID, leaderID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id IN ?", taskIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(taskIDs) {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.Task{}).
			Where("id IN ?", taskIDs).
			Updates(map[string]interface{}{
				"user_id":         ownerID,
				"group_leader_id": leaderID,
			}).Error
	})
}

// ListDueBefore returns the owner's incomplete tasks due at or before cutoff
func (r *GormTaskRepository) ListDueBefore(ownerID uint64, cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("user_id = ? AND completed = ? AND deadline <= ?", ownerID, false, cutoff).
		Order("deadline ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
