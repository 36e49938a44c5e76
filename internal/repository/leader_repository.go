package repository

import (
	"github.com/tsubakihara/task-management-backend/internal/models"
	"gorm.io/gorm"
)

// GormLeaderRepository is a GORM implementation of LeaderRepository
type GormLeaderRepository struct {
	db *gorm.DB
}

// NewLeaderRepository creates a new LeaderRepository
func NewLeaderRepository(db *gorm.DB) LeaderRepository {
	return &GormLeaderRepository{db: db}
}

// Create creates a new group leader record
func (r *GormLeaderRepository) Create(leader *models.GroupLeader) error {
	return r.db.Create(leader).Error
}

// FindByID finds a group leader by ID with optional preloading
func (r *GormLeaderRepository) FindByID(id uint64, preload ...string) (*models.GroupLeader, error) {
	var leader models.GroupLeader
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&leader, id).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

// FindByUserID finds the leader record a user was promoted into
func (r *GormLeaderRepository) FindByUserID(userID uint64) (*models.GroupLeader, error) {
	var leader models.GroupLeader
	if err := r.db.Where("user_id = ?", userID).First(&leader).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

// List lists all group leaders with members and delegated tasks
func (r *GormLeaderRepository) List() ([]models.GroupLeader, error) {
	var leaders []models.GroupLeader
	if err := r.db.
		Preload("User").
		Preload("Members").
		Preload("Tasks").
		Find(&leaders).Error; err != nil {
		return nil, err
	}
	return leaders, nil
}

// DeleteCascade clears member/task links and removes the leader record
func (r *GormLeaderRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("group_leader_id = ?", id).
			Update("group_leader_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("group_leader_id = ?", id).
			Update("group_leader_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.GroupLeader{}, id).Error
	})
}
