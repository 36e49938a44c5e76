package repository

import (
	"errors"
	"fmt"

	"github.com/tsubakihara/task-management-backend/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// AssignLeader links every listed user to the leader atomically
func (r *GormUserRepository) AssignLeader(leaderID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(userIDs) {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.User{}).
			Where("id IN ?", userIDs).
			Update("group_leader_id", leaderID).Error
	})
}

// DeleteCascade removes the user and everything hanging off them
func (r *GormUserRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).Where("user_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return fmt.Errorf("failed to delete task comments: %w", err)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete authored comments: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}

		// If the user was promoted, demote first so member links don't dangle.
		var leader models.GroupLeader
		if err := tx.Where("user_id = ?", id).First(&leader).Error; err == nil {
			if err := tx.Model(&models.User{}).
				Where("group_leader_id = ?", leader.ID).
				Update("group_leader_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Task{}).
				Where("group_leader_id = ?", leader.ID).
				Update("group_leader_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.GroupLeader{}, leader.ID).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
