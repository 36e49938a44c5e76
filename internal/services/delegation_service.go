package services

import (
	"errors"
	"fmt"

	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLeaderNotFound = errors.New("group leader not found")
	ErrAlreadyLeader  = errors.New("user is already a group leader")
	ErrNotGroupMember = errors.New("requester does not belong to this group leader")
	ErrNoUserIDs      = errors.New("at least one user ID is required")
	ErrNoTaskIDs      = errors.New("at least one task ID is required")
)

// DelegationService handles the group-leader hierarchy: promotion, member
// assignment, and access to delegated tasks.
type DelegationService struct {
	leaderRepo repository.LeaderRepository
	userRepo   repository.UserRepository
	taskRepo   repository.TaskRepository
	tasks      *TaskService
}

// NewDelegationService creates a new DelegationService.
func NewDelegationService(
	leaderRepo repository.LeaderRepository,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	tasks *TaskService,
) *DelegationService {
	return &DelegationService{
		leaderRepo: leaderRepo,
		userRepo:   userRepo,
		taskRepo:   taskRepo,
		tasks:      tasks,
	}
}

// Promote turns a user into a group leader. Reporting to a leader and being
// one are independent, so users who already have a leader stay promotable.
func (s *DelegationService) Promote(userID uint64) (*models.GroupLeader, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.leaderRepo.FindByUserID(userID); err == nil {
		return nil, ErrAlreadyLeader
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check leader record: %w", err)
	}

	leader := &models.GroupLeader{UserID: userID}
	if err := s.leaderRepo.Create(leader); err != nil {
		return nil, fmt.Errorf("failed to create group leader: %w", err)
	}

	return leader, nil
}

// Demote removes a group leader and unlinks every member and delegated task.
func (s *DelegationService) Demote(leaderID uint64) error {
	if _, err := s.findLeader(leaderID); err != nil {
		return err
	}

	if err := s.leaderRepo.DeleteCascade(leaderID); err != nil {
		return fmt.Errorf("failed to demote group leader: %w", err)
	}

	return nil
}

// AssignMembers links users to a leader. The write is atomic: an unknown
// user id leaves every membership untouched.
func (s *DelegationService) AssignMembers(leaderID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return ErrNoUserIDs
	}

	if _, err := s.findLeader(leaderID); err != nil {
		return err
	}

	if err := s.userRepo.AssignLeader(leaderID, userIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to assign members: %w", err)
	}

	return nil
}

// AssignTasks reassigns tasks to a member under the leader's chain.
func (s *DelegationService) AssignTasks(leaderID, targetUserID uint64, taskIDs []uint64, requesterID uint64) error {
	if len(taskIDs) == 0 {
		return ErrNoTaskIDs
	}

	if err := s.authorizeMemberAccess(leaderID, requesterID, targetUserID); err != nil {
		return err
	}

	if err := s.taskRepo.Reassign(taskIDs, targetUserID, leaderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to reassign tasks: %w", err)
	}

	return nil
}

// ListMemberTasks returns all tasks owned by a member of the group.
func (s *DelegationService) ListMemberTasks(leaderID, targetUserID, requesterID uint64) ([]models.Task, error) {
	if err := s.authorizeMemberAccess(leaderID, requesterID, targetUserID); err != nil {
		return nil, err
	}

	tasks, _, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID: &targetUserID,
		Preload: []string{"User", "Comments"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list member tasks: %w", err)
	}

	return tasks, nil
}

// GetMemberTask returns a single delegated task owned by a group member.
func (s *DelegationService) GetMemberTask(leaderID, targetUserID, taskID, requesterID uint64) (*models.Task, error) {
	if err := s.authorizeMemberAccess(leaderID, requesterID, targetUserID); err != nil {
		return nil, err
	}

	return s.tasks.GetOwned(taskID, targetUserID)
}

// UpdateMemberTask edits a delegated task with the same membership policy
// the read paths use.
func (s *DelegationService) UpdateMemberTask(leaderID, targetUserID, taskID, requesterID uint64, input UpdateTaskInput) (*models.Task, error) {
	if err := s.authorizeMemberAccess(leaderID, requesterID, targetUserID); err != nil {
		return nil, err
	}

	return s.tasks.Update(taskID, targetUserID, input)
}

// DeleteMemberTask removes a delegated task with the same membership policy
// the read paths use.
func (s *DelegationService) DeleteMemberTask(leaderID, targetUserID, taskID, requesterID uint64) error {
	if err := s.authorizeMemberAccess(leaderID, requesterID, targetUserID); err != nil {
		return err
	}

	return s.tasks.Delete(taskID, targetUserID)
}

// ListLeaders returns all group leaders with members and delegated tasks.
func (s *DelegationService) ListLeaders() ([]models.GroupLeader, error) {
	leaders, err := s.leaderRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list group leaders: %w", err)
	}
	return leaders, nil
}

// GetLeader returns a group leader with members and delegated tasks.
func (s *DelegationService) GetLeader(leaderID uint64) (*models.GroupLeader, error) {
	leader, err := s.leaderRepo.FindByID(leaderID, "User", "Members", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaderNotFound
		}
		return nil, fmt.Errorf("failed to find group leader: %w", err)
	}
	return leader, nil
}

// authorizeMemberAccess is the single membership policy guarding every
// delegated-task operation, reads and mutations alike. Checks run in a fixed
// order: leader exists, requester is linked, target user exists, target user
// is linked.
func (s *DelegationService) authorizeMemberAccess(leaderID, requesterID, targetUserID uint64) error {
	leader, err := s.findLeader(leaderID)
	if err != nil {
		return err
	}

	requester, err := s.userRepo.FindByID(requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to find requester: %w", err)
	}
	if !s.linkedToLeader(leader, requester) {
		return ErrNotGroupMember
	}

	target, err := s.userRepo.FindByID(targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find target user: %w", err)
	}
	if !s.linkedToLeader(leader, target) {
		return ErrNotGroupMember
	}

	return nil
}

// linkedToLeader reports whether a user belongs to the leader's group,
// either as an assigned member or as the promoted leader themself.
func (s *DelegationService) linkedToLeader(leader *models.GroupLeader, user *models.User) bool {
	if leader.UserID == user.ID {
		return true
	}
	return user.GroupLeaderID != nil && *user.GroupLeaderID == leader.ID
}

func (s *DelegationService) findLeader(leaderID uint64) (*models.GroupLeader, error) {
	leader, err := s.leaderRepo.FindByID(leaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaderNotFound
		}
		return nil, fmt.Errorf("failed to find group leader: %w", err)
	}
	return leader, nil
}
