package services

import (
	"errors"
	"fmt"

	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentFieldsRequired = errors.New("text and task_id are required")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrNotCommentAuthor      = errors.New("only the comment author can modify it")
)

// CommentService handles comment business logic.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// Create attaches a new comment to an existing task.
func (s *CommentService) Create(authorID, taskID uint64, text string) (*models.Comment, error) {
	if text == "" || taskID == 0 {
		return nil, ErrCommentFieldsRequired
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	comment := &models.Comment{
		Text:   text,
		UserID: authorID,
		TaskID: taskID,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// Get returns a comment by ID.
func (s *CommentService) Get(commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// ListByTask returns all comments under a task.
func (s *CommentService) ListByTask(taskID uint64) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Update replaces the comment text. Authorship is enforced the same way as
// on delete, so both mutations share a single policy.
func (s *CommentService) Update(commentID, authorID uint64, text string) (*models.Comment, error) {
	if text == "" {
		return nil, ErrCommentFieldsRequired
	}

	comment, err := s.Get(commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != authorID {
		return nil, ErrNotCommentAuthor
	}

	comment.Text = text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment after verifying authorship.
func (s *CommentService) Delete(commentID, authorID uint64) error {
	comment, err := s.Get(commentID)
	if err != nil {
		return err
	}

	if comment.UserID != authorID {
		return ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}
