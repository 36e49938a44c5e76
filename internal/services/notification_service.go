package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tsubakihara/task-management-backend/internal/constants"
	"github.com/tsubakihara/task-management-backend/internal/mailer"
	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
)

var (
	ErrNotificationsDisabled = errors.New("email notifications are not enabled for this user")
	ErrMailDelivery          = errors.New("failed to send reminder emails")
)

// NotificationService scans for near-term deadlines and mails reminders.
type NotificationService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	mail     mailer.Mailer
	now      func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, mail mailer.Mailer) *NotificationService {
	return &NotificationService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		mail:     mail,
		now:      time.Now,
	}
}

// NotifyDeadlines mails the user one reminder per incomplete task due within
// the reminder window. The send loop is serial; the first transport failure
// aborts the remaining sends.
func (s *NotificationService) NotifyDeadlines(userID uint64) (int, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}

	if !user.NotifyByEmail {
		return 0, ErrNotificationsDisabled
	}

	cutoff := s.now().Add(constants.DeadlineReminderWindow * time.Hour)
	tasks, err := s.taskRepo.ListDueBefore(userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan deadlines: %w", err)
	}

	for _, task := range tasks {
		if err := s.mail.Send(user.Email, reminderSubject(&task), reminderBody(user, &task)); err != nil {
			// Wrap so handlers surface an opaque 500 instead of the raw error.
			return 0, fmt.Errorf("%w: %v", ErrMailDelivery, err)
		}
	}

	return len(tasks), nil
}

func reminderSubject(task *models.Task) string {
	return fmt.Sprintf("Reminder: %q is due soon", task.Title)
}

func reminderBody(user *models.User, task *models.Task) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour task %q is due on %s and is not completed yet.\n\nProgress: %d%%\nPriority: %s\n",
		user.Username,
		task.Title,
		task.Deadline.Format(constants.DeadlineLayout),
		task.Progress,
		task.Priority,
	)
}
