package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tsubakihara/task-management-backend/internal/constants"
	"github.com/tsubakihara/task-management-backend/internal/database"
	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"github.com/tsubakihara/task-management-backend/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMailer records sends instead of dialing a relay.
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type notificationTestEnv struct {
	db      *gorm.DB
	mailer  *fakeMailer
	handler *NotificationHandler
}

func setupNotificationTestEnv(t *testing.T) notificationTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.GroupLeader{},
		&models.Task{},
		&models.Comment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	mail := &fakeMailer{}
	handler := NewNotificationHandler(services.NewNotificationService(userRepo, taskRepo, mail))

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return notificationTestEnv{db: db, mailer: mail, handler: handler}
}

func (env notificationTestEnv) createUser(t *testing.T, email string, notify bool) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, PasswordHash: "hashed", NotifyByEmail: notify}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env notificationTestEnv) createTask(t *testing.T, title string, ownerID uint64, deadline time.Time, completed bool) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Description: "d",
		Deadline:    deadline,
		Completed:   completed,
		UserID:      ownerID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env notificationTestEnv) notify(userID uint64) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/email-notification", nil)
	c.Set(constants.ContextKeyUserID, userID)
	env.handler.Notify(c)
	return w
}

func TestNotificationHandler_SendsOneMailPerDueTask(t *testing.T) {
	env := setupNotificationTestEnv(t)
	user := env.createUser(t, "user@example.com", true)

	soon := time.Now().Add(2 * time.Hour)
	later := time.Now().Add(5 * time.Hour)
	farOff := time.Now().Add(30 * 24 * time.Hour)
	env.createTask(t, "Due soon", user.ID, soon, false)
	env.createTask(t, "Also due", user.ID, later, false)
	env.createTask(t, "Already done", user.ID, soon, true)
	env.createTask(t, "Far off", user.ID, farOff, false)

	w := env.notify(user.ID)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, float64(2), response["notified_tasks"])

	require.Len(t, env.mailer.sent, 2)
	require.Equal(t, "user@example.com", env.mailer.sent[0].to)
	require.Contains(t, env.mailer.sent[0].subject, "Due soon")
}

func TestNotificationHandler_OverdueTasksStillCount(t *testing.T) {
	env := setupNotificationTestEnv(t)
	user := env.createUser(t, "user@example.com", true)
	env.createTask(t, "Overdue", user.ID, time.Now().Add(-48*time.Hour), false)

	w := env.notify(user.ID)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.mailer.sent, 1)
}

func TestNotificationHandler_OptedOut(t *testing.T) {
	env := setupNotificationTestEnv(t)
	user := env.createUser(t, "user@example.com", false)
	env.createTask(t, "Due soon", user.ID, time.Now().Add(2*time.Hour), false)

	w := env.notify(user.ID)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, env.mailer.sent)
}

func TestNotificationHandler_NothingDue(t *testing.T) {
	env := setupNotificationTestEnv(t)
	user := env.createUser(t, "user@example.com", true)
	env.createTask(t, "Far off", user.ID, time.Now().Add(30*24*time.Hour), false)

	w := env.notify(user.ID)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, float64(0), response["notified_tasks"])
	require.Empty(t, env.mailer.sent)
}

func TestNotificationHandler_MailFailureIsOpaque(t *testing.T) {
	env := setupNotificationTestEnv(t)
	user := env.createUser(t, "user@example.com", true)
	env.createTask(t, "Due soon", user.ID, time.Now().Add(2*time.Hour), false)
	env.mailer.err = errors.New("smtp: 535 authentication failed for relay.internal:587")

	w := env.notify(user.ID)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The SMTP error never reaches the client.
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "failed to send reminder emails", response["message"])
	require.NotContains(t, w.Body.String(), "relay.internal")
}
