package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tsubakihara/task-management-backend/internal/constants"
	"github.com/tsubakihara/task-management-backend/internal/database"
	"github.com/tsubakihara/task-management-backend/internal/dto"
	"github.com/tsubakihara/task-management-backend/internal/models"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"github.com/tsubakihara/task-management-backend/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type delegationTestEnv struct {
	db      *gorm.DB
	handler *DelegationHandler
}

func setupDelegationTestEnv(t *testing.T) delegationTestEnv {
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
	leaderRepo := repository.NewLeaderRepository(db)
	taskService := services.NewTaskService(taskRepo)
	handler := NewDelegationHandler(services.NewDelegationService(leaderRepo, userRepo, taskRepo, taskService))

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return delegationTestEnv{db: db, handler: handler}
}

func (env delegationTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, PasswordHash: "hashed"}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env delegationTestEnv) promote(t *testing.T, user *models.User) *models.GroupLeader {
	t.Helper()
	leader := &models.GroupLeader{UserID: user.ID}
	require.NoError(t, env.db.Create(leader).Error)
	return leader
}

func (env delegationTestEnv) linkMember(t *testing.T, leader *models.GroupLeader, user *models.User) {
	t.Helper()
	require.NoError(t, env.db.Model(user).Update("group_leader_id", leader.ID).Error)
}

func (env delegationTestEnv) createTask(t *testing.T, title string, ownerID uint64) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Description: "d",
		Deadline:    time.Now().Add(48 * time.Hour),
		UserID:      ownerID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env delegationTestEnv) authContext(t *testing.T, method, url string, payload interface{}, userID uint64, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	c.Params = params
	return c, w
}

func uintParam(key string, value uint64) gin.Param {
	return gin.Param{Key: key, Value: strconv.FormatUint(value, 10)}
}

func TestDelegationHandler_Promote(t *testing.T) {
	env := setupDelegationTestEnv(t)
	user := env.createUser(t, "leader@example.com")

	c, w := env.authContext(t, "PATCH", "/users/1/promote", nil, user.ID, uintParam("id", user.ID))

	env.handler.Promote(c)

	require.Equal(t, http.StatusOK, w.Code)

	var leader models.GroupLeader
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&leader).Error)
}

func TestDelegationHandler_Promote_UnknownUser(t *testing.T) {
	env := setupDelegationTestEnv(t)
	user := env.createUser(t, "requester@example.com")

	c, w := env.authContext(t, "PATCH", "/users/999/promote", nil, user.ID, uintParam("id", 999))

	env.handler.Promote(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelegationHandler_Promote_Twice(t *testing.T) {
	env := setupDelegationTestEnv(t)
	user := env.createUser(t, "leader@example.com")
	env.promote(t, user)

	c, w := env.authContext(t, "PATCH", "/users/1/promote", nil, user.ID, uintParam("id", user.ID))

	env.handler.Promote(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// A user who reports to one leader can still be promoted themself.
func TestDelegationHandler_Promote_MemberOfAnotherGroup(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	bossLeader := env.promote(t, boss)
	user := env.createUser(t, "middle@example.com")
	env.linkMember(t, bossLeader, user)

	c, w := env.authContext(t, "PATCH", "/users/2/promote", nil, user.ID, uintParam("id", user.ID))

	env.handler.Promote(c)

	require.Equal(t, http.StatusOK, w.Code)

	// The reporting link survives the promotion.
	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.GroupLeaderID)
	require.Equal(t, bossLeader.ID, *reloaded.GroupLeaderID)
}

func TestDelegationHandler_AssignMembers(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	c, w := env.authContext(t, "POST", "/group_leaders/1/assign_users", map[string]interface{}{
		"user_ids": []uint64{alice.ID, bob.ID},
	}, boss.ID, uintParam("id", leader.ID))

	env.handler.AssignMembers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.User{}).Where("group_leader_id = ?", leader.ID).Count(&count)
	require.Equal(t, int64(2), count)
}

func TestDelegationHandler_AssignMembers_UnknownUserIsAtomic(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")

	c, w := env.authContext(t, "POST", "/group_leaders/1/assign_users", map[string]interface{}{
		"user_ids": []uint64{alice.ID, 999},
	}, boss.ID, uintParam("id", leader.ID))

	env.handler.AssignMembers(c)

	require.Equal(t, http.StatusNotFound, w.Code)

	// No membership was written.
	var count int64
	env.db.Model(&models.User{}).Where("group_leader_id = ?", leader.ID).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestDelegationHandler_AssignMembers_EmptyList(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)

	c, w := env.authContext(t, "POST", "/group_leaders/1/assign_users", map[string]interface{}{
		"user_ids": []uint64{},
	}, boss.ID, uintParam("id", leader.ID))

	env.handler.AssignMembers(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelegationHandler_AssignTasks(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Delegated", boss.ID)

	c, w := env.authContext(t, "POST", "/group_leaders/1/users/2/assign_tasks", map[string]interface{}{
		"task_ids": []uint64{task.ID},
	}, boss.ID, uintParam("id", leader.ID), uintParam("uid", alice.ID))

	env.handler.AssignTasks(c)

	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Task
	require.NoError(t, env.db.First(&reloaded, task.ID).Error)
	require.Equal(t, alice.ID, reloaded.UserID)
	require.NotNil(t, reloaded.GroupLeaderID)
	require.Equal(t, leader.ID, *reloaded.GroupLeaderID)
}

func TestDelegationHandler_AssignTasks_NonMemberRequester(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	outsider := env.createUser(t, "outsider@example.com")
	task := env.createTask(t, "Delegated", boss.ID)

	c, w := env.authContext(t, "POST", "/group_leaders/1/users/2/assign_tasks", map[string]interface{}{
		"task_ids": []uint64{task.ID},
	}, outsider.ID, uintParam("id", leader.ID), uintParam("uid", alice.ID))

	env.handler.AssignTasks(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDelegationHandler_ListMemberTasks(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/2/tasks", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", alice.ID))

	env.handler.ListMemberTasks(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response["tasks"], 1)
	require.Equal(t, "Alice task", response["tasks"][0].Title)
}

// A member can read a peer's delegated tasks; the policy only bars outsiders.
func TestDelegationHandler_ListMemberTasks_PeerMember(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	env.linkMember(t, leader, alice)
	env.linkMember(t, leader, bob)
	env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/2/tasks", nil, bob.ID,
		uintParam("id", leader.ID), uintParam("uid", alice.ID))

	env.handler.ListMemberTasks(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDelegationHandler_ListMemberTasks_UnknownLeader(t *testing.T) {
	env := setupDelegationTestEnv(t)
	user := env.createUser(t, "user@example.com")

	c, w := env.authContext(t, "GET", "/group_leaders/999/users/1/tasks", nil, user.ID,
		uintParam("id", 999), uintParam("uid", user.ID))

	env.handler.ListMemberTasks(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelegationHandler_ListMemberTasks_TargetNotLinked(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	stranger := env.createUser(t, "stranger@example.com")

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/2/tasks", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", stranger.ID))

	env.handler.ListMemberTasks(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDelegationHandler_ListMemberTasks_UnknownTarget(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/999/tasks", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", 999))

	env.handler.ListMemberTasks(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelegationHandler_GetMemberTask(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/2/tasks/1", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", alice.ID), uintParam("tid", task.ID))

	env.handler.GetMemberTask(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, task.ID, response.ID)
}

// The delegated read is still scoped to the target member's ownership.
func TestDelegationHandler_GetMemberTask_NotOwnedByTarget(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Boss task", boss.ID)

	c, w := env.authContext(t, "GET", "/group_leaders/1/users/2/tasks/1", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", alice.ID), uintParam("tid", task.ID))

	env.handler.GetMemberTask(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelegationHandler_UpdateMemberTask_NonMemberRequester(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	outsider := env.createUser(t, "outsider@example.com")
	task := env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "PATCH", "/group_leaders/1/users/2/tasks/1", map[string]interface{}{
		"title": "Hijacked",
	}, outsider.ID, uintParam("id", leader.ID), uintParam("uid", alice.ID), uintParam("tid", task.ID))

	env.handler.UpdateMemberTask(c)

	require.Equal(t, http.StatusForbidden, w.Code)

	var reloaded models.Task
	require.NoError(t, env.db.First(&reloaded, task.ID).Error)
	require.Equal(t, "Alice task", reloaded.Title)
}

func TestDelegationHandler_UpdateMemberTask(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "PATCH", "/group_leaders/1/users/2/tasks/1", map[string]interface{}{
		"progress":  60,
		"completed": true,
	}, boss.ID, uintParam("id", leader.ID), uintParam("uid", alice.ID), uintParam("tid", task.ID))

	env.handler.UpdateMemberTask(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 60, response.Progress)
	require.True(t, response.Completed)
}

func TestDelegationHandler_DeleteMemberTask(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Alice task", alice.ID)

	c, w := env.authContext(t, "DELETE", "/group_leaders/1/users/2/tasks/1", nil, boss.ID,
		uintParam("id", leader.ID), uintParam("uid", alice.ID), uintParam("tid", task.ID))

	env.handler.DeleteMemberTask(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestDelegationHandler_Demote_ClearsLinks(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)
	task := env.createTask(t, "Delegated", alice.ID)
	require.NoError(t, env.db.Model(task).Update("group_leader_id", leader.ID).Error)

	c, w := env.authContext(t, "DELETE", "/group_leaders/1", nil, boss.ID, uintParam("id", leader.ID))

	env.handler.Demote(c)

	require.Equal(t, http.StatusOK, w.Code)

	var leaderCount int64
	env.db.Model(&models.GroupLeader{}).Count(&leaderCount)
	require.Equal(t, int64(0), leaderCount)

	var reloadedUser models.User
	require.NoError(t, env.db.First(&reloadedUser, alice.ID).Error)
	require.Nil(t, reloadedUser.GroupLeaderID)

	var reloadedTask models.Task
	require.NoError(t, env.db.First(&reloadedTask, task.ID).Error)
	require.Nil(t, reloadedTask.GroupLeaderID)
}

func TestDelegationHandler_GetLeader(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	leader := env.promote(t, boss)
	alice := env.createUser(t, "alice@example.com")
	env.linkMember(t, leader, alice)

	c, w := env.authContext(t, "GET", "/group_leaders/1", nil, boss.ID, uintParam("id", leader.ID))

	env.handler.GetLeader(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.GroupLeaderDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, leader.ID, response.ID)
	require.Equal(t, boss.ID, response.UserID)
	require.Len(t, response.Members, 1)
}

func TestDelegationHandler_ListLeaders(t *testing.T) {
	env := setupDelegationTestEnv(t)
	boss := env.createUser(t, "boss@example.com")
	env.promote(t, boss)
	other := env.createUser(t, "other@example.com")
	env.promote(t, other)

	c, w := env.authContext(t, "GET", "/group_leaders", nil, boss.ID)

	env.handler.ListLeaders(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]dto.GroupLeaderDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response["group_leaders"], 2)
}
