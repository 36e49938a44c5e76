package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tsubakihara/task-management-backend/internal/dto"
	apierrors "github.com/tsubakihara/task-management-backend/internal/errors"
	"github.com/tsubakihara/task-management-backend/internal/middleware"
	"github.com/tsubakihara/task-management-backend/internal/services"
)

// DelegationHandler coordinates the group-leader hierarchy endpoints.
type DelegationHandler struct {
	delegationService *services.DelegationService
}

// NewDelegationHandler creates a new DelegationHandler.
func NewDelegationHandler(delegationService *services.DelegationService) *DelegationHandler {
	return &DelegationHandler{
		delegationService: delegationService,
	}
}

// Promote handles PATCH /users/:id/promote.
func (h *DelegationHandler) Promote(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	leader, err := h.delegationService.Promote(userID)
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "User promoted to group leader",
		"group_leader": dto.ToGroupLeaderDTO(*leader),
	})
}

// Demote handles DELETE /group_leaders/:id.
func (h *DelegationHandler) Demote(c *gin.Context) {
	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.delegationService.Demote(leaderID); err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group leader removed successfully",
	})
}

// ListLeaders handles GET /group_leaders.
func (h *DelegationHandler) ListLeaders(c *gin.Context) {
	leaders, err := h.delegationService.ListLeaders()
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group_leaders": dto.ToGroupLeaderDTOs(leaders),
	})
}

// GetLeader handles GET /group_leaders/:id.
func (h *DelegationHandler) GetLeader(c *gin.Context) {
	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	leader, err := h.delegationService.GetLeader(leaderID)
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupLeaderDTO(*leader))
}

// AssignMembers handles POST /group_leaders/:id/assign_users.
func (h *DelegationHandler) AssignMembers(c *gin.Context) {
	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	type AssignMembersRequest struct {
		UserIDs []uint64 `json:"user_ids"`
	}

	var req AssignMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.delegationService.AssignMembers(leaderID, req.UserIDs); err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users assigned to group leader",
	})
}

// AssignTasks handles POST /group_leaders/:id/users/:uid/assign_tasks.
func (h *DelegationHandler) AssignTasks(c *gin.Context) {
	requesterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUintParam(c, "uid")
	if !ok {
		return
	}

	type AssignTasksRequest struct {
		TaskIDs []uint64 `json:"task_ids"`
	}

	var req AssignTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.delegationService.AssignTasks(leaderID, targetUserID, req.TaskIDs, requesterID); err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks assigned successfully",
	})
}

// ListMemberTasks handles GET /group_leaders/:id/users/:uid/tasks.
func (h *DelegationHandler) ListMemberTasks(c *gin.Context) {
	requesterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUintParam(c, "uid")
	if !ok {
		return
	}

	tasks, err := h.delegationService.ListMemberTasks(leaderID, targetUserID, requesterID)
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks, true),
	})
}

// GetMemberTask handles GET /group_leaders/:id/users/:uid/tasks/:tid.
func (h *DelegationHandler) GetMemberTask(c *gin.Context) {
	requesterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUintParam(c, "uid")
	if !ok {
		return
	}
	taskID, ok := parseUintParam(c, "tid")
	if !ok {
		return
	}

	task, err := h.delegationService.GetMemberTask(leaderID, targetUserID, taskID, requesterID)
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, true))
}

// UpdateMemberTask handles PATCH /group_leaders/:id/users/:uid/tasks/:tid.
func (h *DelegationHandler) UpdateMemberTask(c *gin.Context) {
	requesterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUintParam(c, "uid")
	if !ok {
		return
	}
	taskID, ok := parseUintParam(c, "tid")
	if !ok {
		return
	}

	input, ok := bindTaskUpdate(c)
	if !ok {
		return
	}

	task, err := h.delegationService.UpdateMemberTask(leaderID, targetUserID, taskID, requesterID, input)
	if err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, true))
}

// DeleteMemberTask handles DELETE /group_leaders/:id/users/:uid/tasks/:tid.
func (h *DelegationHandler) DeleteMemberTask(c *gin.Context) {
	requesterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	leaderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := parseUintParam(c, "uid")
	if !ok {
		return
	}
	taskID, ok := parseUintParam(c, "tid")
	if !ok {
		return
	}

	if err := h.delegationService.DeleteMemberTask(leaderID, targetUserID, taskID, requesterID); err != nil {
		respondDelegationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondDelegationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoUserIDs), errors.Is(err, services.ErrNoTaskIDs):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyLeader):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrLeaderNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidDeadline):
		apierrors.BadFormat(c, err.Error())
	case errors.Is(err, services.ErrTaskFieldsRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
