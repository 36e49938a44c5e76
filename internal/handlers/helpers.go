package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/tsubakihara/task-management-backend/internal/errors"
)

// parseUintParam reads a numeric path parameter, answering 400 itself on
// malformed input.
func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}

// parseUintQuery reads a required numeric query parameter, answering 400
// itself when missing or malformed.
func parseUintQuery(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
