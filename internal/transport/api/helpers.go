package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/transport/api/middlewares"
)

// getUserIDFromContext reads the current user id set by
// middlewares.AuthRequired. Routes behind the middleware always have it.
func getUserIDFromContext(c *gin.Context) int64 {
	userID, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	id, ok := userID.(int64)
	if !ok {
		return 0
	}
	return id
}

func getUserRoleFromContext(c *gin.Context) domain.RoleType {
	role, exist := c.Get(middlewares.CurrentUserRoleKey)
	if !exist {
		return domain.RoleCustomer
	}
	str, ok := role.(string)
	if !ok {
		return domain.RoleCustomer
	}
	return domain.RoleType(str)
}
