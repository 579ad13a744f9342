package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-pos/permissions"
	"resto-pos/utils"
)

// Principal reads the authenticated identity set by AuthMiddleware.
func Principal(c *gin.Context) (role string, isAdmin bool, ok bool) {
	roleVal, exists := c.Get("role")
	if !exists {
		return "", false, false
	}
	role, _ = roleVal.(string)
	if adminVal, exists := c.Get("is_admin"); exists {
		isAdmin, _ = adminVal.(bool)
	}
	return role, isAdmin, true
}

// RequireCapability rejects requests whose principal lacks the given
// capability. Category-scoped item checks stay in the order controller
// since they depend on the menu item being updated.
func RequireCapability(cap permissions.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, isAdmin, ok := Principal(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}

		if !permissions.Allowed(role, isAdmin, cap) {
			utils.RespondError(c, http.StatusForbidden, errors.New("you do not have permission to perform this action"))
			c.Abort()
			return
		}

		c.Next()
	}
}
