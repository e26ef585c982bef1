package middleware

import (
	"fixit/models"
	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects actors whose role is not role. It must run after JWTAuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, actual := ActorFrom(c); actual != role {
			utils.RespondError(c, utils.NewUnauthorized("this action is only available to %ss", role))
			return
		}
		c.Next()
	}
}
