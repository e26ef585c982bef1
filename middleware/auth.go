package middleware

import (
	"context"
	"net/http"
	"strings"

	"fixit/models"
	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	ActorIDKey = "actorID"
	RoleKey    = "role"
)

// Authenticator resolves a bearer token to its actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, models.Role, error)
}

// BearerToken reads the token from the Authorization header, or from the
// token query parameter for clients that cannot set headers (websockets).
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Kind:    utils.KindUnauthorized,
				Message: "Missing or invalid Authorization header",
			})
			return
		}

		actorID, role, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			status := http.StatusUnauthorized
			if utils.IsKind(err, utils.KindRemoteUnavailable) {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, utils.ErrorResponse{
				Kind:    utils.KindOf(err),
				Message: "Invalid or expired session",
			})
			return
		}

		c.Set(ActorIDKey, actorID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor set by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (string, models.Role) {
	actorID := c.GetString(ActorIDKey)
	role, _ := c.Get(RoleKey)
	r, _ := role.(models.Role)
	return actorID, r
}
