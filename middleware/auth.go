// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"slotbook/models"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// JWTAuthMiddleware verifies the bearer token and stores its subject and role.
// With allowQuery, a "token" query parameter is accepted as well (browser sockets cannot set headers).
func JWTAuthMiddleware(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" && allowQuery {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
			return
		}

		claims, err := utils.ParseClaims(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		}
		role, ok := models.ParseRole(claims.Role)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", "unknown role "+claims.Role)
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// ActorFromContext returns the caller stored by JWTAuthMiddleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	userID := c.GetString(ctxUserID)
	role, ok := c.Get(ctxRole)
	if userID == "" || !ok {
		return models.Actor{}, false
	}
	r, ok := role.(models.Role)
	if !ok {
		return models.Actor{}, false
	}
	return models.Actor{UserID: userID, Role: r}, true
}
