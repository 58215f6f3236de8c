package middleware

import (
	"net/http"

	"slotbook/models"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only for the listed roles.
// It must run after JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		if !allowed[actor.Role] {
			utils.JSONError(c, http.StatusForbidden, "Forbidden", "role "+string(actor.Role)+" may not access this resource")
			return
		}
		c.Next()
	}
}
