package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/services"
)

const (
	identityKey       = "identity"
	deviceTokenHeader = "X-Device-Token"
)

// Identify resolves the caller: a bearer JWT wins, otherwise an opaque device
// token provisions (or finds) a guest. Requests with neither are rejected
// with 401 before any handler runs.
func Identify(tokens *auth.TokenProvider, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				return
			}
			claims, err := tokens.Parse(parts[1])
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(identityKey, auth.UserIdentity(claims.UserID))
			c.Next()
			return
		}

		if deviceToken := c.GetHeader(deviceTokenHeader); deviceToken != "" {
			guest, err := users.ResolveGuest(c.Request.Context(), deviceToken)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid device token"})
				return
			}
			c.Set(identityKey, auth.GuestIdentity(guest.ID))
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}

// IdentityFromContext returns the identity stored by Identify. The zero
// identity means the route was not behind the middleware.
func IdentityFromContext(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(auth.Identity); ok {
			return ident
		}
	}
	return auth.Identity{}
}
