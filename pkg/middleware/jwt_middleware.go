package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"subscribely/pkg/utils"
)

const identityKey = "identity"

func JWTAuthMiddleware(auth utils.TokenAuthenticator) gin.HandlerFunc {

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		identity, err := auth.Authenticate(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		// Pass user information to the next handler
		c.Set(identityKey, identity)
		c.Set("user_id", identity.UserID.String())
		c.Next()
	}
}

// IdentityFrom returns the identity stored by JWTAuthMiddleware.
func IdentityFrom(c *gin.Context) (utils.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return utils.Identity{}, false
	}
	id, ok := v.(utils.Identity)
	return id, ok
}

type ActiveSubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, identity utils.Identity) (bool, error)
}

// ActiveSubscriberMiddleware lets through only users holding an active
// subscription. Lookup failures deny access.
func ActiveSubscriberMiddleware(checker ActiveSubscriptionChecker) gin.HandlerFunc {

	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		active, err := checker.HasActiveSubscription(c.Request.Context(), identity)
		if err != nil || !active {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: active subscription required")
			c.Abort()
			return
		}

		c.Next()
	}
}
