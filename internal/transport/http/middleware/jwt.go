package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classwork-chatbot/internal/pkg/jwtutil"
	"classwork-chatbot/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextUserTypeKey = "user_type"
	ContextClaimsKey   = "claims"

	msgLoginRequired = "Must be logged in"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthJWT accepts "Authorization: Bearer <token>" signed with secret.
// Tokens whose id is on the blocklist are rejected.
func AuthJWT(secret string, blocklist RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if authHeader == "" || !strings.HasPrefix(authHeader, prefix) {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, msgLoginRequired)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, msgLoginRequired)
			return
		}

		if blocklist != nil && claims.ID != "" {
			revoked, err := blocklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				response.Abort(c, http.StatusServiceUnavailable, response.CodeUnavailable, "token check unavailable")
				return
			}
			if revoked {
				response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, msgLoginRequired)
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextUserTypeKey, claims.UserType)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthJWT.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func Claims(c *gin.Context) (*jwtutil.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwtutil.Claims)
	return claims, ok
}
