package middleware

import (
	"net/http"
	"strings"
	"time"

	"medbook/models"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	CtxUserID   = "userID"
	CtxRole     = "role"
	CtxToken    = "token"
	CtxTokenExp = "tokenExp"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Envelope{Status: "error", Message: message})
}

// JWTAuthMiddleware accepts a bearer token that verifies and has not been logged out.
func JWTAuthMiddleware(tokens *utils.TokenIssuer, denyList *utils.TokenDenyList) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		if denyList != nil {
			revoked, err := denyList.IsRevoked(c.Request.Context(), tokenString)
			if err != nil {
				// Fail open while the cache is down.
				utils.GetLogger().Warn("Token deny list unavailable", zap.Error(err))
			} else if revoked {
				unauthorized(c, "Token has been revoked")
				return
			}
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxToken, tokenString)
		c.Set(CtxTokenExp, time.Unix(claims.ExpiresAt, 0))
		c.Next()
	}
}

// RequireRoles lets through callers whose token carries one of roles.
// It must run after JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.Envelope{
			Status:  "error",
			Message: "You do not have permission to perform this action",
		})
	}
}

// ActorFrom returns the authenticated caller.
func ActorFrom(c *gin.Context) models.Actor {
	return models.Actor{UserID: c.GetString(CtxUserID), Role: c.GetString(CtxRole)}
}

// TokenFrom returns the raw bearer token and its expiry.
func TokenFrom(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return c.GetString(CtxToken), t
}
