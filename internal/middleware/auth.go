package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/auth"
)

// ContextUserIDKey is the gin context key under which the authenticated
// user's id is stored.
const ContextUserIDKey = "user_id"

// Auth verifies the Bearer token and stores the user id in the context.
func Auth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header format must be Bearer {token}"})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Next()
	}
}

// UserID returns the authenticated user's id from the context, or "" for
// unauthenticated requests.
func UserID(ctx *gin.Context) string {
	return ctx.GetString(ContextUserIDKey)
}
