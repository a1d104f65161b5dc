package middleware

import (
	"context"
	"net/http"
	"strings"

	"skybook/internal/auth"
	"skybook/internal/logger"
	"skybook/internal/models"

	"github.com/gin-gonic/gin"
)

// Ключи gin.Context, которые выставляет BearerAuth
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
	ClaimsKey = "claims"
)

// Authenticator проверяет bearer-токен и возвращает активного пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, *auth.Claims, error)
}

type ctxKey string

const userIDCtxKey ctxKey = "user_id"

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(logger.ContextWithUserID(ctx, userID), userIDCtxKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey).(int64)
	return id, ok
}

// BearerAuth требует заголовок Authorization: Bearer <token>
func BearerAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="skybook"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, claims, err := authn.Authenticate(c.Request.Context(), raw)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="skybook", error="invalid_token"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, user.Role)
		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), user.ID))

		c.Next()
	}
}

// RequireAdmin пропускает только администраторов, ставится после BearerAuth
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}

// UserID возвращает id пользователя, выставленный BearerAuth
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Claims возвращает claims текущего токена
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
