package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skybook/internal/auth"
	"skybook/internal/config"
	"skybook/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	users map[string]*models.User
}

func (s stubAuthenticator) Authenticate(_ context.Context, raw string) (*models.User, *auth.Claims, error) {
	user, ok := s.users[raw]
	if !ok {
		return nil, nil, errors.New("invalid token")
	}
	return user, &auth.Claims{Role: user.Role}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authn := stubAuthenticator{users: map[string]*models.User{
		"user-token":  {ID: 7, Role: models.RoleUser},
		"admin-token": {ID: 1, Role: models.RoleAdmin},
	}}

	api := r.Group("/api", BearerAuth(authn))
	api.GET("/me", func(c *gin.Context) {
		id, _ := UserID(c)
		fromCtx, _ := UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id, "ctx": fromCtx})
	})
	api.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{name: "missing header", path: "/api/me", want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", path: "/api/me", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", path: "/api/me", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer user-token", path: "/api/me", want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer user-token", path: "/api/me", want: http.StatusOK},
		{name: "user on admin route", header: "Bearer user-token", path: "/api/admin", want: http.StatusForbidden},
		{name: "admin on admin route", header: "Bearer admin-token", path: "/api/admin", want: http.StatusNoContent},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBearerAuthPropagatesUserID(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"ctx":7}`, w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

// scriptResult отвечает на EvalSha фиксированным результатом
type scriptResult struct {
	redis.Scripter
	val interface{}
	err error
}

func (s scriptResult) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(s.val, s.err)
}

func rateLimitedRouter(rdb redis.Scripter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Prefix:         "test:rl",
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
	}
	r.Use(RateLimit(cfg, rdb))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		r := rateLimitedRouter(scriptResult{val: []interface{}{int64(1), int64(4), int64(0)}})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("exhausted", func(t *testing.T) {
		r := rateLimitedRouter(scriptResult{val: []interface{}{int64(0), int64(0), int64(1500)}})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
	})

	t.Run("redis down", func(t *testing.T) {
		r := rateLimitedRouter(scriptResult{err: errors.New("connection refused")})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestPastDate(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type payload struct {
		BirthDate string `binding:"required,past_date"`
		Class     string `binding:"required,service_class"`
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)

	assert.NoError(t, binding.Validator.ValidateStruct(payload{BirthDate: yesterday, Class: models.ClassEconomy}))
	assert.Error(t, binding.Validator.ValidateStruct(payload{BirthDate: tomorrow, Class: models.ClassEconomy}))
	assert.Error(t, binding.Validator.ValidateStruct(payload{BirthDate: "1990/01/01", Class: models.ClassEconomy}))
	assert.Error(t, binding.Validator.ValidateStruct(payload{BirthDate: yesterday, Class: "turista"}))
}
