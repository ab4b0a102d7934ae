package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medbook/models"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenCache fails every call, like Redis during an outage.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("redis down") }

func protectedRouter(tokens *utils.TokenIssuer, deny *utils.TokenDenyList, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuthMiddleware(tokens, deny)}
	if len(roles) > 0 {
		chain = append(chain, RequireRoles(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		actor := ActorFrom(c)
		_, exp := TokenFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "role": actor.Role, "exp": exp.Unix()})
	})
	r.GET("/private", chain...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestJWTAuthMiddleware(t *testing.T) {
	utils.Logger = zap.NewNop()
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	deny := utils.NewTokenDenyList(utils.NewMemoryCache())
	r := protectedRouter(tokens, deny)

	token, exp, err := tokens.GenerateToken("user-1", models.RolePatient)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		rr := get(r, token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"userId":"user-1"`)
		assert.Contains(t, rr.Body.String(), `"role":"patient"`)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := get(r, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"error"`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Token "+token)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, _, err := utils.NewTokenIssuer("other", time.Hour).GenerateToken("user-1", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, other).Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, deny.Revoke(context.Background(), token, exp))
		rr := get(r, token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "revoked")
	})
}

func TestJWTAuthFailsOpenWhenDenyListIsDown(t *testing.T) {
	utils.Logger = zap.NewNop()
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := protectedRouter(tokens, utils.NewTokenDenyList(brokenCache{}))

	token, _, err := tokens.GenerateToken("user-1", models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, token).Code)
}

func TestRequireRoles(t *testing.T) {
	utils.Logger = zap.NewNop()
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := protectedRouter(tokens, nil, models.RoleAdmin)

	patient, _, err := tokens.GenerateToken("user-1", models.RolePatient)
	require.NoError(t, err)
	admin, _, err := tokens.GenerateToken("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, patient).Code)
	assert.Equal(t, http.StatusOK, get(r, admin).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	utils.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, hit("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, hit("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, hit("198.51.100.2"), "limits are per client")
}

func TestLimiterPrune(t *testing.T) {
	store := newRateLimiterStore(10)
	now := time.Now()
	store.getLimiter("a", now.Add(-time.Hour))
	store.getLimiter("b", now)

	store.prune(now, 10*time.Minute)
	assert.NotContains(t, store.limiters, "a")
	assert.Contains(t, store.limiters, "b")
}

func TestClientIPSkipsGarbageEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		xff, real, remote, want string
	}{
		{"unknown, 198.51.100.4", "", "10.0.0.9:5555", "198.51.100.4"},
		{"", "198.51.100.5", "10.0.0.9:5555", "198.51.100.5"},
		{"junk", "junk", "10.0.0.9:5555", "10.0.0.9"},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = tc.remote
		if tc.xff != "" {
			c.Request.Header.Set("X-Forwarded-For", tc.xff)
		}
		if tc.real != "" {
			c.Request.Header.Set("X-Real-IP", tc.real)
		}
		assert.Equal(t, tc.want, clientIP(c))
	}
}
