package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"masar-finance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":         c.GetString("user_id"),
			"organization_id": c.GetString("organization_id"),
			"role":            c.GetString("role"),
		})
	})

	call := func(token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		w := call(signToken(t, jwt.MapClaims{
			"user_id":         "u-1",
			"organization_id": "o-1",
			"role":            "accountant",
			"exp":             time.Now().Add(time.Hour).Unix(),
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u-1","organization_id":"o-1","role":"accountant"}`, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		w := call(signToken(t, jwt.MapClaims{
			"user_id":         "u-1",
			"organization_id": "o-1",
			"exp":             time.Now().Add(-time.Hour).Unix(),
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("token without organization", func(t *testing.T) {
		w := call(signToken(t, jwt.MapClaims{"user_id": "u-1"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

type stubRBAC struct {
	allowed bool
	got     []string
}

func (s *stubRBAC) Enforce(role, organizationID, resource, action string) (bool, error) {
	s.got = []string{role, organizationID, resource, action}
	return s.allowed, nil
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, allowed := range []bool{true, false} {
		rbac := &stubRBAC{allowed: allowed}
		r := gin.New()
		r.POST("/transfers", func(c *gin.Context) {
			c.Set("organization_id", "o-1")
			c.Set("role", "viewer")
		}, middleware.RBACAuthorize(rbac, "transfer", "create"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transfers", nil))

		if allowed {
			assert.Equal(t, http.StatusNoContent, w.Code)
		} else {
			assert.Equal(t, http.StatusForbidden, w.Code)
		}
		assert.Equal(t, []string{"viewer", "o-1", "transfer", "create"}, rbac.got)
	}
}
