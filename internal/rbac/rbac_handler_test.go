package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"masar-finance/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (stubService) Enforce(role, organizationID, resource, action string) (bool, error) {
	return role == "owner" && organizationID == "org-1" && resource == "expense" && action == "read", nil
}

func (stubService) Permissions(role, organizationID string) ([]rbac.PermissionResponse, error) {
	return nil, nil
}

func TestHandler_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", "owner")
		c.Set("organization_id", "org-1")
	})
	rbac.RegisterRoutes(router.Group(""), rbac.NewHandler(stubService{}))

	t.Run("allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"resource":"expense","action":"read"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data rbac.EnforceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Data.Allowed)
	})

	t.Run("missing action", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"resource":"expense"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
