package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"masar-finance/internal/employee"
	employeeerrors "masar-finance/internal/employee/errors"
	"masar-finance/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeService struct {
	GetAllFn  func(ctx context.Context, organizationID string) ([]employee.EmployeeResponse, error)
	GetByIDFn func(ctx context.Context, organizationID, id string) (employee.EmployeeResponse, error)
}

func (f *fakeEmployeeService) SyncCompensation(ctx context.Context, event events.EmployeeCompensationEvent) error {
	return nil
}
func (f *fakeEmployeeService) GetAll(ctx context.Context, organizationID string) ([]employee.EmployeeResponse, error) {
	return f.GetAllFn(ctx, organizationID)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, organizationID, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, organizationID, id)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func withOrganization(organizationID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("organization_id", organizationID)
		c.Next()
	}
}

func TestEmployeeHandler_GetAll_SearchSortPaginate(t *testing.T) {
	orgID := uuid.NewString()
	svc := &fakeEmployeeService{
		GetAllFn: func(ctx context.Context, organizationID string) ([]employee.EmployeeResponse, error) {
			assert.Equal(t, orgID, organizationID)
			return []employee.EmployeeResponse{
				{ID: "1", FullName: "Omar Saleh", EmployeeNo: "E-003", IsActive: true, NetSalary: decimal.NewFromInt(6250)},
				{ID: "2", FullName: "Ahmed Ali", EmployeeNo: "E-001", IsActive: true, NetSalary: decimal.NewFromInt(9000)},
				{ID: "3", FullName: "Sara Nasser", EmployeeNo: "E-002", IsActive: false, NetSalary: decimal.NewFromInt(4000)},
			}, nil
		},
	}

	r := setupRouter()
	r.GET("/employees", withOrganization(orgID), employee.NewHandler(svc).GetAll)

	t.Run("sort by employee number", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees?sort_by=employee_no&page_size=2", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []employee.EmployeeResponse `json:"data"`
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, "E-001", body.Data[0].EmployeeNo)
		assert.Equal(t, "E-002", body.Data[1].EmployeeNo)
		assert.Equal(t, int64(3), body.Meta.Total)
	})

	t.Run("search and active filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees?q=sa&active=true", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []employee.EmployeeResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Omar Saleh", body.Data[0].FullName)
	})
}

func TestEmployeeHandler_GetByID_NotFound(t *testing.T) {
	svc := &fakeEmployeeService{
		GetByIDFn: func(ctx context.Context, organizationID, id string) (employee.EmployeeResponse, error) {
			return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		},
	}

	r := setupRouter()
	r.GET("/employees/:id", withOrganization(uuid.NewString()), employee.NewHandler(svc).GetByID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
