package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"masar-finance/internal/expense"
	expenseerrors "masar-finance/internal/expense/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type fakeExpenseService struct {
	createFn func(ctx context.Context, organizationID, actorID string, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error)
	payFn    func(ctx context.Context, organizationID, actorID, id string, req expense.PayExpenseRequest) (expense.ExpenseResponse, error)
	cancelFn func(ctx context.Context, organizationID, actorID, id string) (expense.ExpenseResponse, error)
	deleteFn func(ctx context.Context, organizationID, actorID, id string) error
	getAllFn func(ctx context.Context, organizationID string, filter expense.ExpenseFilter) ([]expense.ExpenseResponse, error)
}

func (f *fakeExpenseService) Create(ctx context.Context, organizationID, actorID string, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error) {
	return f.createFn(ctx, organizationID, actorID, req)
}

func (f *fakeExpenseService) Pay(ctx context.Context, organizationID, actorID, id string, req expense.PayExpenseRequest) (expense.ExpenseResponse, error) {
	return f.payFn(ctx, organizationID, actorID, id, req)
}

func (f *fakeExpenseService) Cancel(ctx context.Context, organizationID, actorID, id string) (expense.ExpenseResponse, error) {
	return f.cancelFn(ctx, organizationID, actorID, id)
}

func (f *fakeExpenseService) Delete(ctx context.Context, organizationID, actorID, id string) error {
	return f.deleteFn(ctx, organizationID, actorID, id)
}

func (f *fakeExpenseService) GetByID(ctx context.Context, organizationID, id string) (expense.ExpenseResponse, error) {
	return expense.ExpenseResponse{}, nil
}

func (f *fakeExpenseService) GetAll(ctx context.Context, organizationID string, filter expense.ExpenseFilter) ([]expense.ExpenseResponse, error) {
	return f.getAllFn(ctx, organizationID, filter)
}

func newExpenseContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestExpenseHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	orgID, actorID, accountID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	svc := &fakeExpenseService{
		createFn: func(ctx context.Context, oid, aid string, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error) {
			assert.Equal(t, orgID, oid)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, "COMPLETED", req.Status)
			require.NotNil(t, req.SourceAccountID)
			assert.Equal(t, accountID, *req.SourceAccountID)
			assert.Equal(t, "1000", req.Amount.String())
			return expense.ExpenseResponse{ID: uuid.NewString(), Status: "COMPLETED"}, nil
		},
	}

	c, w := newExpenseContext(http.MethodPost, "/expenses",
		`{"category":"MATERIALS","amount":"1000.00","status":"COMPLETED","source_account_id":"`+accountID+`"}`)
	c.Set("organization_id", orgID)
	c.Set("user_id", actorID)

	expense.NewHandler(svc).Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeEnvelope(t, w).Ok)
}

func TestExpenseHandler_Create_BindingErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		body string
	}{
		{"missing status", `{"category":"MATERIALS","amount":"10"}`},
		{"unknown status", `{"category":"MATERIALS","amount":"10","status":"CANCELLED"}`},
		{"source account not a uuid", `{"category":"MATERIALS","amount":"10","status":"PENDING","source_account_id":"bank"}`},
		{"malformed json", `{"category":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newExpenseContext(http.MethodPost, "/expenses", tt.body)

			expense.NewHandler(&fakeExpenseService{}).Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		})
	}
}

func TestExpenseHandler_Pay_Overpayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()
	svc := &fakeExpenseService{
		payFn: func(ctx context.Context, organizationID, actorID, gotID string, req expense.PayExpenseRequest) (expense.ExpenseResponse, error) {
			assert.Equal(t, id, gotID)
			require.NotNil(t, req.Amount)
			assert.Equal(t, "500", req.Amount.String())
			return expense.ExpenseResponse{}, expenseerrors.ErrOverpayment
		},
	}

	c, w := newExpenseContext(http.MethodPost, "/expenses/"+id+"/pay",
		`{"source_account_id":"`+uuid.NewString()+`","amount":"500"}`)
	c.Params = gin.Params{{Key: "id", Value: id}}

	expense.NewHandler(svc).Pay(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OVERPAYMENT", env.Error.Code)
}

func TestExpenseHandler_Pay_MissingSourceAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newExpenseContext(http.MethodPost, "/expenses/x/pay", `{"amount":"5"}`)

	expense.NewHandler(&fakeExpenseService{}).Pay(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpenseHandler_Cancel_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"facility expense", expenseerrors.ErrCancelFacilityExpense, http.StatusForbidden, "FORBIDDEN"},
		{"already cancelled", expenseerrors.ErrExpenseAlreadyCancelled, http.StatusConflict, "ALREADY_CANCELLED"},
		{"not found", expenseerrors.ErrExpenseNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenseService{
				cancelFn: func(ctx context.Context, organizationID, actorID, id string) (expense.ExpenseResponse, error) {
					return expense.ExpenseResponse{}, tt.err
				},
			}
			c, w := newExpenseContext(http.MethodPost, "/expenses/x/cancel", "")
			c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

			expense.NewHandler(svc).Cancel(c)

			assert.Equal(t, tt.status, w.Code)
			env := decodeEnvelope(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestExpenseHandler_Delete_FacilityForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeExpenseService{
		deleteFn: func(ctx context.Context, organizationID, actorID, id string) error {
			return expenseerrors.ErrDeleteFacilityExpense
		},
	}

	c, w := newExpenseContext(http.MethodDelete, "/expenses/x", "")
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	expense.NewHandler(svc).Delete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestExpenseHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeExpenseService{
		getAllFn: func(ctx context.Context, organizationID string, filter expense.ExpenseFilter) ([]expense.ExpenseResponse, error) {
			assert.Equal(t, "PENDING", filter.Status)
			assert.Equal(t, "FACILITY_PAYROLL", filter.SourceType)
			return []expense.ExpenseResponse{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		},
	}

	c, w := newExpenseContext(http.MethodGet, "/expenses?status=PENDING&source_type=FACILITY_PAYROLL&page=1&page_size=2", "")

	expense.NewHandler(svc).GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var items []expense.ExpenseResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total)
}
