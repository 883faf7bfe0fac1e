package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"masar-finance/internal/account"
	accounterrors "masar-finance/internal/account/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type fakeAccountService struct {
	accounts map[string]account.AccountResponse
}

func (f *fakeAccountService) GetAll(ctx context.Context, organizationID string) ([]account.AccountResponse, error) {
	out := make([]account.AccountResponse, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAccountService) GetByID(ctx context.Context, organizationID, id string) (account.AccountResponse, error) {
	a, ok := f.accounts[id]
	if !ok {
		return account.AccountResponse{}, accounterrors.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountService) GetBalance(ctx context.Context, organizationID, id string) (account.BalanceResponse, error) {
	a, ok := f.accounts[id]
	if !ok {
		return account.BalanceResponse{}, accounterrors.ErrAccountNotFound
	}
	return account.BalanceResponse{AccountID: a.ID, Currency: a.Currency, Balance: a.Balance}, nil
}

func TestAccountHandler_GetBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()
	h := account.NewHandler(&fakeAccountService{accounts: map[string]account.AccountResponse{
		id: {ID: id, Currency: "SAR", Balance: decimal.RequireFromString("1250.50")},
	}})

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/accounts/"+id+"/balance", nil)
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.GetBalance(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var got account.BalanceResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, id, got.AccountID)
		assert.Equal(t, "SAR", got.Currency)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("1250.5")))
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/accounts/x/balance", nil)
		c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

		h.GetBalance(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestAccountHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := account.NewHandler(&fakeAccountService{accounts: map[string]account.AccountResponse{
		"a": {ID: "a"}, "b": {ID: "b"},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/accounts?page=1&page_size=1", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Total)
}
