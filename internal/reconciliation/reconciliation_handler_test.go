package reconciliation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"masar-finance/internal/account/accounttest"
	"masar-finance/internal/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func serveRecon(t *testing.T, h *reconciliation.Handler, orgID, accountID string, call func(*reconciliation.Handler, *gin.Context)) (int, reconEnvelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/reconciliation", nil)
	c.Set("organization_id", orgID)
	if accountID != "" {
		c.Params = gin.Params{{Key: "id", Value: accountID}}
	}

	call(h, c)

	var env reconEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestReconciliationHandler_ReconcileAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := setupLedger(t)
	org := uuid.New()
	acc := accounttest.Seed(t, l.db, org, 50000, true)
	h := reconciliation.NewHandler(l.recon)

	t.Run("balanced account", func(t *testing.T) {
		status, env := serveRecon(t, h, org.String(), acc.ID.String(), (*reconciliation.Handler).ReconcileAccount)

		assert.Equal(t, http.StatusOK, status)
		var report reconciliation.Report
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, acc.ID.String(), report.AccountID)
		assert.True(t, report.IsBalanced)
	})

	t.Run("account of another organization is not found", func(t *testing.T) {
		status, env := serveRecon(t, h, uuid.NewString(), acc.ID.String(), (*reconciliation.Handler).ReconcileAccount)

		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestReconciliationHandler_ReconcileOrganization(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := setupLedger(t)
	org := uuid.New()
	accounttest.Seed(t, l.db, org, 100, true)
	accounttest.Seed(t, l.db, org, 200, true)

	status, env := serveRecon(t, reconciliation.NewHandler(l.recon), org.String(), "", (*reconciliation.Handler).ReconcileOrganization)

	assert.Equal(t, http.StatusOK, status)
	var reports []reconciliation.Report
	require.NoError(t, json.Unmarshal(env.Data, &reports))
	assert.Len(t, reports, 2)
}
