package rbac_test

import (
	"testing"

	"masar-finance/internal/rbac"
	"masar-finance/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer("", "")
	require.NoError(t, err)
	return rbac.NewService(enforcer)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newService(t)
	org := "0b8f6f0e-3c59-4a3c-9d9c-5ad1e1f0a001"

	tests := []struct {
		name     string
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"viewer reads expenses", "viewer", "expense", "read", true},
		{"viewer cannot pay", "viewer", "expense", "pay", false},
		{"accountant pays through inheritance", "accountant", "expense", "pay", true},
		{"accountant inherits reads", "accountant", "reconciliation", "read", true},
		{"accountant cannot approve payroll", "accountant", "payroll", "approve", false},
		{"manager approves payroll", "finance_manager", "payroll", "approve", true},
		{"owner inherits everything", "owner", "transfer", "cancel", true},
		{"unknown role", "intern", "expense", "read", false},
		{"empty role", "", "expense", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(tt.role, org, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRBACService_Permissions(t *testing.T) {
	svc := newService(t)

	perms, err := svc.Permissions("accountant", "org-1")
	require.NoError(t, err)

	assert.Contains(t, perms, rbac.PermissionResponse{Resource: "expense", Action: "pay"})
	assert.Contains(t, perms, rbac.PermissionResponse{Resource: "account", Action: "read"})
	assert.NotContains(t, perms, rbac.PermissionResponse{Resource: "payroll", Action: "approve"})
	for i := 1; i < len(perms); i++ {
		assert.LessOrEqual(t, perms[i-1].Resource, perms[i].Resource)
	}
}
