package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"masar-finance/internal/auth"
	"masar-finance/internal/cli"
	"masar-finance/internal/reconciliation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	ups, downs []int
	version    uint
	closed     bool
}

func (f *fakeMigrator) Up() error {
	f.ups = append(f.ups, 1)
	f.version = 2
	return nil
}

func (f *fakeMigrator) Down(n int) error {
	f.downs = append(f.downs, n)
	f.version = 1
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, false, nil }

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

type fakeReconciler struct {
	reports []reconciliation.Report
	gotOrg  string
	gotAcc  string
}

func (f *fakeReconciler) Reconcile(ctx context.Context, organizationID, accountID string) (reconciliation.Report, error) {
	f.gotOrg, f.gotAcc = organizationID, accountID
	return f.reports[0], nil
}

func (f *fakeReconciler) ReconcileOrganization(ctx context.Context, organizationID string) ([]reconciliation.Report, error) {
	f.gotOrg = organizationID
	return f.reports, nil
}

func run(t *testing.T, deps cli.Deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(deps)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	m := &fakeMigrator{}
	deps := cli.Deps{
		OpenMigrator: func() (cli.Migrator, func(), error) {
			return m, func() { _ = m.Close() }, nil
		},
	}

	out, err := run(t, deps, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "version 2\n", out)
	assert.True(t, m.closed)

	out, err = run(t, deps, "migrate", "down", "--steps", "0")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, m.downs)
	assert.Equal(t, "version 1\n", out)

	out, err = run(t, deps, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version 1\n", out)
}

func TestMigrateCommand_OpenFailure(t *testing.T) {
	boom := errors.New("connection refused")
	deps := cli.Deps{
		OpenMigrator: func() (cli.Migrator, func(), error) { return nil, nil, boom },
	}

	_, err := run(t, deps, "migrate", "up")
	assert.ErrorIs(t, err, boom)
}

func TestReconcileCommand(t *testing.T) {
	balanced := reconciliation.Report{AccountID: "acc-1", IsBalanced: true}
	drifted := reconciliation.Report{AccountID: "acc-2", IsBalanced: false}

	t.Run("balanced organization", func(t *testing.T) {
		r := &fakeReconciler{reports: []reconciliation.Report{balanced}}
		deps := cli.Deps{OpenReconciler: func() (cli.Reconciler, func(), error) { return r, func() {}, nil }}

		out, err := run(t, deps, "reconcile", "--org", "org-1")
		require.NoError(t, err)
		assert.Equal(t, "org-1", r.gotOrg)
		assert.Contains(t, out, `"acc-1"`)
	})

	t.Run("single account", func(t *testing.T) {
		r := &fakeReconciler{reports: []reconciliation.Report{balanced}}
		deps := cli.Deps{OpenReconciler: func() (cli.Reconciler, func(), error) { return r, func() {}, nil }}

		_, err := run(t, deps, "reconcile", "--org", "org-1", "--account", "acc-1")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", r.gotAcc)
	})

	t.Run("drift is an error", func(t *testing.T) {
		r := &fakeReconciler{reports: []reconciliation.Report{balanced, drifted}}
		deps := cli.Deps{OpenReconciler: func() (cli.Reconciler, func(), error) { return r, func() {}, nil }}

		out, err := run(t, deps, "reconcile", "--org", "org-1")
		assert.ErrorIs(t, err, cli.ErrDriftDetected)
		assert.Contains(t, err.Error(), "1 of 2 accounts")
		assert.Contains(t, out, `"acc-2"`)
	})

	t.Run("org is required", func(t *testing.T) {
		deps := cli.Deps{OpenReconciler: func() (cli.Reconciler, func(), error) {
			t.Fatal("should not open")
			return nil, nil, nil
		}}

		_, err := run(t, deps, "reconcile")
		assert.Error(t, err)
	})
}

func TestTokenCommand(t *testing.T) {
	const secret = "cli-secret"
	user, org := uuid.NewString(), uuid.NewString()

	out, err := run(t, cli.Deps{JWTSecret: secret}, "token", "--user", user, "--org", org, "--role", "accountant", "--ttl", "1h")
	require.NoError(t, err)

	var got struct {
		Token          string `json:"token"`
		OrganizationID string `json:"organization_id"`
		Role           string `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, org, got.OrganizationID)

	claims, err := auth.Parse(secret, got.Token)
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
	assert.Equal(t, "accountant", claims.Role)

	_, err = run(t, cli.Deps{}, "token", "--user", user, "--org", org)
	assert.ErrorIs(t, err, auth.ErrEmptySecret)

	_, err = run(t, cli.Deps{JWTSecret: secret}, "token", "--user", "bob", "--org", org)
	assert.ErrorIs(t, err, auth.ErrInvalidActor)
}
