package cli

import (
	"encoding/json"
	"fmt"

	"masar-finance/internal/reconciliation"

	"github.com/spf13/cobra"
)

func newReconcileCommand(open func() (Reconciler, func(), error)) *cobra.Command {
	var organizationID, accountID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored balances with the transaction history",
		Long: "Recomputes balances from payments, transfers and settled expenses and\n" +
			"prints one JSON report per account. Exits with status 2 on drift.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			var reports []reconciliation.Report
			if accountID != "" {
				report, err := svc.Reconcile(cmd.Context(), organizationID, accountID)
				if err != nil {
					return err
				}
				reports = []reconciliation.Report{report}
			} else {
				reports, err = svc.ReconcileOrganization(cmd.Context(), organizationID)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}

			drifted := 0
			for _, r := range reports {
				if !r.IsBalanced {
					drifted++
				}
			}
			if drifted > 0 {
				return fmt.Errorf("%w: %d of %d accounts", ErrDriftDetected, drifted, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "org", "", "organization id")
	cmd.Flags().StringVar(&accountID, "account", "", "account id, all accounts of the organization when empty")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}
