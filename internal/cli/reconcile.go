package cli

import (
	"fmt"

	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/arthur-debert/dac/pkg/reconcile"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:     "diff",
		Short:   MsgDiffShort,
		Long:    MsgDiffLong,
		Example: MsgDiffExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts, customerID, reconcile.Preview)
		},
	}

	addCustomerFlag(cmd, &customerID, opts, true)
	return cmd
}

func newPushCmd(opts *globalOptions) *cobra.Command {
	var (
		customerID string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:     "push",
		Short:   MsgPushShort,
		Long:    MsgPushLong,
		Example: MsgPushExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := reconcile.Apply
			if dryRun {
				mode = reconcile.Preview
			}
			if err := runReconcile(cmd, opts, customerID, mode); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "\n"+MsgDryRunNotice)
			}
			return nil
		},
	}

	addCustomerFlag(cmd, &customerID, opts, true)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

// runReconcile reconciles one customer and prints the report. A partial
// failure still prints what was applied before returning the error.
func runReconcile(cmd *cobra.Command, opts *globalOptions, customerID string, mode reconcile.Mode) error {
	s, err := openSession(opts.root, customerID)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Info().
		Str("customer", customerID).
		Str("mode", mode.String()).
		Msg("Reconciling customer")

	result, err := reconcile.Reconcile(cmd.Context(), s.client, s.customer.Manifest, mode)
	if result != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderer(cmd).RenderReport(customerID, result, opts.verbosity > 0))
	}
	return err
}

func newPullCmd(opts *globalOptions) *cobra.Command {
	var (
		customerID   string
		prebuiltOnly bool
	)

	cmd := &cobra.Command{
		Use:     "pull",
		Short:   MsgPullShort,
		Long:    MsgPullLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.root, customerID)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := reconcile.Snapshot(cmd.Context(), s.client, reconcile.SnapshotOptions{PrebuiltOnly: prebuiltOnly})
			if err != nil {
				return err
			}

			path := customers.ManifestPath(opts.root, customerID)
			if err := models.WriteManifest(path, m, customers.ManifestHeader(customerID)); err != nil {
				return err
			}

			printf(cmd, MsgPullWritten, path, len(m.Enabled), len(m.Disabled))
			return nil
		},
	}

	addCustomerFlag(cmd, &customerID, opts, true)
	cmd.Flags().BoolVar(&prebuiltOnly, "prebuilt-only", false, MsgFlagPrebuiltOnly)
	return cmd
}
