package cli

import (
	"fmt"

	"github.com/arthur-debert/dac/internal/version"
	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/publish"
	"github.com/arthur-debert/dac/pkg/scaffold"
	"github.com/arthur-debert/dac/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Example: MsgInitExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Str("root", opts.root).Msg("Initializing repository")

			result, err := scaffold.Init(opts.root)
			if err != nil {
				return err
			}

			for _, f := range result.Created {
				printf(cmd, MsgCreatedItem, f)
			}
			for _, f := range result.Skipped {
				printf(cmd, MsgSkippedItem, f)
			}
			printf(cmd, MsgInitDone, result.Root)
			return nil
		},
	}
}

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := customers.List(opts.root)
			if err != nil {
				return err
			}

			list := make([]style.CustomerSummary, 0, len(ids))
			for _, id := range ids {
				c, err := customers.Load(opts.root, id)
				if err != nil {
					log.Warn().Err(err).Str("customer", id).Msg("Customer failed to load")
					list = append(list, style.CustomerSummary{ID: id, Err: err})
					continue
				}
				list = append(list, style.CustomerSummary{
					ID:               id,
					Name:             c.Config.Name,
					EnabledRulesRepo: c.Config.EnabledRulesRepo,
					KibanaURL:        c.Config.KibanaURL,
					Space:            c.Config.ElasticSpace,
					Enabled:          len(c.Manifest.Enabled),
					Disabled:         len(c.Manifest.Disabled),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderer(cmd).RenderCustomers(list))
			return nil
		},
	}
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		Example: MsgValidateExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := customers.Validate(opts.root, customerID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderer(cmd).RenderValidation(report))

			if !report.Valid() {
				// The field errors were printed with the report
				return errors.Newf(errors.ErrValidation, MsgErrValidateFailed, customerID, report.ErrorCount()).
					WithDetail("customer", customerID)
			}
			return nil
		},
	}

	addCustomerFlag(cmd, &customerID, opts, true)
	return cmd
}

func newAddCustomerCmd(opts *globalOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:     "add-customer <id>",
		Short:   MsgAddCustomerShort,
		Long:    MsgAddCustomerLong,
		Example: MsgAddCustomerExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			log.Info().Str("customer", id).Str("owner", owner).Msg("Adding customer")

			result, err := customers.Add(opts.root, id, owner)
			if err != nil {
				return err
			}

			printf(cmd, MsgCustomerAdded, result.ID, result.Dir)
			for _, f := range result.Files {
				printf(cmd, MsgCreatedItem, f)
			}
			printf(cmd, MsgCustomerNextSteps, customers.ManifestPath(opts.root, id), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "github-owner", "", MsgFlagGithubOwner)
	_ = cmd.MarkFlagRequired("github-owner")
	return cmd
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	var (
		customerID string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := publish.Sync(publish.Options{
				Root:       opts.root,
				CustomerID: customerID,
				OutDir:     outDir,
			})
			if err != nil {
				return err
			}

			printf(cmd, MsgSyncDone, result.OutDir, result.TargetRepo)
			if result.Initialized {
				printf(cmd, MsgSyncInitialized)
			}
			for _, f := range result.Staged {
				printf(cmd, MsgSyncStaged, f)
			}
			printf(cmd, MsgSyncNoCommit, result.TargetRepo)
			return nil
		},
	}

	addCustomerFlag(cmd, &customerID, opts, true)
	cmd.Flags().StringVar(&outDir, "out", "", MsgFlagOut)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			fmt.Fprintf(out, MsgBuiltFormat, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
