package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dac/internal/version"
	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity int
	root      string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "dac",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Str("root", opts.root).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", defaultRoot(), MsgFlagRoot)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "rules", Title: "RULES:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newDiffCmd(opts))
	rootCmd.AddCommand(newPushCmd(opts))
	rootCmd.AddCommand(newPullCmd(opts))
	rootCmd.AddCommand(newAddCustomerCmd(opts))
	rootCmd.AddCommand(newSyncCmd(opts))
	rootCmd.AddCommand(newExportRuleCmd(opts))
	rootCmd.AddCommand(newImportRuleCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	installHelpTopics(rootCmd)

	return rootCmd
}

// defaultRoot is DAC_ROOT when set, else the current directory.
func defaultRoot() string {
	if root := os.Getenv("DAC_ROOT"); root != "" {
		return root
	}
	return "."
}

// renderer picks colored or plain output for the command's writer.
func renderer(cmd *cobra.Command) style.Renderer {
	return style.NewRenderer(colorEnabled(cmd.OutOrStdout()))
}

// printf renders markup in a message and writes it to the command output.
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprint(cmd.OutOrStdout(), style.Render(fmt.Sprintf(format, args...)))
}

// addCustomerFlag registers a --customer flag with shell completion.
func addCustomerFlag(cmd *cobra.Command, target *string, opts *globalOptions, required bool) {
	cmd.Flags().StringVarP(target, "customer", "c", "", MsgFlagCustomer)
	if required {
		_ = cmd.MarkFlagRequired("customer")
	}
	_ = cmd.RegisterFlagCompletionFunc("customer", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		ids, err := customers.List(opts.root)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
}

// RenderError formats a command error for stderr.
func RenderError(err error) string {
	return style.NewRenderer(colorEnabled(os.Stderr)).RenderError(err)
}
