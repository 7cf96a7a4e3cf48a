package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Detections as code for Elastic Security"
	MsgInitShort        = "Create the layout of a detections repository"
	MsgListShort        = "List configured customers"
	MsgValidateShort    = "Validate a customer's configuration, manifest and overrides"
	MsgDiffShort        = "Show drift between a customer's manifest and the backend"
	MsgPushShort        = "Enable and disable rules to match a customer's manifest"
	MsgPullShort        = "Rewrite a customer's manifest from live backend state"
	MsgAddCustomerShort = "Scaffold a new customer"
	MsgSyncShort        = "Generate and stage a customer's enabled-rules repository"
	MsgExportRuleShort  = "Print a rule from the backend as YAML"
	MsgImportRuleShort  = "Create or update a rule from a file"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice      = "Dry run: no changes were applied. Run push without --dry-run to apply."
	MsgCreatedItem       = "  [success]created[/success] %s\n"
	MsgSkippedItem       = "  [muted]exists[/muted]  %s\n"
	MsgInitDone          = "Repository initialized in [path]%s[/path]\n"
	MsgCustomerAdded     = "Customer [bold]%s[/bold] added in [path]%s[/path]\n"
	MsgCustomerNextSteps = "Next: list rule_ids in [path]%s[/path], then run [code]dac diff --customer %s[/code]\n"
	MsgPullWritten       = "Wrote [path]%s[/path]: %d enabled, %d disabled\n"
	MsgSyncDone          = "Generated [path]%s[/path] for [bold]%s[/bold]\n"
	MsgSyncInitialized   = "  initialized git repository\n"
	MsgSyncStaged        = "  staged %s\n"
	MsgSyncNoCommit      = "Review, commit and push the staged files to %s.\n"
	MsgRuleImported      = "Rule [rule]%s[/rule] %s (id %s)\n"

	// Version output
	MsgVersionFormat = "dac version %s\n"
	MsgCommitFormat  = "  commit: %s\n"
	MsgBuiltFormat   = "  built:  %s\n"

	// Error messages
	MsgErrNoCommand      = "no command specified"
	MsgErrReadRuleFile   = "cannot read rule file"
	MsgErrParseRuleFile  = "cannot parse rule file"
	MsgErrRuleFileNoID   = "rule file has no rule_id"
	MsgErrValidateFailed = "customer %q has %d schema error(s)"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE); diff also lists satisfied rules"
	MsgFlagRoot         = "Repository root (env DAC_ROOT)"
	MsgFlagCustomer     = "Customer id (directory under customers/)"
	MsgFlagDryRun       = "Report changes without applying them"
	MsgFlagPrebuiltOnly = "Only capture prebuilt (immutable) rules"
	MsgFlagGithubOwner  = "GitHub owner of the customer's repositories"
	MsgFlagOut          = "Output directory (default build/<id>-enabled-rules)"
	MsgFlagUpdate       = "Replace an existing rule with the same rule_id"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/init-example.txt
	msgInitExampleRaw string
	MsgInitExample    = strings.TrimRight(msgInitExampleRaw, "\n")

	//go:embed msgs/validate-long.txt
	msgValidateLongRaw string
	MsgValidateLong    = strings.TrimSpace(msgValidateLongRaw)

	//go:embed msgs/validate-example.txt
	msgValidateExampleRaw string
	MsgValidateExample    = strings.TrimRight(msgValidateExampleRaw, "\n")

	//go:embed msgs/diff-long.txt
	msgDiffLongRaw string
	MsgDiffLong    = strings.TrimSpace(msgDiffLongRaw)

	//go:embed msgs/diff-example.txt
	msgDiffExampleRaw string
	MsgDiffExample    = strings.TrimRight(msgDiffExampleRaw, "\n")

	//go:embed msgs/push-long.txt
	msgPushLongRaw string
	MsgPushLong    = strings.TrimSpace(msgPushLongRaw)

	//go:embed msgs/push-example.txt
	msgPushExampleRaw string
	MsgPushExample    = strings.TrimRight(msgPushExampleRaw, "\n")

	//go:embed msgs/pull-long.txt
	msgPullLongRaw string
	MsgPullLong    = strings.TrimSpace(msgPullLongRaw)

	//go:embed msgs/add-customer-long.txt
	msgAddCustomerLongRaw string
	MsgAddCustomerLong    = strings.TrimSpace(msgAddCustomerLongRaw)

	//go:embed msgs/add-customer-example.txt
	msgAddCustomerExampleRaw string
	MsgAddCustomerExample    = strings.TrimRight(msgAddCustomerExampleRaw, "\n")

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/export-rule-long.txt
	msgExportRuleLongRaw string
	MsgExportRuleLong    = strings.TrimSpace(msgExportRuleLongRaw)

	//go:embed msgs/import-rule-long.txt
	msgImportRuleLongRaw string
	MsgImportRuleLong    = strings.TrimSpace(msgImportRuleLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
