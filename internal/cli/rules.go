package cli

import (
	"encoding/json"
	"os"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportRuleCmd(opts *globalOptions) *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:     "export-rule <rule_id>",
		Short:   MsgExportRuleShort,
		Long:    MsgExportRuleLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.root, customerID)
			if err != nil {
				return err
			}
			defer s.Close()

			rule, err := s.client.GetRule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(map[string]interface{}(rule)); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "cannot encode rule")
			}
			return enc.Close()
		},
	}

	addCustomerFlag(cmd, &customerID, opts, false)
	return cmd
}

func newImportRuleCmd(opts *globalOptions) *cobra.Command {
	var (
		customerID string
		update     bool
	)

	cmd := &cobra.Command{
		Use:     "import-rule <file>",
		Short:   MsgImportRuleShort,
		Long:    MsgImportRuleLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := readRuleFile(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(opts.root, customerID)
			if err != nil {
				return err
			}
			defer s.Close()

			action := "created"
			var saved kibana.RuleDocument
			if update {
				action = "updated"
				saved, err = s.client.UpdateRule(cmd.Context(), rule)
			} else {
				saved, err = s.client.CreateRule(cmd.Context(), rule)
			}
			if err != nil {
				return err
			}

			log.Info().Str("rule_id", saved.String("rule_id")).Str("action", action).Msg("Rule imported")
			printf(cmd, MsgRuleImported, saved.String("rule_id"), action, saved.String("id"))
			return nil
		},
	}

	addCustomerFlag(cmd, &customerID, opts, false)
	cmd.Flags().BoolVar(&update, "update", false, MsgFlagUpdate)
	return cmd
}

// readRuleFile decodes a YAML or JSON rule into a JSON-ready document.
func readRuleFile(path string) (kibana.RuleDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrFileAccess
		if os.IsNotExist(err) {
			code = errors.ErrNotFound
		}
		return nil, errors.Wrap(err, code, MsgErrReadRuleFile).WithDetail("path", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, MsgErrParseRuleFile).WithDetail("path", path)
	}

	// Round trip through JSON so the document holds plain JSON values
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, MsgErrParseRuleFile).WithDetail("path", path)
	}
	var rule kibana.RuleDocument
	if err := json.Unmarshal(encoded, &rule); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, MsgErrParseRuleFile).WithDetail("path", path)
	}

	if rule.String("rule_id") == "" {
		return nil, errors.New(errors.ErrInvalidInput, MsgErrRuleFileNoID).WithDetail("path", path)
	}
	return rule, nil
}
