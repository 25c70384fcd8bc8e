package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/protocheck/pkg/linter/rules"
)

func newRulesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := rules.DefaultRules()

			fmt.Fprintf(cmd.OutOrStdout(), "Available rules (%d):\n\n", len(all))

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Rule", "Rule set", "Severity", "Kind", "Description")
			for _, rule := range all {
				err := table.Append([]string{
					rule.Name(),
					string(rule.Category()),
					rule.Severity().String(),
					string(rule.Kind()),
					rule.Description(),
				})
				if err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
