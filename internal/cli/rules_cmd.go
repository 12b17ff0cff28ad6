package cli

import (
	"fmt"

	"github.com/alexanderramin/buildseq/internal/cli/formatter"
	"github.com/alexanderramin/buildseq/internal/server"
	"github.com/spf13/cobra"
)

func newRulesCmd(a *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the phase rule table the classifier and scheduler use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.Sequences.Rules()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"rules": server.RuleViews(table)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRuleTable(table.Rules()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rules as JSON")
	return cmd
}
