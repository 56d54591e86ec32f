package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xab-mack/solhunt/internal/plugins"
)

func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "modules", Short: "Inspect the detection modules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in modules and the findings each can report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODULE\tCODE\tSEVERITY\tSUMMARY")
			for _, m := range reg.Modules() {
				cat := m.Catalog()
				for _, code := range cat.Codes() {
					e, _ := cat.Lookup(code)
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", m.Name(), code, e.Severity, e.Summary)
				}
			}
			return tw.Flush()
		},
	})
	return cmd
}
