package app

import (
	"github.com/spf13/cobra"

	"github.com/xab-mack/solhunt/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "solhunt",
		Short:         "Static analysis for Solidity syntax trees",
		Version:       cli.Version,
		SilenceErrors: true,
	}
	cli.AddCommands(root)
	return root
}
