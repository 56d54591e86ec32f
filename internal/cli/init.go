package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/xab-mack/solhunt/internal/config"
	"github.com/xab-mack/solhunt/internal/model"
)

func newInitCmd(g *globals) *cobra.Command {
	var (
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .solhunt.toml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, config.FileNames[0])
			if ok, _ := afero.Exists(g.fs, path); ok && !force {
				return model.NewError(model.CodeConfiguration, path+" already exists, use --force to overwrite").
					WithContext(model.CtxPath, path)
			}
			b, err := config.Encode(config.Default())
			if err != nil {
				return err
			}
			if err := afero.WriteFile(g.fs, path, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config file to")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
