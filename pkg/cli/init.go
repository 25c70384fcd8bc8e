package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/protocheck/pkg/linter"
)

func newInitCommand(root *rootOptions) *cobra.Command {
	var (
		force bool
		toml  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default protocheck config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			name := "protocheck.yaml"
			if toml {
				name = "protocheck.toml"
			}
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := linter.SaveConfig(linter.DefaultConfig(), path); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			root.logger.WithField("path", path).Info("wrote config")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.Flags().BoolVar(&toml, "toml", false, "write TOML instead of YAML")
	return cmd
}
