package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
)

func newConfigCommand(opts *GlobalOptions) *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = opts.ConfigPath
			}
			if path == "" {
				path = "config.yml"
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			cfg := config.Default()
			cfg.SetPath(path)
			if err := cfg.Write(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", "", "File to write (default: --config or config.yml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
