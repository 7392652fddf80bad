package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the local store",
		Long: `Init writes config.yaml to the configuration directory and creates the
SQLite store in the data directory. An existing config.yaml is kept unless
--force is given, in which case it is rewritten with the effective settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := paths.ConfigFile(a.configDir)
			if force {
				if err := writeConfig(path, a.cfg); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			b, err := a.attachBackend()
			if err != nil {
				return err
			}
			if err := b.Detach(); err != nil {
				return fmt.Errorf("finalize store: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", path)
			fmt.Fprintf(out, "data:   %s\n", a.cfg.DataDir)
			fmt.Fprintln(out, "pathwei-admin initialized successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "rewrite config.yaml with the effective settings")
	return cmd
}
