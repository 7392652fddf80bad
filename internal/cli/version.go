package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aihavenlabs/pathwei-admin/internal/cli.Version=...".
var Version = "0.1.0-dev"

const modulePath = "github.com/aihavenlabs/pathwei-admin"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pathwei-admin version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pathwei-admin v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
