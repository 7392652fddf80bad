package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/internal/dashboard"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func newDashboardCmd(a *app) *cobra.Command {
	var role, outPath string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render the dashboard as HTML",
		Long: `Dashboard renders the widgets as seen by --role. Widgets above that role
are drawn blurred under a lock overlay.

Example:
  pathwei-admin dashboard --role manager --out dashboard.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := types.Role(role)
			if !r.Valid() {
				return fmt.Errorf("%w: unknown role %q", errUsage, role)
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			d := dashboard.New(dashboard.Standard(s.dashboardSource()), a.log)
			if err := d.Render(cmd.Context(), w, r); err != nil {
				return err
			}
			if outPath != "" {
				a.log.Info("dashboard written", "file", outPath, "role", r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(types.RoleAdmin), "viewer role (admin, manager, editor, viewer, all)")
	cmd.Flags().StringVar(&outPath, "out", "", "write to this file instead of stdout")
	return cmd
}
