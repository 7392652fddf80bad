package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into an empty local store",
		Long: `Seed fills an empty store with demo users, subscribers and price tests.
A store that already has users is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openLocal()
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.backend.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return printEntity(cmd, a, res, fmt.Sprintf("Seeded %d users, %d subscribers, %d price tests",
				res.Users, res.Subscribers, res.Experiments))
		},
	}
}
