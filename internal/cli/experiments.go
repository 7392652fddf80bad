package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

var experimentFilterFlags = []filterFlag{
	{types.FilterSearch, "search", "match test name or variant (case-insensitive)"},
	{types.FilterName, "name", "filter by test name"},
	{types.FilterVariant, "variant", "filter by variant"},
	{types.FilterLocale, "locale", "filter by locale"},
	{types.FilterMinViews, "min-views", "only variants with at least this many views"},
}

var experimentList = listSpec[types.PriceExperiment]{
	name:   types.CollectionExperiments,
	header: []string{"ID", "TEST", "VARIANT", "LOCALE", "PRICE", "VIEWS", "CONV", "RATE"},
	row: func(e types.PriceExperiment) []string {
		return []string{
			e.ID,
			truncate(e.Name, 30),
			e.Variant,
			e.Locale,
			fmt.Sprintf("%.2f", float64(e.PriceCents)/100),
			strconv.Itoa(e.Views),
			strconv.Itoa(e.Conversions),
			fmt.Sprintf("%.1f%%", e.ConversionRate()*100),
		}
	},
	empty: "No price tests found.",
}

func newExperimentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiments",
		Aliases: []string{"price-tests"},
		Short:   "Inspect and record price tests",
	}
	cmd.AddCommand(newExperimentsListCmd(a), newExperimentsRecordCmd(a))
	return cmd
}

func newExperimentsListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List price test variants",
		Long: `List prints one page of price test variants with their conversion rate.

Example:
  pathwei-admin experiments list --name pro-monthly --min-views 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()
			return runList(cmd, a, s.experiments, experimentList, listParams(cmd, experimentFilterFlags))
		},
	}
	addListFlags(cmd, experimentFilterFlags)
	return cmd
}

func newExperimentsRecordCmd(a *app) *cobra.Command {
	var views, conversions int
	cmd := &cobra.Command{
		Use:   "record <id>",
		Short: "Add views and conversions to a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if views == 0 && conversions == 0 {
				return fmt.Errorf("%w: nothing to record, pass --views or --conversions", errUsage)
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			e, err := s.record(cmd.Context(), args[0], views, conversions)
			if err != nil {
				return fmt.Errorf("record %s: %w", args[0], err)
			}
			a.log.Info("price test recorded", "id", e.ID, "views", e.Views, "conversions", e.Conversions)
			return printEntity(cmd, a, e, fmt.Sprintf("%s/%s: %d views, %d conversions (%.1f%%)",
				e.Name, e.Variant, e.Views, e.Conversions, e.ConversionRate()*100))
		},
	}
	cmd.Flags().IntVar(&views, "views", 0, "views to add")
	cmd.Flags().IntVar(&conversions, "conversions", 0, "conversions to add")
	return cmd
}
