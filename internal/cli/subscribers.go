package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

var subscriberFilterFlags = []filterFlag{
	{types.FilterSearch, "search", "match email (case-insensitive)"},
	{types.FilterLocale, "locale", "filter by locale"},
	{types.FilterSource, "source", "filter by signup source"},
	{types.FilterSubscribed, "subscribed", "filter by subscription state (true or false)"},
}

var subscriberList = listSpec[types.Subscriber]{
	name:   types.CollectionSubscribers,
	header: []string{"ID", "EMAIL", "LOCALE", "SUBSCRIBED", "SOURCE", "CREATED"},
	row: func(s types.Subscriber) []string {
		return []string{s.ID, s.Email, s.Locale, yesNo(s.Subscribed), s.Source, s.CreatedAt.Format("2006-01-02")}
	},
	empty: "No subscribers found.",
}

func newSubscribersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscribers",
		Aliases: []string{"subs"},
		Short:   "Manage newsletter subscribers",
	}
	cmd.AddCommand(
		newSubscribersListCmd(a),
		newSubscribersAddCmd(a),
		newSubscribersDeleteCmd(a),
		newSubscribersExportCmd(a),
		newSubscribersImportCmd(a),
	)
	return cmd
}

func newSubscribersListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
		Long: `List prints one page of newsletter subscribers, newest first.

Example:
  pathwei-admin subscribers list --locale de --subscribed true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()
			return runList(cmd, a, s.subscribers, subscriberList, listParams(cmd, subscriberFilterFlags))
		},
	}
	addListFlags(cmd, subscriberFilterFlags)
	return cmd
}

func newSubscribersAddCmd(a *app) *cobra.Command {
	var (
		email, locale, source string
		unsubscribed          bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subscriber",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			sub, err := mutator(a, "subscriber", s.subscribers).Create(cmd.Context(), types.Subscriber{
				Email:      email,
				Locale:     locale,
				Source:     source,
				Subscribed: !unsubscribed,
			})
			if err != nil {
				return fmt.Errorf("add subscriber: %w", err)
			}
			return printEntity(cmd, a, sub, fmt.Sprintf("Added subscriber %s", sub.ID))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&locale, "locale", "en", "locale (BCP 47 tag)")
	cmd.Flags().StringVar(&source, "source", "cli", "signup source")
	cmd.Flags().BoolVar(&unsubscribed, "unsubscribed", false, "record the address as unsubscribed")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSubscribersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			if err := mutator(a, "subscriber", s.subscribers).Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete subscriber %s: %w", args[0], err)
			}
			return printEntity(cmd, a, map[string]string{"deleted": args[0]}, fmt.Sprintf("Deleted subscriber %s", args[0]))
		},
	}
}

func newSubscribersExportCmd(a *app) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export subscribed addresses as JSONL",
		Long: `Export writes every subscribed address to a JSON Lines file, one
subscriber per line, for the bulk-email composer. The file is replaced
atomically.

Example:
  pathwei-admin subscribers export newsletter.jsonl --locale fr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openLocal()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.backend.Subscribers().ExportJSONL(cmd.Context(), args[0], locale)
			if err != nil {
				return fmt.Errorf("export subscribers: %w", err)
			}
			return printEntity(cmd, a, map[string]any{"exported": n, "file": args[0]},
				fmt.Sprintf("Exported %d subscriber(s) to %s", n, args[0]))
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "only export this locale")
	return cmd
}

func newSubscribersImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import subscribers from JSONL",
		Long: `Import adds the subscribers in a JSON Lines file. Malformed lines,
invalid records and addresses already on file are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openLocal()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.backend.Subscribers().ImportJSONL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import subscribers: %w", err)
			}
			return printEntity(cmd, a, map[string]any{"imported": n, "file": args[0]},
				fmt.Sprintf("Imported %d subscriber(s) from %s", n, args[0]))
		},
	}
}
