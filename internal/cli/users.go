package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

var userFilterFlags = []filterFlag{
	{types.FilterSearch, "search", "match email or name (case-insensitive)"},
	{types.FilterRole, "role", "filter by role (admin, manager, editor, viewer)"},
	{types.FilterLocale, "locale", "filter by locale"},
	{types.FilterActive, "active", "filter by active state (true or false)"},
}

var userList = listSpec[types.User]{
	name:   types.CollectionUsers,
	header: []string{"ID", "EMAIL", "NAME", "ROLE", "LOCALE", "ACTIVE", "CREATED"},
	row: func(u types.User) []string {
		return []string{u.ID, u.Email, truncate(u.Name, 30), string(u.Role), u.Locale, yesNo(u.Active), u.CreatedAt.Format("2006-01-02")}
	},
	empty: "No users found.",
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage application users",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersGetCmd(a),
		newUsersCreateCmd(a),
		newUsersUpdateCmd(a),
		newUsersDeleteCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long: `List prints one page of users, newest first.

Example:
  pathwei-admin users list
  pathwei-admin users list --role editor --active true
  pathwei-admin users list --search ana --page 2 --limit 10
  pathwei-admin users list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()
			return runList(cmd, a, s.users, userList, listParams(cmd, userFilterFlags))
		},
	}
	addListFlags(cmd, userFilterFlags)
	return cmd
}

func newUsersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()
			u, err := s.users.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get user %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

// userFlags are the editable user fields.
type userFlags struct {
	email  string
	name   string
	role   string
	locale string
	active bool
}

func (f *userFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.role, "role", string(types.RoleViewer), "role (admin, manager, editor, viewer)")
	cmd.Flags().StringVar(&f.locale, "locale", "en", "locale (BCP 47 tag)")
	cmd.Flags().BoolVar(&f.active, "active", true, "whether the account is active")
}

// apply copies the flags the user set onto u.
func (f *userFlags) apply(cmd *cobra.Command, u *types.User) {
	fl := cmd.Flags()
	if fl.Changed("email") {
		u.Email = f.email
	}
	if fl.Changed("name") {
		u.Name = f.name
	}
	if fl.Changed("role") {
		u.Role = types.Role(f.role)
	}
	if fl.Changed("locale") {
		u.Locale = f.locale
	}
	if fl.Changed("active") {
		u.Active = f.active
	}
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create adds a user account.

Example:
  pathwei-admin users create --email ana@example.com --name Ana --role editor --locale es`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			u, err := mutator(a, "user", s.users).Create(cmd.Context(), types.User{
				Email:  f.email,
				Name:   f.name,
				Role:   types.Role(f.role),
				Locale: f.locale,
				Active: f.active,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			return printEntity(cmd, a, u, fmt.Sprintf("Created user %s", u.ID))
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUsersUpdateCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user",
		Long: `Update changes the fields given as flags and keeps the others.

Example:
  pathwei-admin users update 0190c1d2-... --role manager --active=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.users.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get user %s: %w", args[0], err)
			}
			f.apply(cmd, &u)
			u, err = mutator(a, "user", s.users).Update(cmd.Context(), args[0], u)
			if err != nil {
				return fmt.Errorf("update user %s: %w", args[0], err)
			}
			return printEntity(cmd, a, u, fmt.Sprintf("Updated user %s", u.ID))
		},
	}
	f.bind(cmd)
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.close()

			if err := mutator(a, "user", s.users).Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete user %s: %w", args[0], err)
			}
			return printEntity(cmd, a, map[string]string{"deleted": args[0]}, fmt.Sprintf("Deleted user %s", args[0]))
		},
	}
}
