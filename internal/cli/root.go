// Package cli implements the pathwei-admin command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	remote    string
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       logger.Logger
}

// NewRootCmd creates the top-level "pathwei-admin" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logger.Nop()}
	root := &cobra.Command{
		Use:   "pathwei-admin",
		Short: "Back-office tooling for Pathwei",
		Long: "pathwei-admin manages Pathwei users, newsletter subscribers and price tests,\n" +
			"serves the admin API and renders the role-gated dashboard.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $PATHWEI_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.pathwei-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.remote, "remote", "", "admin API base URL; commands use the API instead of the local store")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSeedCmd(a),
		newServeCmd(a),
		newUsersCmd(a),
		newSubscribersCmd(a),
		newExperimentsCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode classifies err. Problems with the caller's input are user errors;
// everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrDuplicate),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		if apiErr, ok := types.IsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
			return exitUserError
		}
		return exitSysError
	}
}

// errUsage marks invalid flag combinations detected by the commands.
var errUsage = errors.New("invalid usage")
