package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	debug      bool
	logFormat  string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "remote-ticktick-mcp",
		Short: "Resilient command line access to the TickTick Open API",
		Long: `remote-ticktick-mcp talks to the TickTick Open API on behalf of an agent.

Requests transparently refresh an expired access token (once per call) and
retry rate-limited requests with exponential backoff. Results are printed as
JSON; failures are printed as {"error": "..."}.

Credentials are read from TICKTICK_* environment variables, a .env file in
the working directory, or the file passed with --config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "remote-ticktick-mcp version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (yaml, json, toml or .env)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newProjectsCmd(opts))
	rootCmd.AddCommand(newTasksCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			// Usage errors from cobra itself
			writeError(os.Stdout, err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of remote-ticktick-mcp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
		},
	}
}
