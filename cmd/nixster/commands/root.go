// Package commands implements the CLI commands for nixster.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/nixster/internal/app"
	"go.trai.ch/nixster/internal/build"
)

// CLI represents the command line interface for nixster.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	SetLogging(json, verbose bool)

	Create(ctx context.Context, name string, opts app.CreateOptions) error
	Delete(name string) error
	Envs(format app.Format) error
	Show(ctx context.Context, name string, long bool, format app.Format) error
	Pkgs(name string, format app.Format) error
	Build(ctx context.Context, name string) error
	Add(ctx context.Context, name string, pkgs []string) error
	Remove(ctx context.Context, name string, pkgs []string) error
	Upgrade(ctx context.Context, name string, pkgs []string) error
	Watch(ctx context.Context, name string) error

	Within(ctx context.Context, name, command string, pure bool) error
	Enter(ctx context.Context, name string, opts app.EnterOptions) error
	Serve(ctx context.Context, opts app.ServeOptions) error

	Update(ctx context.Context, channels []string) error
	Channel(ctx context.Context, url, name string) error
	Match(ctx context.Context, pkg string, format app.Format) error
	Search(ctx context.Context, term string, opts app.SearchOptions, format app.Format) error
	Dump(ctx context.Context, format app.Format) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "nixster",
		Short:         "Declarative package environments on top of nix",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format: pretty, json, or yaml (default pretty on a terminal, json otherwise)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		json, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		a.SetLogging(json, verbose)
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(
		c.newEnvsCmd(),
		c.newCreateCmd(),
		c.newDeleteCmd(),
		c.newShowCmd(),
		c.newPkgsCmd(),
		c.newBuildCmd(),
		c.newAddCmd(),
		c.newRemoveCmd(),
		c.newUpgradeCmd(),
		c.newWatchCmd(),
		c.newWithinCmd(),
		c.newEnterCmd(),
		c.newServeCmd(),
		c.newUpdateCmd(),
		c.newChannelCmd(),
		c.newMatchCmd(),
		c.newSearchCmd(),
		c.newDumpCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func format(cmd *cobra.Command) (app.Format, error) {
	f, _ := cmd.Flags().GetString("format")
	return app.ParseFormat(f)
}
