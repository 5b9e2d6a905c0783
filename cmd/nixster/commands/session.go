package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/nixster/internal/app"
)

func (c *CLI) newWithinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "within <name> <command...>",
		Short: "Run a command inside an environment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pure, _ := cmd.Flags().GetBool("pure")
			return c.app.Within(cmd.Context(), args[0], strings.Join(args[1:], " "), pure)
		},
	}
	// Everything after the environment name belongs to the command.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().Bool("pure", false, "Drop the host environment variables")
	return cmd
}

func (c *CLI) newEnterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enter <name>",
		Short: "Open a shell inside an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, _ := cmd.Flags().GetString("command")
			platform, _ := cmd.Flags().GetString("platform")
			pure, _ := cmd.Flags().GetBool("pure")
			cpuShares, _ := cmd.Flags().GetInt("cpu-shares")
			memory, _ := cmd.Flags().GetString("memory")
			mounts, _ := cmd.Flags().GetStringArray("mount")

			return c.app.Enter(cmd.Context(), args[0], app.EnterOptions{
				Command:     command,
				Platform:    platform,
				Pure:        pure,
				CPUShares:   cpuShares,
				MemoryLimit: memory,
				Mounts:      mounts,
			})
		},
	}
	cmd.Flags().StringP("command", "c", "", "Run this command instead of an interactive shell")
	cmd.Flags().StringP("platform", "p", "", "Shell platform: unix, win, or docker")
	cmd.Flags().Bool("pure", false, "Drop the host environment variables")
	cmd.Flags().Int("cpu-shares", 0, "Relative CPU weight of the container")
	cmd.Flags().String("memory", "", "Memory limit of the container, e.g. 512m")
	cmd.Flags().StringArray("mount", nil, "Bind mount host:container into the container")
	return cmd
}

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve environment sessions over HTTP and websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, _ := cmd.Flags().GetString("address")
			port, _ := cmd.Flags().GetInt("port")
			return c.app.Serve(cmd.Context(), app.ServeOptions{Address: address, Port: port})
		},
	}
	cmd.Flags().String("address", "", "Address to listen on (default from configuration)")
	cmd.Flags().Int("port", 0, "Port to listen on (default from configuration)")
	return cmd
}
