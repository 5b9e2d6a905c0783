package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/nixster/internal/app"
)

func (c *CLI) newEnvsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			return c.app.Envs(f)
		},
	}
}

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create and build an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			extends, _ := cmd.Flags().GetStringSlice("extends")
			adds, _ := cmd.Flags().GetStringSlice("adds")
			removes, _ := cmd.Flags().GetStringSlice("removes")
			force, _ := cmd.Flags().GetBool("force")

			return c.app.Create(cmd.Context(), args[0], app.CreateOptions{
				Description: description,
				Extends:     extends,
				Adds:        adds,
				Removes:     removes,
				Force:       force,
			})
		},
	}
	cmd.Flags().StringP("description", "d", "", "Short description of the environment")
	cmd.Flags().StringSliceP("extends", "e", nil, "Environments to inherit packages from")
	cmd.Flags().StringSliceP("adds", "a", nil, "Packages to add")
	cmd.Flags().StringSliceP("removes", "r", nil, "Inherited packages to remove")
	cmd.Flags().Bool("force", false, "Overwrite an existing environment")
	return cmd
}

func (c *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete the spec of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.Delete(args[0])
		},
	}
}

func (c *CLI) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Describe an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			long, _ := cmd.Flags().GetBool("long")
			return c.app.Show(cmd.Context(), args[0], long, f)
		},
	}
	cmd.Flags().BoolP("long", "l", false, "Include the store paths the environment depends on")
	return cmd
}

func (c *CLI) newPkgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pkgs <name>",
		Short: "List the resolved packages of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			return c.app.Pkgs(args[0], f)
		},
	}
}

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <name>",
		Short: "Install the packages of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <packages...>",
		Short: "Add packages to an environment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Add(cmd.Context(), args[0], args[1:])
		},
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name> <packages...>",
		Short: "Remove packages from an environment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Remove(cmd.Context(), args[0], args[1:])
		},
	}
}

func (c *CLI) newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <name> [packages...]",
		Short: "Upgrade packages of an environment, or all of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Upgrade(cmd.Context(), args[0], args[1:])
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <name>",
		Short: "Rebuild an environment whenever its spec changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args[0])
		},
	}
}
