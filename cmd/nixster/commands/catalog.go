package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/nixster/internal/app"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [channels...]",
		Short: "Rebuild the package catalog from channels",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Update(cmd.Context(), args)
		},
	}
}

func (c *CLI) newChannelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channel [url] [name]",
		Short: "Subscribe to a nix channel",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var url, name string
			if len(args) > 0 {
				url = args[0]
			}
			if len(args) > 1 {
				name = args[1]
			}
			return c.app.Channel(cmd.Context(), url, name)
		},
	}
}

func (c *CLI) newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <package>",
		Short: "Show the catalog entries a package request resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			return c.app.Match(cmd.Context(), args[0], f)
		},
	}
}

func (c *CLI) newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the package catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			typ, _ := cmd.Flags().GetString("type")
			limit, _ := cmd.Flags().GetInt("limit")
			return c.app.Search(cmd.Context(), args[0], app.SearchOptions{Type: typ, Limit: limit}, f)
		},
	}
	cmd.Flags().StringP("type", "t", "", "Only show packages of this type, e.g. r-package")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of results (default from configuration)")
	return cmd
}

func (c *CLI) newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the whole package catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := format(cmd)
			if err != nil {
				return err
			}
			return c.app.Dump(cmd.Context(), f)
		},
	}
}
