package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/config"
)

// storeCommand creates the staging store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the staging store",
	}

	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeListCommand())

	return cmd
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every staged object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			objs, err := st.Query(ctx)
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				printInfo("Store is empty")
				return nil
			}
			if err := st.Reset(ctx); err != nil {
				return err
			}

			printSuccess("Cleared %d staged objects", len(objs))
			printDetail("Store: %s", storeLocation(cfg))
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where objects are staged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Backend == config.BackendFile {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Store.Dir)
				return nil
			}
			printKeyValue("backend", cfg.Store.Backend)
			printKeyValue("location", storeLocation(cfg))
			return nil
		},
	}
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	var objType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staged objects in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			objs, err := st.Query(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			n := 0
			for _, obj := range objs {
				if objType != "" && obj.Type != objType {
					continue
				}
				fmt.Fprintf(out, "%-20s %s\n", obj.Type, obj.ID)
				n++
			}
			c.Logger.Debug("listed staged objects", "shown", n, "total", len(objs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&objType, "type", "t", "", "only list objects of this STIX type")

	return cmd
}
