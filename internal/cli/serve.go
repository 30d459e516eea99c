package cli

import (
	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/server"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated bundle over HTTP",
		Long: `Serve the bundle at --output over HTTP until interrupted.

Routes:
  GET /healthz
  GET /bundle
  GET /objects?type=location
  GET /objects/{id}
  GET /locations/{id}/parents
  GET /locations/{id}/children
  GET /graph.dot?root=Africa`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			b, err := stix.ImportBundle(cfg.Output)
			if err != nil {
				return err
			}
			srv, err := server.New(b, c.Logger)
			if err != nil {
				return err
			}
			printSuccess("Serving %d objects", b.Len())
			printDetail("http://%s/bundle", displayAddr(addr))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")

	return cmd
}

// displayAddr turns a listen address into something a browser can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
