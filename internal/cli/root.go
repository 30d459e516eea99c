package cli

import (
	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/buildinfo"
	"github.com/muchdogesec/location2stix/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Running the root command without a subcommand is the same as "generate".
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "location2stix converts the ISO 3166 country list into STIX 2.1 locations",
		Long: `location2stix reads the ISO 3166 country and regional code table and writes a
STIX 2.1 bundle of location objects for every country, region, sub-region and
intermediate region, linked by containment relationships.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.verbose {
				c.SetLogLevel(LogDebug)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, false)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.flags.config, "config", defaultConfigPath, "config file (TOML)")
	pf.StringVarP(&c.flags.input, "input", "i", config.DefaultInput, "taxonomy CSV file")
	pf.StringVarP(&c.flags.output, "output", "o", config.DefaultOutput, "bundle output file")
	pf.StringVar(&c.flags.backend, "store", config.BackendFile, "staging backend (file, redis, memory)")
	pf.StringVar(&c.flags.storeDir, "store-dir", config.DefaultStoreDir, "staging directory for the file backend")
	pf.StringVar(&c.flags.redisURL, "redis-url", config.DefaultRedisURL, "redis URL for the redis backend")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.completionCommand())

	return root
}
