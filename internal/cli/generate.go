package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the location bundle from the taxonomy CSV",
		Long: `Build the location bundle from the taxonomy CSV.

The staging store is cleared, the identity and marking-definition objects are
fetched, and every location and relationship is staged before the bundle is
written. Re-running with the same inputs produces an identical file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "stage objects but do not write the bundle")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, dryRun bool) error {
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

	opts := pipeline.OptionsFromConfig(cfg)
	if dryRun {
		opts.Output = ""
	}

	prog := newProgress(c.Logger)
	result, err := c.newRunner(st, cfg).Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %d objects", result.Stats.Objects))

	if result.Output != "" {
		printSuccess("Bundle written")
		printFile(result.Output)
	} else {
		printSuccess("Dry run complete")
		printDetail("Staged in %s", storeLocation(cfg))
	}
	printStats(result.Stats)
	if result.Stats.DuplicatesDropped > 0 {
		printWarning("%d duplicate relationships dropped (repeated country rows)", result.Stats.DuplicatesDropped)
	}
	if result.Output != "" {
		printNextStep("Explore it", appName+" browse")
	}
	return nil
}
