package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/render/nodelink"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		file     string
		root     string
		kinds    string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the location hierarchy of a generated bundle",
		Long: `Draw the location hierarchy of the bundle at --output as a node-link diagram.

A full taxonomy has several hundred locations. Use --root to draw one region
and what it contains, or --kinds to keep only some levels:

  location2stix graph --root Africa --format svg -f africa.svg
  location2stix graph --kinds region,sub-region`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ks, err := parseKinds(kinds)
			if err != nil {
				return err
			}

			g, err := loadGraph(cfg.Output)
			if err != nil {
				return err
			}
			dot := nodelink.ToDOT(g, nodelink.Options{
				Detailed: detailed,
				Kinds:    ks,
				Root:     root,
			})

			data, err := renderGraph(dot, format)
			if err != nil {
				return err
			}

			if file == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", file)
			}
			printSuccess("Rendered %s", format)
			printFile(file)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatDOT, "output format (dot, svg, png)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&root, "root", "", "only draw this location and what it contains")
	cmd.Flags().StringVar(&kinds, "kinds", "", "comma-separated levels to draw (country, region, sub-region, intermediate-region)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include codes and relationship types")

	return cmd
}

// loadGraph reads and indexes the bundle at path.
func loadGraph(path string) (*stix.Graph, error) {
	b, err := stix.ImportBundle(path)
	if err != nil {
		return nil, fmt.Errorf("%w (run %s generate first)", err, appName)
	}
	return stix.NewGraph(b)
}

func renderGraph(dot, format string) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(dot)
	case formatPNG:
		return nodelink.RenderPNG(dot)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (use dot, svg or png)", format)
	}
}

// parseKinds parses a comma-separated list of level names.
func parseKinds(s string) ([]stix.Kind, error) {
	if s == "" {
		return nil, nil
	}
	var out []stix.Kind
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		k, ok := kindByName(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown level %q", name)
		}
		out = append(out, k)
	}
	return out, nil
}

func kindByName(name string) (stix.Kind, bool) {
	for _, k := range stix.Kinds() {
		if k.String() == name {
			return k, true
		}
	}
	return stix.KindUnknown, false
}
