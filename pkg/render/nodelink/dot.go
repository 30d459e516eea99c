package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/muchdogesec/location2stix/pkg/stix"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes external reference codes in node labels and the
	// relationship type on edges. When false, only the name is shown.
	Detailed bool

	// Kinds restricts the diagram to these hierarchy levels.
	// Empty means all levels.
	Kinds []stix.Kind

	// Root restricts the diagram to the location with this name and
	// everything that transitively points at it.
	Root string
}

var kindFill = map[stix.Kind]string{
	stix.KindRegion:             "#c6dbef",
	stix.KindSubRegion:          "#c7e9c0",
	stix.KindIntermediateRegion: "#fdd0a2",
	stix.KindCountry:            "white",
}

// ToDOT converts a location graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Edges are only drawn when both endpoints are drawn.
func ToDOT(g *stix.Graph, opts Options) string {
	keep := selectLocations(g, opts)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, loc := range g.Locations() {
		if !keep[loc.ID] {
			continue
		}
		attrs := fmtAttrs(loc, fmtLabel(loc, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", loc.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, rel := range g.Relationships() {
		if !keep[rel.SourceRef] || !keep[rel.TargetRef] {
			continue
		}
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n", rel.SourceRef, rel.TargetRef, rel.RelationshipType)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", rel.SourceRef, rel.TargetRef)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// selectLocations returns the identifiers to draw.
func selectLocations(g *stix.Graph, opts Options) map[string]bool {
	keep := make(map[string]bool, len(g.Locations()))
	for _, loc := range g.Locations() {
		if len(opts.Kinds) == 0 || slices.Contains(opts.Kinds, loc.Kind()) {
			keep[loc.ID] = true
		}
	}
	if opts.Root == "" {
		return keep
	}

	root := stix.NodeID(opts.Root)
	within := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, rel := range g.Children(id) {
			if !within[rel.SourceRef] {
				within[rel.SourceRef] = true
				queue = append(queue, rel.SourceRef)
			}
		}
	}
	for id := range keep {
		if !within[id] {
			delete(keep, id)
		}
	}
	return keep
}

func fmtLabel(loc *stix.Location, detailed bool) string {
	if !detailed {
		return loc.Name
	}

	var parts []string
	if loc.Country != "" {
		parts = append(parts, loc.Country)
	}
	for _, ref := range loc.ExternalReferences {
		if ref.ExternalID != "" && ref.ExternalID != loc.Name {
			parts = append(parts, fmt.Sprintf("%s: %s", ref.SourceName, ref.ExternalID))
		}
	}
	if len(parts) == 0 {
		return loc.Name
	}
	return loc.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(loc *stix.Location, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := kindFill[loc.Kind()]; ok && fill != "white" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
