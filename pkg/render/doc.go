// Package render draws location hierarchies.
//
// The [nodelink] subpackage renders the containment graph of a bundle as a
// Graphviz node-link diagram, with regions at the top and countries at the
// bottom.
//
//	g, err := stix.NewGraph(bundle)
//	dot := nodelink.ToDOT(g, nodelink.Options{Root: "Africa"})
//	svg, err := nodelink.RenderSVG(dot)
//
// [nodelink]: github.com/muchdogesec/location2stix/pkg/render/nodelink
package render
