// Package nodelink renders location hierarchies as node-link diagrams.
//
// # Overview
//
// Locations appear as boxes filled by hierarchy level and containment
// relationships as arrows from the contained location to its container.
// The layout runs bottom-to-top (rankdir=BT) so regions sit at the top.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: labels include the location's codes and edges their type
//   - Kinds: only locations of these levels are drawn
//   - Root: only the named location and everything it contains are drawn
//
// A full taxonomy has a few hundred locations; Root or Kinds keep the
// diagram readable.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
