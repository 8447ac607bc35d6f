// Package render provides visualization rendering for architecture models.
//
// # Overview
//
// This package contains the renderers that transform an analyzed artifact
// tree into visual outputs:
//
//   - Nested treemap SVG (in [treemap] subpackage)
//   - Node-link diagrams of a scope's dependency graph (in [nodelink]
//     subpackage)
//
// # Treemap
//
// The [treemap] subpackage writes the laid-out tree as nested rectangles
// with header labels, one per artifact. The output is a pure function of
// the tree's layout frames.
//
//	svg := treemap.RenderSVG(tree, treemap.Options{})
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders one scope's dependency graph as a
// traditional directed diagram using Graphviz. Nodes appear as boxes
// connected by arrows; artifacts in a cycle are highlighted.
//
//	dot := nodelink.ToDOT(tree, scopeID, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [treemap]: github.com/matzehuels/archmap/pkg/render/treemap
// [nodelink]: github.com/matzehuels/archmap/pkg/render/nodelink
package render
