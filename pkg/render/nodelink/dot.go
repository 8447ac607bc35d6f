package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archmap/pkg/model"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes metrics (lines of code, component rank, SCC index)
	// in node labels. When false, only the artifact name is shown.
	Detailed bool
}

// ToDOT converts one scope's dependency graph to Graphviz DOT format for
// node-link visualization. The resulting DOT string can be rendered using
// [RenderSVG].
//
// Artifacts that are part of a cycle are rendered with a grey fill to make
// strongly-connected groups stand out.
func ToDOT(t *model.Tree, scope model.ID, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	sc := t.Artifact(scope)
	for _, id := range sc.Children() {
		a := t.Artifact(id)
		label := fmtLabel(a, opts.Detailed)
		attrs := fmtAttrs(a, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", a.Name(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range sc.Graph().Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", t.Artifact(e.From).Name(), t.Artifact(e.To).Name())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(a *model.Artifact, detailed bool) string {
	if !detailed {
		return a.Name()
	}

	parts := []string{
		fmt.Sprintf("loc: %d", a.Metrics.LinesOfCode),
		fmt.Sprintf("component: %d", a.Metrics.ComponentRank),
		fmt.Sprintf("order: %d", a.Metrics.SCCIndexTopologicallySorted),
	}
	return a.Name() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(a *model.Artifact, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if a.Metrics.IsInACycle {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display.
func RenderSVG(dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
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
