// Package treemap writes a laid-out artifact tree as a nested-rectangle
// SVG.
//
// Every artifact becomes a rounded rectangle positioned by the frames the
// layouter computed, with a header label and a fill tinted by artifact
// kind. Artifacts in a cycle get a warning tint. The output is a pure
// function of the tree.
package treemap

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/archmap/pkg/model"
)

// Options configures treemap SVG rendering.
type Options struct {
	// FontSize for header labels. Zero selects 12.
	FontSize float64

	// MaxDepth limits how many nesting levels are drawn. Zero draws all.
	MaxDepth int
}

// Fill colors per artifact kind, plus the cycle highlight.
const (
	fillFolder = "#f2f0eb"
	fillFile   = "#e3e9f2"
	fillSymbol = "#ffffff"
	fillCycle  = "#f6dede"
	strokeMain = "#4a4a4a"
	textColor  = "#222222"
)

// RenderSVG renders the tree into SVG bytes. The root rectangle's size is
// taken from the root artifact's frame; run the layouter first.
func RenderSVG(t *model.Tree, opts Options) []byte {
	if opts.FontSize == 0 {
		opts.FontSize = 12
	}
	root := t.Artifact(t.Root())
	width := root.FrameInScopeContent.Width
	height := root.FrameInScopeContent.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <style>text { font-family: sans-serif; fill: %s; }</style>`+"\n", textColor)

	renderArtifact(&buf, t, t.Root(), 0, 0, 0, opts)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderArtifact draws one artifact at its absolute position and recurses
// into shown children. offsetX/offsetY locate the parent's content frame in
// absolute coordinates.
func renderArtifact(buf *bytes.Buffer, t *model.Tree, id model.ID, offsetX, offsetY float64, depth int, opts Options) {
	a := t.Artifact(id)
	frame := a.FrameInScopeContent
	x, y := offsetX+frame.X, offsetY+frame.Y

	// Collapsed artifacts have no visible area.
	if frame.Width <= 0 || frame.Height <= 0 {
		return
	}

	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		x, y, frame.Width, frame.Height, fillFor(a), strokeMain)

	if frame.Height >= opts.FontSize+2 {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-size="%.0f">%s</text>`+"\n",
			x+4, y+opts.FontSize, opts.FontSize, html.EscapeString(a.Name()))
	}

	if !a.ShowsParts {
		return
	}
	if opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth {
		return
	}
	contentX := x + a.ContentFrame.X
	contentY := y + a.ContentFrame.Y
	for _, child := range a.Children() {
		renderArtifact(buf, t, child, contentX, contentY, depth+1, opts)
	}
}

func fillFor(a *model.Artifact) string {
	if a.Metrics.IsInACycle {
		return fillCycle
	}
	switch a.Kind() {
	case model.KindFolder:
		return fillFolder
	case model.KindFile:
		return fillFile
	default:
		return fillSymbol
	}
}
