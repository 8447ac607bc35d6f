// Package treemap assigns a rectangle to every artifact of a sorted tree:
// a recursive, area-proportional partition where each artifact's children
// share its content frame in proportion to their lines of code.
//
// The layout is a pure function of the sorted tree, the root rectangle, the
// filter and the constants: identical inputs yield byte-identical frames.
package treemap

import (
	"math"

	"github.com/matzehuels/archmap/pkg/model"
)

// Constants are the fixed layout parameters. They are configurable at
// construction and never change during a run.
type Constants struct {
	// Padding is the inset between an artifact's frame and its content.
	Padding float64 `toml:"padding"`

	// FontSize is the height of the header label band.
	FontSize float64 `toml:"font_size"`

	// MinWidth and MinHeight are the smallest dimensions at which a
	// rectangle may still show parts; anything smaller collapses.
	MinWidth  float64 `toml:"min_width"`
	MinHeight float64 `toml:"min_height"`
}

// DefaultConstants returns the layout parameters used by the CLI.
func DefaultConstants() Constants {
	return Constants{
		Padding:   4,
		FontSize:  12,
		MinWidth:  40,
		MinHeight: 30,
	}
}

// Filter selects which artifacts are shown. Hidden artifacts collapse to a
// degenerate rectangle at their scope's center. A nil filter shows
// everything.
type Filter func(*model.Artifact) bool

// Layouter computes treemap frames for a tree.
type Layouter struct {
	Constants Constants
	Filter    Filter
}

// New creates a layouter with the given constants and an all-pass filter.
func New(c Constants) *Layouter {
	return &Layouter{Constants: c}
}

// Apply lays out the whole tree inside a root rectangle of the given size.
// It writes FrameInScopeContent, ContentFrame and ShowsParts on every
// artifact and returns whether the root's parts fit.
func (l *Layouter) Apply(t *model.Tree, width, height float64) bool {
	return l.prepare(t, t.Root(), model.Rect{Width: width, Height: height})
}

// prepare assigns frame to the artifact and lays out its children inside
// the artifact's content frame. The returned boolean reports whether the
// children fit; when they do not, all descendants are collapsed and the
// artifact shows no parts.
func (l *Layouter) prepare(t *model.Tree, id model.ID, frame model.Rect) bool {
	a := t.Artifact(id)
	a.FrameInScopeContent = frame

	header := l.Constants.FontSize + 2*l.Constants.Padding
	content := model.Rect{
		X:      l.Constants.Padding,
		Y:      header,
		Width:  frame.Width - 2*l.Constants.Padding,
		Height: frame.Height - header - l.Constants.Padding,
	}
	a.ContentFrame = content

	shown, hidden := l.partition(t, a)
	cx, cy := content.Center()
	for _, h := range hidden {
		l.collapse(t, h, cx, cy)
	}

	if len(shown) == 0 {
		a.ShowsParts = false
		return true
	}

	if content.Width >= l.Constants.MinWidth && content.Height >= l.Constants.MinHeight &&
		content.Width > 0 && content.Height > 0 {
		gap := 2 * math.Pow(content.Surface(), 1.0/6.0)
		inner := model.Rect{Width: content.Width, Height: content.Height}
		if l.layoutParts(t, shown, inner, gap) {
			a.ShowsParts = true
			return true
		}
	}

	// Children do not fit: hide them all.
	a.ShowsParts = false
	for _, s := range shown {
		l.collapse(t, s, cx, cy)
	}
	return false
}

// layoutParts partitions rect among the parts, preserving their order.
// Returns false if any required split would produce a rectangle below the
// minimum size; the caller then collapses the scope.
func (l *Layouter) layoutParts(t *model.Tree, parts []model.ID, rect model.Rect, gap float64) bool {
	if len(parts) == 1 {
		l.prepare(t, parts[0], rect)
		return true
	}

	groupA, groupB := splitBalanced(t, parts)
	locA, locB := totalLoC(t, groupA), totalLoC(t, groupB)
	total := locA + locB
	fraction := 0.5
	if total > 0 {
		fraction = float64(locA) / float64(total)
	}

	// Boundary elements in different components get a wider gap.
	g := gap
	last := t.Artifact(groupA[len(groupA)-1])
	first := t.Artifact(groupB[0])
	if last.Metrics.ComponentRank != first.Metrics.ComponentRank {
		g = 3 * gap
	}

	rectA, rectB := splitRect(rect, fraction, g)
	if rectA.Width < l.Constants.MinWidth || rectA.Height < l.Constants.MinHeight ||
		rectB.Width < l.Constants.MinWidth || rectB.Height < l.Constants.MinHeight {
		return false
	}

	fitsA := l.layoutParts(t, groupA, rectA, gap)
	fitsB := l.layoutParts(t, groupB, rectB, gap)
	return fitsA && fitsB
}

// splitBalanced divides the sorted parts into two contiguous non-empty
// groups minimizing the absolute difference of their total lines of code.
// Ties pick the smallest split index.
func splitBalanced(t *model.Tree, parts []model.ID) (a, b []model.ID) {
	total := totalLoC(t, parts)
	bestIdx, bestDiff := 1, math.MaxFloat64
	cum := 0
	for k := 1; k < len(parts); k++ {
		cum += t.Artifact(parts[k-1]).Metrics.LinesOfCode
		diff := math.Abs(float64(2*cum - total))
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = k
		}
	}
	return parts[:bestIdx], parts[bestIdx:]
}

// splitRect cuts rect along its longer axis at the given fraction, leaving
// a gap between the two halves.
func splitRect(rect model.Rect, fraction, gap float64) (a, b model.Rect) {
	if rect.Width >= rect.Height {
		avail := rect.Width - gap
		wa := avail * fraction
		a = model.Rect{X: rect.X, Y: rect.Y, Width: wa, Height: rect.Height}
		b = model.Rect{X: rect.X + wa + gap, Y: rect.Y, Width: avail - wa, Height: rect.Height}
		return a, b
	}
	avail := rect.Height - gap
	ha := avail * fraction
	a = model.Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: ha}
	b = model.Rect{X: rect.X, Y: rect.Y + ha + gap, Width: rect.Width, Height: avail - ha}
	return a, b
}

// partition splits the artifact's children into shown and hidden according
// to the filter, preserving order.
func (l *Layouter) partition(t *model.Tree, a *model.Artifact) (shown, hidden []model.ID) {
	for _, child := range a.Children() {
		if l.Filter == nil || l.Filter(t.Artifact(child)) {
			shown = append(shown, child)
		} else {
			hidden = append(hidden, child)
		}
	}
	return shown, hidden
}

// collapse sets a degenerate frame at (x, y) on the artifact and its whole
// subtree.
func (l *Layouter) collapse(t *model.Tree, id model.ID, x, y float64) {
	t.Walk(id, model.PreOrder, func(a *model.Artifact) bool {
		a.FrameInScopeContent = model.DegenerateAt(x, y)
		a.ContentFrame = model.Rect{}
		a.ShowsParts = false
		return true
	})
}

func totalLoC(t *model.Tree, ids []model.ID) int {
	total := 0
	for _, id := range ids {
		total += t.Artifact(id).Metrics.LinesOfCode
	}
	return total
}
