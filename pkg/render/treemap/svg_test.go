package treemap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/archmap/pkg/model"
	treemaplayout "github.com/matzehuels/archmap/pkg/treemap"
)

func laidOutTree(t *testing.T) *model.Tree {
	t.Helper()
	tree := model.New("project")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)
	tree.Artifact(a).Metrics.LinesOfCode = 60
	tree.Artifact(b).Metrics.LinesOfCode = 40
	tree.Artifact(tree.Root()).Metrics.LinesOfCode = 100

	l := treemaplayout.New(treemaplayout.Constants{Padding: 2, FontSize: 10, MinWidth: 5, MinHeight: 5})
	if !l.Apply(tree, 400, 300) {
		t.Fatal("layout failed")
	}
	return tree
}

func TestRenderSVG(t *testing.T) {
	tree := laidOutTree(t)

	svg := RenderSVG(tree, Options{})

	if !bytes.HasPrefix(svg, []byte("<svg ")) {
		t.Fatalf("output should start with an svg tag: %.40s", svg)
	}
	out := string(svg)
	for _, want := range []string{"project", "a.go", "b.go", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if got := strings.Count(out, "<rect "); got != 3 {
		t.Errorf("SVG has %d rects, want 3", got)
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	tree := laidOutTree(t)
	if !bytes.Equal(RenderSVG(tree, Options{}), RenderSVG(tree, Options{})) {
		t.Error("SVG output should be byte-identical across runs")
	}
}

func TestRenderSVGEscapesNames(t *testing.T) {
	tree := model.New("a<b")
	root := tree.Artifact(tree.Root())
	root.FrameInScopeContent = model.Rect{Width: 100, Height: 100}

	svg := string(RenderSVG(tree, Options{}))
	if strings.Contains(svg, "a<b") {
		t.Error("artifact names must be escaped in SVG text")
	}
	if !strings.Contains(svg, "a&lt;b") {
		t.Error("escaped name missing from output")
	}
}
