package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archmap/pkg/model"
	"github.com/matzehuels/archmap/pkg/pipeline"
	"github.com/matzehuels/archmap/pkg/render/nodelink"
	rendertreemap "github.com/matzehuels/archmap/pkg/render/treemap"
	"github.com/matzehuels/archmap/pkg/snapshot"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags analyzeFlags
	var format string
	var scopePath string
	var outPath string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "render [folder]",
		Short: "Render a project's architecture",
		Long: `Render analyzes the project and writes a visualization. Every run
analyzes afresh; the analysis cache is not read:

  treemap  nested rectangles for the whole hierarchy (SVG)
  dot      one scope's dependency graph in Graphviz DOT
  nodelink one scope's dependency graph rendered to SVG via Graphviz
  json     the raw snapshot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := c.pipelineOptions(flags, args)
			if err != nil {
				return err
			}

			ctrl, err := pipeline.NewController(opts)
			if err != nil {
				return err
			}
			spinner := newSpinnerWithContext(cmd.Context(), "Analyzing "+opts.Location.FolderPath)
			spinner.Start()
			result, err := ctrl.Run(cmd.Context())
			spinner.Stop()
			if err != nil {
				return err
			}

			data, err := renderResult(result, format, scopePath, detailed)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = "archmap." + extensionFor(format)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s", format)
			printFile(outPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "treemap", "output format: treemap, dot, nodelink, json")
	cmd.Flags().StringVarP(&scopePath, "scope", "s", "", "scope path for dot/nodelink, e.g. pkg/cache (default: root)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default archmap.<ext>)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include metrics in dot/nodelink labels")
	return cmd
}

func renderResult(result *pipeline.Result, format, scopePath string, detailed bool) ([]byte, error) {
	switch format {
	case "treemap":
		return rendertreemap.RenderSVG(result.Tree, rendertreemap.Options{}), nil
	case "dot", "nodelink":
		scope, err := resolveScope(result.Tree, scopePath)
		if err != nil {
			return nil, err
		}
		dot := nodelink.ToDOT(result.Tree, scope, nodelink.Options{Detailed: detailed})
		if format == "dot" {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(dot)
	case "json":
		return snapshot.Marshal(result.Snapshot)
	default:
		return nil, fmt.Errorf("invalid format: %q (must be one of: treemap, dot, nodelink, json)", format)
	}
}

// resolveScope walks the tree by slash-separated names.
func resolveScope(t *model.Tree, scopePath string) (model.ID, error) {
	id := t.Root()
	if scopePath == "" {
		return id, nil
	}
	for _, part := range strings.Split(scopePath, "/") {
		child, ok := t.ChildByName(id, part)
		if !ok {
			return model.NoID, fmt.Errorf("scope %q not found (no child %q)", scopePath, part)
		}
		id = child
	}
	return id, nil
}

func extensionFor(format string) string {
	switch format {
	case "dot":
		return "dot"
	case "json":
		return "json"
	default:
		return "svg"
	}
}
