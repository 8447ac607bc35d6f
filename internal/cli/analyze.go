package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archmap/pkg/cache"
	"github.com/matzehuels/archmap/pkg/pipeline"
	"github.com/matzehuels/archmap/pkg/snapshot"
	"github.com/matzehuels/archmap/pkg/source"
	"github.com/matzehuels/archmap/pkg/source/lsp"
	"github.com/matzehuels/archmap/pkg/source/treesitter"
	"github.com/matzehuels/archmap/pkg/treemap"
)

// analyzeFlags holds the flags shared by the analyze and render commands.
type analyzeFlags struct {
	configPath  string
	endings     string
	language    string
	lspAddr     string
	width       float64
	height      float64
	noCache     bool
	refresh     bool
	interactive bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to archmap.toml")
	cmd.Flags().StringVarP(&f.endings, "endings", "e", "", "comma-separated code file endings (default go)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "language id for the language server (default go)")
	cmd.Flags().StringVar(&f.lspAddr, "lsp", "", "TCP address of a language server (default: tree-sitter extraction)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "layout frame width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "layout frame height")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and re-analyze")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "show interactive progress")
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analyzeFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "analyze [folder]",
		Short: "Analyze a project into an architecture snapshot",
		Long: `Analyze reads a project folder, extracts symbols and references, builds
the artifact hierarchy with dependency edges, computes metrics, and lays
the result out as a treemap. The snapshot can be written as JSON for the
viewer or further rendering.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := c.pipelineOptions(flags, args)
			if err != nil {
				return err
			}

			snap, cached, err := c.runAnalysis(cmd.Context(), opts, flags)
			if err != nil {
				return err
			}

			printAnalysisSummary(snap, cached)
			if outPath != "" {
				if err := snapshot.WriteFile(snap, outPath); err != nil {
					return err
				}
				printFile(outPath)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the snapshot JSON to a file")
	return cmd
}

// pipelineOptions merges config file and flags into pipeline options.
func (c *CLI) pipelineOptions(flags analyzeFlags, args []string) (pipeline.Options, Config, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return pipeline.Options{}, cfg, err
	}

	location := cfg.Project
	if len(args) > 0 {
		location.FolderPath = args[0]
	}
	if location.FolderPath == "" {
		location.FolderPath = "."
	}
	if abs, err := filepath.Abs(location.FolderPath); err == nil {
		location.FolderPath = abs
	}
	if flags.endings != "" {
		location.CodeFileEndings = strings.Split(flags.endings, ",")
	}
	if len(location.CodeFileEndings) == 0 {
		location.CodeFileEndings = []string{"go"}
	}
	if flags.language != "" {
		location.LanguageID = flags.language
	}
	if location.LanguageID == "" {
		location.LanguageID = "go"
	}

	layout := cfg.Layout
	if layout == (treemap.Constants{}) {
		layout = treemap.DefaultConstants()
	}

	opts := pipeline.Options{
		Location: location,
		Layout:   layout,
		Width:    firstNonZero(flags.width, cfg.Frame.Width),
		Height:   firstNonZero(flags.height, cfg.Frame.Height),
		Logger:   c.Logger,
	}

	lspAddr := flags.lspAddr
	if lspAddr == "" {
		lspAddr = cfg.LSP.Addr
	}
	opts.Provider, err = c.newProvider(lspAddr, location.LanguageID)
	if err != nil {
		return opts, cfg, err
	}
	return opts, cfg, nil
}

// newProvider selects the symbol provider: a language server when an
// address is configured, tree-sitter extraction for Go otherwise.
func (c *CLI) newProvider(lspAddr, languageID string) (source.SymbolProvider, error) {
	if lspAddr != "" {
		client, err := lsp.Dial(context.Background(), lspAddr, c.Logger)
		if err != nil {
			// Degrade to local extraction; the analysis still runs.
			c.Logger.Warn("language server unreachable, falling back to tree-sitter", "addr", lspAddr, "cause", err)
		} else {
			return client, nil
		}
	}
	if languageID == "go" {
		return treesitter.New(), nil
	}
	return nil, nil
}

// runAnalysis executes the pipeline with snapshot caching. The returned
// boolean reports a cache hit.
func (c *CLI) runAnalysis(ctx context.Context, opts pipeline.Options, flags analyzeFlags) (*snapshot.Snapshot, bool, error) {
	store, err := newCache(flags.noCache)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.SnapshotKey(opts.Location.FolderPath, cache.SnapshotKeyOpts{
		CodeFileEndings: opts.Location.CodeFileEndings,
		LanguageID:      opts.Location.LanguageID,
		Width:           opts.Width,
		Height:          opts.Height,
		Padding:         opts.Layout.Padding,
		FontSize:        opts.Layout.FontSize,
		MinWidth:        opts.Layout.MinWidth,
		MinHeight:       opts.Layout.MinHeight,
	})

	if !flags.refresh {
		if data, hit, err := store.Get(ctx, key); err == nil && hit {
			if snap, err := snapshot.Unmarshal(data); err == nil {
				return snap, true, nil
			}
		}
	}

	ctrl, err := pipeline.NewController(opts)
	if err != nil {
		return nil, false, err
	}

	var result *pipeline.Result
	if flags.interactive {
		result, err = runWithProgressView(ctx, ctrl)
	} else {
		progress := newProgress(c.Logger)
		result, err = ctrl.Run(ctx)
		if err == nil {
			progress.done(fmt.Sprintf("Analyzed %d artifacts", result.Stats.Artifacts))
		}
	}
	if err != nil {
		return nil, false, err
	}

	if data, err := snapshot.Marshal(result.Snapshot); err == nil {
		_ = store.Set(ctx, key, data, cache.TTLSnapshot)
	}
	return result.Snapshot, false, nil
}

// printAnalysisSummary prints artifact counts and the cache status.
func printAnalysisSummary(snap *snapshot.Snapshot, cached bool) {
	folders, files, symbols, edges := 0, 0, 0, 0
	snap.Walk(func(a *snapshot.Artifact) {
		switch a.Kind {
		case "folder":
			folders++
		case "file":
			files++
		default:
			symbols++
		}
		edges += len(a.Dependencies)
	})

	printSuccess("Analyzed %s", snap.Project)
	printStats(folders, files, symbols, edges, cached)
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
