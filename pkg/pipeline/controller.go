// Package pipeline sequences the analysis stages and publishes observable
// state.
//
// # Architecture
//
// The pipeline is a single-shot state machine. Given a located project it
// advances through fixed stages - read folder, retrieve symbols and
// references, build, lift, metrics, sort, layout, view models - where each
// stage's output is the next stage's input. No stage is skipped; failure at
// any stage transitions to a terminal failed state carrying a message.
//
// The controller is the sole writer of the model; observers read published
// [State] values through [Controller.State] or [Controller.Subscribe] and
// never see the artifact tree before it is complete.
//
// # Usage
//
//	ctrl, err := pipeline.NewController(pipeline.Options{
//	    Location: source.ProjectLocation{FolderPath: "/src/proj", CodeFileEndings: []string{"go"}},
//	    Provider: treesitter.New(),
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := ctrl.Run(ctx)
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archmap/pkg/analyze"
	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/model"
	"github.com/matzehuels/archmap/pkg/observability"
	"github.com/matzehuels/archmap/pkg/snapshot"
	"github.com/matzehuels/archmap/pkg/source"
	"github.com/matzehuels/archmap/pkg/source/local"
	"github.com/matzehuels/archmap/pkg/treemap"
)

// Default root rectangle for the layout stage.
const (
	DefaultWidth  = 1280.0
	DefaultHeight = 800.0
)

// Options configures a pipeline run.
type Options struct {
	// Location identifies the project to analyze. Required.
	Location source.ProjectLocation

	// Reader produces the folder tree. Defaults to the local file-system
	// reader.
	Reader source.FolderReader

	// Provider retrieves symbols and references. Optional: without one,
	// files whose symbols are not pre-populated stay symbol-less.
	Provider source.SymbolProvider

	// Layout holds the treemap constants. The zero value selects the
	// defaults.
	Layout treemap.Constants

	// Filter selects shown artifacts during layout. Nil shows everything.
	Filter treemap.Filter

	// Width and Height give the root rectangle. Zero selects defaults.
	Width  float64
	Height float64

	// Logger receives structured progress output. Nil selects
	// log.Default().
	Logger *log.Logger
}

// validateAndSetDefaults checks required fields and applies defaults.
func (o *Options) validateAndSetDefaults() error {
	if o.Location.FolderPath == "" {
		return archerrors.New(archerrors.ErrCodeInvalidInput, "project folder path is required")
	}
	if len(o.Location.CodeFileEndings) == 0 {
		return archerrors.New(archerrors.ErrCodeInvalidInput, "at least one code file ending is required")
	}
	if o.Reader == nil {
		o.Reader = local.NewReader()
	}
	if o.Layout == (treemap.Constants{}) {
		o.Layout = treemap.DefaultConstants()
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// Result contains the outputs of a completed pipeline run.
type Result struct {
	// Tree is the analyzed, sorted and laid-out artifact model. Read-only
	// from here on.
	Tree *model.Tree

	// Snapshot is the serializable view model of the tree.
	Snapshot *snapshot.Snapshot

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Files     int
	Artifacts int
	Edges     int

	ReadTime     time.Duration
	RetrieveTime time.Duration
	AnalyzeTime  time.Duration
	LayoutTime   time.Duration
}

// Controller owns the pipeline state machine. Construct one per run; a
// failed run is restarted by constructing a new controller.
type Controller struct {
	opts Options

	mu      sync.RWMutex
	state   State
	subs    map[int]chan State
	nextSub int
}

// NewController validates the options and returns a controller in the
// located state.
func NewController(opts Options) (*Controller, error) {
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Controller{
		opts:  opts,
		state: Located(),
		subs:  make(map[int]chan State),
	}, nil
}

// State returns the current state. Safe to call from any goroutine.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers an observer. Every published state is sent to the
// returned channel; slow observers lose intermediate states rather than
// block the pipeline, and can always re-read the latest via State. The
// cancel function unregisters the observer and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 16)
	ch <- c.state
	c.subs[id] = ch
	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish atomically transitions to the new state and notifies observers.
func (c *Controller) publish(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	for _, sub := range c.subs {
		select {
		case sub <- s:
		default:
			// Observer is behind; it will catch up via State().
		}
	}
}

// Run executes the pipeline to completion. It returns the result on
// success; on failure the controller is left in the failed state and the
// error carries a structured code. Cancelling the context at any
// suspension point fails the run with "cancelled".
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	logger := c.opts.Logger
	result := &Result{}

	fail := func(err error) (*Result, error) {
		c.publish(Failed(archerrors.UserMessage(err)))
		logger.Error("pipeline failed", "cause", err)
		return nil, err
	}
	cancelled := func() (*Result, error) {
		err := archerrors.Wrap(archerrors.ErrCodeCancelled, ctx.Err(), "cancelled")
		c.publish(Failed("cancelled"))
		return nil, err
	}

	c.publish(Located())

	// Read the project folder.
	c.publish(RetrievingData(StepReadFolder))
	readStart := time.Now()
	folder, err := c.opts.Reader.ReadFolder(ctx, c.opts.Location)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled()
		}
		return fail(err)
	}
	result.Stats.ReadTime = time.Since(readStart)
	files := collectFiles(folder)
	result.Stats.Files = len(files)
	logger.Info("read project folder", "files", len(files), "duration", result.Stats.ReadTime)

	// Retrieve symbols and references from the provider.
	retrieveStart := time.Now()
	if err := c.retrieveData(ctx, files); err != nil {
		if ctx.Err() != nil {
			return cancelled()
		}
		return fail(err)
	}
	result.Stats.RetrieveTime = time.Since(retrieveStart)

	c.publish(DataReady())
	if ctx.Err() != nil {
		return cancelled()
	}

	// Analysis passes.
	analyzeStart := time.Now()
	observability.Analyzer().OnAnalyzeStart(ctx, c.opts.Location.FolderPath, len(files))

	c.publish(Analyzing(StepBuildArchitecture))
	builder := &analyze.Builder{Logger: logger}
	arch, err := builder.Build(folder)
	if err != nil {
		return fail(err)
	}

	c.publish(Analyzing(StepLiftCrossScope))
	if err := arch.LiftCrossScope(logger); err != nil {
		return fail(err)
	}
	if ctx.Err() != nil {
		return cancelled()
	}

	c.publish(Analyzing(StepComputeMetrics))
	if err := analyze.ComputeMetrics(arch.Tree, logger); err != nil {
		return fail(err)
	}

	c.publish(Analyzing(StepSort))
	if err := analyze.SortTree(arch.Tree); err != nil {
		return fail(err)
	}
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	observability.Analyzer().OnAnalyzeComplete(ctx, c.opts.Location.FolderPath, arch.Tree.Len(), result.Stats.AnalyzeTime, nil)

	// Layout.
	c.publish(Analyzing(StepLayout))
	layoutStart := time.Now()
	observability.Analyzer().OnLayoutStart(ctx, arch.Tree.Len())
	layouter := &treemap.Layouter{Constants: c.opts.Layout, Filter: c.opts.Filter}
	layouter.Apply(arch.Tree, c.opts.Width, c.opts.Height)
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Analyzer().OnLayoutComplete(ctx, result.Stats.LayoutTime, nil)

	// View models.
	c.publish(Analyzing(StepBuildViewModels))
	result.Tree = arch.Tree
	result.Snapshot = snapshot.FromTree(arch.Tree, folder.Name)
	result.Stats.Artifacts = arch.Tree.Len()
	result.Stats.Edges = countEdges(arch.Tree)

	logger.Info("analysis complete",
		"artifacts", result.Stats.Artifacts,
		"edges", result.Stats.Edges,
		"duration", result.Stats.AnalyzeTime+result.Stats.LayoutTime)

	c.publish(Ready(result))
	return result, nil
}

// retrieveData fills in symbols and references for every file that lacks
// them, publishing progress. Provider failures are non-fatal: once the
// provider reports not working, the remaining files keep whatever data
// they already have.
func (c *Controller) retrieveData(ctx context.Context, files []*source.CodeFile) error {
	provider := c.opts.Provider
	if provider == nil {
		return nil
	}
	logger := c.opts.Logger

	c.publish(RetrievingData(StepConnectServer))
	if err := provider.Connect(ctx, c.opts.Location); err != nil {
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("language server unreachable, continuing without symbols", "cause", err)
		return nil
	}

	byPath := make(map[string]*source.CodeFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	c.publish(RetrievingData(StepRetrieveSymbols))
	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if provider.NotWorking() {
			logger.Warn("language server gave up, keeping partial symbols", "stage", "retrieveSymbols")
			break
		}
		if len(file.Symbols) > 0 {
			continue
		}
		symbols, err := provider.DocumentSymbols(ctx, file)
		if err != nil {
			logger.Warn("document symbols failed", "stage", "retrieveSymbols", "file", file.Path, "cause", err)
			continue
		}
		file.Symbols = symbols
	}

	c.publish(RetrievingData(StepRetrieveReferences))
	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if provider.NotWorking() {
			logger.Warn("language server gave up, keeping partial references", "stage", "retrieveReferences")
			break
		}
		var visit func(sym *source.CodeSymbolData) bool
		visit = func(sym *source.CodeSymbolData) bool {
			refs, err := provider.References(ctx, file, sym)
			if err != nil {
				logger.Warn("references failed", "stage", "retrieveReferences", "file", file.Path, "symbol", sym.Name, "cause", err)
				return !provider.NotWorking()
			}
			for _, ref := range refs {
				if target, ok := byPath[ref.FilePath]; ok {
					target.References = append(target.References, ref.Reference)
				}
			}
			for _, child := range sym.Children {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		for _, sym := range file.Symbols {
			if !visit(sym) {
				break
			}
		}
	}
	return nil
}

// collectFiles flattens the folder tree into file order: subfolders first,
// then files, matching the builder's construction order.
func collectFiles(folder *source.CodeFolder) []*source.CodeFile {
	var files []*source.CodeFile
	var walk func(f *source.CodeFolder)
	walk = func(f *source.CodeFolder) {
		for _, sub := range f.Subfolders {
			walk(sub)
		}
		files = append(files, f.Files...)
	}
	walk(folder)
	return files
}

func countEdges(t *model.Tree) int {
	total := 0
	t.Walk(t.Root(), model.PreOrder, func(a *model.Artifact) bool {
		total += a.Graph().EdgeCount()
		return true
	})
	return total
}
