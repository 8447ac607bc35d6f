package pipeline

import (
	"context"
	"testing"

	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/source"
)

// fakeReader returns a canned folder or error.
type fakeReader struct {
	folder *source.CodeFolder
	err    error
}

func (r *fakeReader) ReadFolder(ctx context.Context, location source.ProjectLocation) (*source.CodeFolder, error) {
	return r.folder, r.err
}

// fakeProvider serves canned symbols and references.
type fakeProvider struct {
	symbols    map[string][]*source.CodeSymbolData
	refs       map[string][]source.FileReference
	notWorking bool
	calls      int
}

func (p *fakeProvider) Connect(ctx context.Context, location source.ProjectLocation) error {
	return nil
}

func (p *fakeProvider) DocumentSymbols(ctx context.Context, file *source.CodeFile) ([]*source.CodeSymbolData, error) {
	p.calls++
	return p.symbols[file.Path], nil
}

func (p *fakeProvider) References(ctx context.Context, file *source.CodeFile, symbol *source.CodeSymbolData) ([]source.FileReference, error) {
	p.calls++
	return p.refs[symbol.Name], nil
}

func (p *fakeProvider) NotWorking() bool { return p.notWorking }

func (p *fakeProvider) Close() error { return nil }

func testLocation() source.ProjectLocation {
	return source.ProjectLocation{
		FolderPath:      "/src/project",
		CodeFileEndings: []string{"go"},
		LanguageID:      "go",
	}
}

func simpleFolder() *source.CodeFolder {
	return &source.CodeFolder{
		Name: "project",
		Files: []*source.CodeFile{
			{
				Name:  "main.go",
				Path:  "main.go",
				Lines: []string{"package main", "func main() {}"},
				Symbols: []*source.CodeSymbolData{{
					Name: "main",
					Kind: source.SymbolKindFunction,
					Range: source.Range{
						Start: source.Position{Line: 1},
						End:   source.Position{Line: 1, Column: 14},
					},
					SelectionRange: source.Range{
						Start: source.Position{Line: 1, Column: 5},
						End:   source.Position{Line: 1, Column: 9},
					},
				}},
			},
		},
	}
}

func TestRunHappyPath(t *testing.T) {
	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader:   &fakeReader{folder: simpleFolder()},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	states, cancel := ctrl.Subscribe()
	defer cancel()

	result, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := ctrl.State().Kind; got != StateReady {
		t.Errorf("final state = %v, want ready", got)
	}
	if result.Tree == nil || result.Snapshot == nil {
		t.Fatal("result should carry tree and snapshot")
	}
	if result.Stats.Files != 1 {
		t.Errorf("Stats.Files = %d, want 1", result.Stats.Files)
	}
	if result.Stats.Artifacts != 3 {
		t.Errorf("Stats.Artifacts = %d, want 3 (folder, file, symbol)", result.Stats.Artifacts)
	}

	// The published sequence must pass through the analysis steps in
	// order and end ready.
	var steps []Step
	var kinds []StateKind
	for _, s := range drain(states) {
		kinds = append(kinds, s.Kind)
		if s.Step != StepNone {
			steps = append(steps, s.Step)
		}
	}
	if kinds[len(kinds)-1] != StateReady {
		t.Errorf("last published state = %v, want ready", kinds[len(kinds)-1])
	}
	assertAscending(t, steps)
}

// drain collects the already-buffered states in publication order.
func drain(states <-chan State) []State {
	var out []State
	for {
		select {
		case s, ok := <-states:
			if !ok {
				return out
			}
			out = append(out, s)
			if s.Terminal() {
				return out
			}
		default:
			return out
		}
	}
}

func assertAscending(t *testing.T, steps []Step) {
	t.Helper()
	for i := 1; i < len(steps); i++ {
		if steps[i] < steps[i-1] {
			t.Errorf("steps regressed: %v", steps)
			return
		}
	}
}

func TestRunEmptyFolderFails(t *testing.T) {
	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader: &fakeReader{err: archerrors.New(archerrors.ErrCodeNoCodeFilesFound,
			"no code files under /src/project")},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	_, err = ctrl.Run(context.Background())
	if !archerrors.Is(err, archerrors.ErrCodeNoCodeFilesFound) {
		t.Errorf("Run() error = %v, want NO_CODE_FILES_FOUND", err)
	}
	state := ctrl.State()
	if state.Kind != StateFailed {
		t.Errorf("state = %v, want failed", state.Kind)
	}
	if state.Message == "" {
		t.Error("failed state should carry a message")
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader:   &fakeReader{folder: simpleFolder()},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	_, err = ctrl.Run(ctx)
	if !archerrors.Is(err, archerrors.ErrCodeCancelled) {
		t.Errorf("Run() error = %v, want CANCELLED", err)
	}
	state := ctrl.State()
	if state.Kind != StateFailed || state.Message != "cancelled" {
		t.Errorf("state = %+v, want Failed(cancelled)", state)
	}
}

func TestProviderFillsSymbols(t *testing.T) {
	folder := &source.CodeFolder{
		Name: "project",
		Files: []*source.CodeFile{
			{Name: "lib.go", Path: "lib.go", Lines: []string{"package lib", "func Do() {}"}},
		},
	}
	provider := &fakeProvider{
		symbols: map[string][]*source.CodeSymbolData{
			"lib.go": {{
				Name: "Do",
				Kind: source.SymbolKindFunction,
				Range: source.Range{
					Start: source.Position{Line: 1},
					End:   source.Position{Line: 1, Column: 12},
				},
				SelectionRange: source.Range{
					Start: source.Position{Line: 1, Column: 5},
					End:   source.Position{Line: 1, Column: 7},
				},
			}},
		},
	}

	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader:   &fakeReader{folder: folder},
		Provider: provider,
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	result, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Stats.Artifacts != 3 {
		t.Errorf("Stats.Artifacts = %d, want 3 (provider symbols should be used)", result.Stats.Artifacts)
	}
	if provider.calls == 0 {
		t.Error("provider should have been queried")
	}
}

func TestNotWorkingProviderDegradesGracefully(t *testing.T) {
	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader:   &fakeReader{folder: simpleFolder()},
		Provider: &fakeProvider{notWorking: true},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	// Pre-populated symbols survive; the run still succeeds.
	result, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Stats.Artifacts != 3 {
		t.Errorf("Stats.Artifacts = %d, want 3", result.Stats.Artifacts)
	}
}

func TestOptionsValidation(t *testing.T) {
	if _, err := NewController(Options{}); !archerrors.Is(err, archerrors.ErrCodeInvalidInput) {
		t.Errorf("missing folder path should fail validation, got %v", err)
	}
	if _, err := NewController(Options{
		Location: source.ProjectLocation{FolderPath: "/x"},
	}); !archerrors.Is(err, archerrors.ErrCodeInvalidInput) {
		t.Errorf("missing endings should fail validation, got %v", err)
	}
}

func TestSubscribeSeesCurrentState(t *testing.T) {
	ctrl, err := NewController(Options{
		Location: testLocation(),
		Reader:   &fakeReader{folder: simpleFolder()},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}

	states, cancel := ctrl.Subscribe()
	defer cancel()

	first := <-states
	if first.Kind != StateLocated {
		t.Errorf("first observed state = %v, want located", first.Kind)
	}
}
