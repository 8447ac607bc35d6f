package treesitter

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/archmap/pkg/source"
)

func parse(t *testing.T, code string) []*source.CodeSymbolData {
	t.Helper()
	p := New()
	file := &source.CodeFile{
		Name:  "main.go",
		Path:  "main.go",
		Lines: strings.Split(code, "\n"),
	}
	symbols, err := p.DocumentSymbols(context.Background(), file)
	if err != nil {
		t.Fatalf("DocumentSymbols() error: %v", err)
	}
	return symbols
}

func names(symbols []*source.CodeSymbolData) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

func TestDocumentSymbolsDeclarations(t *testing.T) {
	code := `package main

const answer = 42

var counter int

type Server struct {
	Addr string
	Port int
}

type Handler interface {
	Handle()
}

func run() {}

func (s *Server) Start() {}
`
	symbols := parse(t, code)

	got := names(symbols)
	want := []string{"answer", "counter", "Server", "Handler", "run", "Server.Start"}
	if len(got) != len(want) {
		t.Fatalf("symbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSymbolKindsAndRanges(t *testing.T) {
	code := `package main

type Server struct {
	Addr string
}

func run() {}
`
	symbols := parse(t, code)
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols: %v", len(symbols), names(symbols))
	}

	server := symbols[0]
	if server.Kind != source.SymbolKindStruct {
		t.Errorf("Server kind = %v, want struct", server.Kind)
	}
	if len(server.Children) != 1 || server.Children[0].Name != "Addr" {
		t.Errorf("Server children = %v", names(server.Children))
	}
	if server.Children[0].Kind != source.SymbolKindField {
		t.Errorf("Addr kind = %v, want field", server.Children[0].Kind)
	}
	if server.Range.Start.Line != 2 {
		t.Errorf("Server starts at line %d, want 2", server.Range.Start.Line)
	}

	run := symbols[1]
	if run.Kind != source.SymbolKindFunction {
		t.Errorf("run kind = %v, want function", run.Kind)
	}
	if run.SelectionRange.Start.Line != 6 || run.SelectionRange.Start.Column != 5 {
		t.Errorf("run selection = %+v", run.SelectionRange)
	}
}

func TestNonGoFilesYieldNoSymbols(t *testing.T) {
	p := New()
	symbols, err := p.DocumentSymbols(context.Background(), &source.CodeFile{
		Name:  "main.rs",
		Path:  "main.rs",
		Lines: []string{"fn main() {}"},
	})
	if err != nil {
		t.Fatalf("DocumentSymbols() error: %v", err)
	}
	if symbols != nil {
		t.Errorf("non-Go file should yield no symbols, got %v", names(symbols))
	}
}
