// Package treesitter extracts symbols from Go sources with tree-sitter.
//
// It is the fallback symbol provider: no language server is required, which
// makes it suitable for offline analysis and tests. The provider reports
// declarations (functions, methods, types, constants, variables) but cannot
// produce references, so dependency edges stay empty unless a language
// server contributes them.
package treesitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/matzehuels/archmap/pkg/source"
)

// Provider implements [source.SymbolProvider] for Go files.
type Provider struct{}

var _ source.SymbolProvider = (*Provider)(nil)

// New creates a tree-sitter symbol provider.
func New() *Provider { return &Provider{} }

// Connect is a no-op; parsing needs no connection.
func (p *Provider) Connect(ctx context.Context, location source.ProjectLocation) error {
	return nil
}

// NotWorking always reports false; local parsing cannot degrade.
func (p *Provider) NotWorking() bool { return false }

// Close is a no-op.
func (p *Provider) Close() error { return nil }

// References returns no references; tree-sitter does not resolve targets.
func (p *Provider) References(ctx context.Context, file *source.CodeFile, symbol *source.CodeSymbolData) ([]source.FileReference, error) {
	return nil, nil
}

// DocumentSymbols parses the file and returns its top-level declarations.
// Non-Go files yield no symbols.
func (p *Provider) DocumentSymbols(ctx context.Context, file *source.CodeFile) ([]*source.CodeSymbolData, error) {
	if !strings.HasSuffix(file.Name, ".go") {
		return nil, nil
	}
	src := []byte(strings.Join(file.Lines, "\n"))

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	var symbols []*source.CodeSymbolData
	for i := 0; i < int(root.NamedChildCount()); i++ {
		symbols = append(symbols, declarationSymbols(root.NamedChild(i), src)...)
	}
	return symbols, nil
}

// declarationSymbols converts one top-level declaration node into symbols.
// Grouped type, const and var declarations expand to one symbol per spec.
func declarationSymbols(node *sitter.Node, src []byte) []*source.CodeSymbolData {
	switch node.Type() {
	case "function_declaration":
		return []*source.CodeSymbolData{namedSymbol(node, src, source.SymbolKindFunction)}
	case "method_declaration":
		return []*source.CodeSymbolData{methodSymbol(node, src)}
	case "type_declaration":
		var out []*source.CodeSymbolData
		for i := 0; i < int(node.NamedChildCount()); i++ {
			spec := node.NamedChild(i)
			if spec.Type() == "type_spec" || spec.Type() == "type_alias" {
				out = append(out, typeSymbol(spec, src))
			}
		}
		return out
	case "const_declaration":
		return specSymbols(node, src, "const_spec", source.SymbolKindConstant)
	case "var_declaration":
		return specSymbols(node, src, "var_spec", source.SymbolKindVariable)
	default:
		return nil
	}
}

func namedSymbol(node *sitter.Node, src []byte, kind source.SymbolKind) *source.CodeSymbolData {
	name := node.ChildByFieldName("name")
	return &source.CodeSymbolData{
		Name:           contentOf(name, src),
		Kind:           kind,
		Range:          rangeOf(node),
		SelectionRange: rangeOf(name),
	}
}

// methodSymbol names a method receiver-qualified so two types can declare
// the same method name in one file.
func methodSymbol(node *sitter.Node, src []byte) *source.CodeSymbolData {
	sym := namedSymbol(node, src, source.SymbolKindMethod)
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		typ := strings.TrimLeft(contentOf(recv, src), "(")
		typ = strings.TrimRight(typ, ")")
		if fields := strings.Fields(typ); len(fields) > 0 {
			sym.Name = strings.TrimPrefix(fields[len(fields)-1], "*") + "." + sym.Name
		}
	}
	return sym
}

func typeSymbol(spec *sitter.Node, src []byte) *source.CodeSymbolData {
	sym := namedSymbol(spec, src, source.SymbolKindClass)
	if typ := spec.ChildByFieldName("type"); typ != nil {
		switch typ.Type() {
		case "struct_type":
			sym.Kind = source.SymbolKindStruct
			sym.Children = fieldSymbols(typ, src)
		case "interface_type":
			sym.Kind = source.SymbolKindInterface
		}
	}
	return sym
}

// fieldSymbols lists a struct's named fields as child symbols.
func fieldSymbols(structType *sitter.Node, src []byte) []*source.CodeSymbolData {
	var out []*source.CodeSymbolData
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "field_declaration" {
			if name := n.ChildByFieldName("name"); name != nil {
				out = append(out, &source.CodeSymbolData{
					Name:           contentOf(name, src),
					Kind:           source.SymbolKindField,
					Range:          rangeOf(n),
					SelectionRange: rangeOf(name),
				})
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(structType)
	return out
}

func specSymbols(node *sitter.Node, src []byte, specType string, kind source.SymbolKind) []*source.CodeSymbolData {
	var out []*source.CodeSymbolData
	for i := 0; i < int(node.NamedChildCount()); i++ {
		spec := node.NamedChild(i)
		if spec.Type() != specType {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		out = append(out, &source.CodeSymbolData{
			Name:           contentOf(name, src),
			Kind:           kind,
			Range:          rangeOf(spec),
			SelectionRange: rangeOf(name),
		})
	}
	return out
}

func contentOf(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

func rangeOf(node *sitter.Node) source.Range {
	if node == nil {
		return source.Range{}
	}
	start, end := node.StartPoint(), node.EndPoint()
	return source.Range{
		Start: source.Position{Line: int(start.Row), Column: int(start.Column)},
		End:   source.Position{Line: int(end.Row), Column: int(end.Column)},
	}
}
