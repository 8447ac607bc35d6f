// Package source defines the input side of the archmap analyzer: the parsed
// folder hierarchy, per-file symbol data, and symbol references produced by
// language tooling.
//
// The analyzer itself never touches the file system or a language server.
// It consumes a [CodeFolder] tree plus [CodeSymbolData] per file, both of
// which are produced by the providers in the subpackages:
//
//   - source/local reads a project folder from disk
//   - source/lsp retrieves symbols and references from a language server
//   - source/treesitter extracts symbols directly from Go sources
//
// All types in this package are plain data. They are safe to share between
// goroutines once fully constructed.
package source

import "fmt"

// Position is a zero-based line/column location in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a closed region in a source file, from Start up to and
// including End.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return !other.Start.Before(r.Start) && !r.End.Before(other.End)
}

// Before reports whether p precedes other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// LineCount returns the number of lines the range spans (at least 1).
func (r Range) LineCount() int {
	return r.End.Line - r.Start.Line + 1
}

// ProjectLocation identifies the project to analyze.
type ProjectLocation struct {
	// FolderPath is the absolute path of the project root folder.
	FolderPath string `json:"folder_path" toml:"folder_path"`

	// CodeFileEndings lists the file extensions (without dot) that count
	// as code files, e.g. ["go", "swift"].
	CodeFileEndings []string `json:"code_file_endings" toml:"code_file_endings"`

	// LanguageID is the language identifier used when talking to a
	// language server, e.g. "go" or "swift".
	LanguageID string `json:"language_id" toml:"language_id"`
}

// CodeFolder is one folder of the parsed project hierarchy.
// Subfolders and files preserve the order in which the reader found them.
type CodeFolder struct {
	Name       string        `json:"name"`
	Subfolders []*CodeFolder `json:"subfolders,omitempty"`
	Files      []*CodeFile   `json:"files,omitempty"`
}

// CodeFile is one source file with its text and top-level symbols.
type CodeFile struct {
	Name string `json:"name"`

	// Path is the file's path relative to the project root, using forward
	// slashes. Reference targets are resolved against it.
	Path string `json:"path"`

	Lines   []string          `json:"lines"`
	Symbols []*CodeSymbolData `json:"symbols,omitempty"`

	// References lists all resolved outgoing references whose source
	// location lies in this file.
	References []Reference `json:"references,omitempty"`
}

// CodeSymbolData is one symbol as reported by a language server or parser,
// with nested child symbols.
type CodeSymbolData struct {
	Name           string            `json:"name"`
	Kind           SymbolKind        `json:"kind"`
	Range          Range             `json:"range"`
	SelectionRange Range             `json:"selection_range"`
	Children       []*CodeSymbolData `json:"children,omitempty"`

	// References holds outgoing references declared by this symbol.
	// Optional; providers that cannot produce references leave it empty.
	References []Reference `json:"references,omitempty"`
}

// Reference records that code at SourceRange depends on the symbol declared
// at TargetRange in TargetFilePath. Targets outside the analyzed project are
// silently dropped during lifting.
type Reference struct {
	SourceRange    Range  `json:"source_range"`
	TargetFilePath string `json:"target_file_path"`
	TargetRange    Range  `json:"target_range"`
}

// FileReference couples a reference with the project-relative path of the
// file its source range lies in. Symbol providers report references this
// way so the host can attach each to the right [CodeFile].
type FileReference struct {
	FilePath  string    `json:"file_path"`
	Reference Reference `json:"reference"`
}

// SymbolKind enumerates the kinds of symbols, following the numbering used
// by the language server protocol.
type SymbolKind int

// Symbol kinds. The zero value is unknown.
const (
	SymbolKindFile SymbolKind = iota + 1
	SymbolKindModule
	SymbolKindNamespace
	SymbolKindPackage
	SymbolKindClass
	SymbolKindMethod
	SymbolKindProperty
	SymbolKindField
	SymbolKindConstructor
	SymbolKindEnum
	SymbolKindInterface
	SymbolKindFunction
	SymbolKindVariable
	SymbolKindConstant
	SymbolKindString
	SymbolKindNumber
	SymbolKindBoolean
	SymbolKindArray
	SymbolKindObject
	SymbolKindKey
	SymbolKindNull
	SymbolKindEnumMember
	SymbolKindStruct
	SymbolKindEvent
	SymbolKindOperator
	SymbolKindTypeParameter
)

var symbolKindNames = map[SymbolKind]string{
	SymbolKindFile:          "file",
	SymbolKindModule:        "module",
	SymbolKindNamespace:     "namespace",
	SymbolKindPackage:       "package",
	SymbolKindClass:         "class",
	SymbolKindMethod:        "method",
	SymbolKindProperty:      "property",
	SymbolKindField:         "field",
	SymbolKindConstructor:   "constructor",
	SymbolKindEnum:          "enum",
	SymbolKindInterface:     "interface",
	SymbolKindFunction:      "function",
	SymbolKindVariable:      "variable",
	SymbolKindConstant:      "constant",
	SymbolKindString:        "string",
	SymbolKindNumber:        "number",
	SymbolKindBoolean:       "boolean",
	SymbolKindArray:         "array",
	SymbolKindObject:        "object",
	SymbolKindKey:           "key",
	SymbolKindNull:          "null",
	SymbolKindEnumMember:    "enum member",
	SymbolKindStruct:        "struct",
	SymbolKindEvent:         "event",
	SymbolKindOperator:      "operator",
	SymbolKindTypeParameter: "type parameter",
}

// String returns the lowercase name of the kind, or "unknown".
func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// IsEmpty reports whether the folder contains no files anywhere in its
// subtree.
func (f *CodeFolder) IsEmpty() bool {
	if len(f.Files) > 0 {
		return false
	}
	for _, sub := range f.Subfolders {
		if !sub.IsEmpty() {
			return false
		}
	}
	return true
}
