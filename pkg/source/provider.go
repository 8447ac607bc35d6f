package source

import "context"

// FolderReader produces the parsed folder hierarchy for a project.
type FolderReader interface {
	// ReadFolder reads the project at the given location and returns its
	// folder tree with file contents. Symbols and references are not
	// populated; a SymbolProvider adds them.
	ReadFolder(ctx context.Context, location ProjectLocation) (*CodeFolder, error)
}

// SymbolProvider retrieves symbols and references for code files, typically
// from a language server.
//
// Providers are shared singletons guarded by serialized access; callers
// never invoke them concurrently. A provider that keeps failing reports
// NotWorking, and the pipeline continues with the partial data obtained so
// far.
type SymbolProvider interface {
	// Connect prepares the provider for the given project. Implementations
	// that need no connection return nil.
	Connect(ctx context.Context, location ProjectLocation) error

	// DocumentSymbols returns the file's top-level symbols with nested
	// children.
	DocumentSymbols(ctx context.Context, file *CodeFile) ([]*CodeSymbolData, error)

	// References returns the references to one symbol of the given file,
	// each attributed to the file containing the referencing code.
	// Providers that cannot produce references return an empty list.
	References(ctx context.Context, file *CodeFile, symbol *CodeSymbolData) ([]FileReference, error)

	// NotWorking reports whether the provider has given up after repeated
	// failures.
	NotWorking() bool

	// Close releases the provider's resources.
	Close() error
}
