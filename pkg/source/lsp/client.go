// Package lsp implements a minimal language-server-protocol client, just
// large enough to retrieve document symbols and references for the
// analyzer.
//
// The client speaks JSON-RPC 2.0 with Content-Length framing over any
// stream, typically a TCP connection to a language server launched by the
// host. Access is serialized: one request is in flight at a time. After
// [MaxFailures] consecutive request failures the client marks itself not
// working and every further call fails fast; the pipeline then continues
// with whatever symbol data it already has.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/source"
)

// MaxFailures is the number of consecutive request failures after which the
// client gives up.
const MaxFailures = 3

// DefaultDialTimeout bounds the TCP connect to a language server.
const DefaultDialTimeout = 5 * time.Second

// Client is a [source.SymbolProvider] backed by a language server.
// Not safe for concurrent use; the pipeline serializes access.
type Client struct {
	mu     sync.Mutex
	conn   io.ReadWriteCloser
	reader *bufio.Reader
	nextID int64

	rootPath   string
	languageID string

	failures   int
	notWorking bool

	logger *log.Logger
}

// Dial connects to a language server listening on a TCP address.
func Dial(ctx context.Context, addr string, logger *log.Logger) (*Client, error) {
	d := net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, archerrors.Wrap(archerrors.ErrCodeLspUnreachable, err, "dial %s", addr)
	}
	return NewClient(conn, logger), nil
}

// NewClient wraps an established connection. The caller keeps ownership of
// nothing; Close closes the stream.
func NewClient(conn io.ReadWriteCloser, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn), logger: logger}
}

// Connect runs the LSP initialize handshake for the project.
func (c *Client) Connect(ctx context.Context, location source.ProjectLocation) error {
	c.rootPath = strings.TrimRight(location.FolderPath, "/")
	c.languageID = location.LanguageID

	params := map[string]any{
		"processId": nil,
		"rootUri":   pathToURI(c.rootPath),
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"documentSymbol": map[string]any{"hierarchicalDocumentSymbolSupport": true},
			},
		},
	}
	var result json.RawMessage
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return c.notify("initialized", map[string]any{})
}

// NotWorking reports whether the client has exceeded its failure budget.
func (c *Client) NotWorking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notWorking
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// lspRange mirrors the wire format of an LSP range.
type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type documentSymbol struct {
	Name           string           `json:"name"`
	Kind           int              `json:"kind"`
	Range          lspRange         `json:"range"`
	SelectionRange lspRange         `json:"selectionRange"`
	Children       []documentSymbol `json:"children"`
}

type location struct {
	URI   string   `json:"uri"`
	Range lspRange `json:"range"`
}

// DocumentSymbols retrieves the file's symbol hierarchy.
func (c *Client) DocumentSymbols(ctx context.Context, file *source.CodeFile) ([]*source.CodeSymbolData, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	params := map[string]any{
		"textDocument": map[string]any{"uri": c.fileURI(file.Path)},
	}
	var symbols []documentSymbol
	if err := c.call(ctx, "textDocument/documentSymbol", params, &symbols); err != nil {
		return nil, err
	}
	out := make([]*source.CodeSymbolData, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, convertSymbol(s))
	}
	return out, nil
}

// References retrieves the locations referencing the symbol and converts
// them into outgoing references of the referencing code: each returned
// reference has its source at the referencing location and its target at
// the symbol's declaration in file.
func (c *Client) References(ctx context.Context, file *source.CodeFile, symbol *source.CodeSymbolData) ([]source.FileReference, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	params := map[string]any{
		"textDocument": map[string]any{"uri": c.fileURI(file.Path)},
		"position": map[string]any{
			"line":      symbol.SelectionRange.Start.Line,
			"character": symbol.SelectionRange.Start.Column,
		},
		"context": map[string]any{"includeDeclaration": false},
	}
	var locations []location
	if err := c.call(ctx, "textDocument/references", params, &locations); err != nil {
		return nil, err
	}

	refs := make([]source.FileReference, 0, len(locations))
	for _, loc := range locations {
		refs = append(refs, source.FileReference{
			FilePath: c.uriToPath(loc.URI),
			Reference: source.Reference{
				SourceRange:    convertRange(loc.Range),
				TargetFilePath: file.Path,
				TargetRange:    symbol.SelectionRange,
			},
		})
	}
	return refs, nil
}

// guard fails fast once the failure budget is spent.
func (c *Client) guard() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notWorking {
		return archerrors.New(archerrors.ErrCodeLspUnreachable, "language server marked not working")
	}
	return nil
}

// call performs one JSON-RPC request and decodes the matching response,
// skipping any server notifications that arrive in between.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	if err := c.write(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}); err != nil {
		return c.fail(method, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return archerrors.Wrap(archerrors.ErrCodeCancelled, err, "%s", method)
		}
		payload, err := c.read()
		if err != nil {
			return c.fail(method, err)
		}
		var envelope struct {
			ID     *int64          `json:"id"`
			Result json.RawMessage `json:"result"`
			Error  *struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return c.fail(method, err)
		}
		if envelope.ID == nil || *envelope.ID != id {
			// Server notification or stale response.
			continue
		}
		if envelope.Error != nil {
			return c.fail(method, fmt.Errorf("server error %d: %s", envelope.Error.Code, envelope.Error.Message))
		}
		c.failures = 0
		if result == nil || len(envelope.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return c.fail(method, err)
		}
		return nil
	}
}

// notify sends a JSON-RPC notification (no response expected).
func (c *Client) notify(method string, params any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (c *Client) fail(method string, err error) error {
	c.failures++
	if c.failures >= MaxFailures {
		c.notWorking = true
		c.logger.Warn("language server marked not working", "method", method, "failures", c.failures)
	}
	return archerrors.Wrap(archerrors.ErrCodeLspUnreachable, err, "%s", method)
}

// write frames a message with a Content-Length header.
func (c *Client) write(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.conn, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	_, err = c.conn.Write(data)
	return err
}

// read consumes one framed message.
func (c *Client) read() ([]byte, error) {
	length := -1
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(name, "Content-Length") {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length: %w", err)
			}
		}
	}
	if length < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(c.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) fileURI(relPath string) string {
	return pathToURI(c.rootPath + "/" + relPath)
}

// uriToPath maps a file URI back to a project-relative path. URIs outside
// the project root stay absolute and will not resolve, which drops the
// reference as external.
func (c *Client) uriToPath(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if strings.HasPrefix(path, c.rootPath+"/") {
		return strings.TrimPrefix(path, c.rootPath+"/")
	}
	return path
}

func pathToURI(path string) string {
	return "file://" + path
}

func convertSymbol(s documentSymbol) *source.CodeSymbolData {
	out := &source.CodeSymbolData{
		Name:           s.Name,
		Kind:           source.SymbolKind(s.Kind),
		Range:          convertRange(s.Range),
		SelectionRange: convertRange(s.SelectionRange),
	}
	for _, child := range s.Children {
		out.Children = append(out.Children, convertSymbol(child))
	}
	return out
}

func convertRange(r lspRange) source.Range {
	return source.Range{
		Start: source.Position{Line: r.Start.Line, Column: r.Start.Character},
		End:   source.Position{Line: r.End.Line, Column: r.End.Character},
	}
}

var _ source.SymbolProvider = (*Client)(nil)
