package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeNotInitialized = -32002
	codeInternalError  = -32603
)

// ErrExitWithoutShutdown is returned by Run when the client sends exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// ConfigLoader resolves the lint configuration for a workspace root.
type ConfigLoader func(root string) (*lint.Config, error)

// Options configure a Server.
type Options struct {
	Logger     *slog.Logger
	LoadConfig ConfigLoader
	Version    string
}

// Server is a stdio language server.
type Server struct {
	documents *DocumentStore
	opts      Options
	logger    *slog.Logger

	mu          sync.RWMutex
	projectRoot string
	linter      *lint.Linter
	ruleLinters map[string]*lint.Linter
	keywords    []string
	results     map[string]*lintResult
	initialized bool
	shutdown    bool

	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

// NewServer creates a server reading requests from reader and writing
// responses to writer.
func NewServer(reader io.Reader, writer io.Writer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = func(string) (*lint.Config, error) { return lint.NewConfig(), nil }
	}
	return &Server{
		documents:   NewDocumentStore(),
		opts:        opts,
		logger:      opts.Logger.With("component", "lsp"),
		ruleLinters: make(map[string]*lint.Linter),
		results:     make(map[string]*lintResult),
		reader:      bufio.NewReader(reader),
		writer:      writer,
	}
}

// Run processes messages until exit, EOF or cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("server starting")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			var perr *protocolError
			if errors.As(err, &perr) {
				s.logger.Error("bad message", "error", err)
				s.sendResponse(nil, nil, &JSONRPCError{Code: codeParseError, Message: err.Error()})
				continue
			}
			return err
		}

		if msg.Method == "exit" {
			s.mu.RLock()
			clean := s.shutdown
			s.mu.RUnlock()
			s.logger.Info("server exit", "clean", clean)
			if !clean {
				return ErrExitWithoutShutdown
			}
			return nil
		}
		if err := s.handleMessage(ctx, msg); err != nil {
			s.logger.Error("error handling message", "method", msg.Method, "error", err)
		}
	}
}

// JSONRPCMessage is a JSON-RPC 2.0 request, response or notification.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError is a JSON-RPC error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// protocolError is a malformed message the server can skip.
type protocolError struct{ msg string }

func (e *protocolError) Error() string { return e.msg }

func (s *Server) readMessage() (*JSONRPCMessage, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, &protocolError{fmt.Sprintf("invalid Content-Length %q", value)}
		}
		contentLength = n
	}
	if contentLength < 0 {
		return nil, &protocolError{"missing Content-Length header"}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, &protocolError{fmt.Sprintf("error parsing message: %v", err)}
	}
	return &msg, nil
}

func (s *Server) sendResponse(id *json.RawMessage, result any, rpcErr *JSONRPCError) {
	msg := JSONRPCMessage{JSONRPC: "2.0", ID: id}
	if id == nil {
		null := json.RawMessage("null")
		msg.ID = &null
	}
	if rpcErr != nil {
		msg.Error = rpcErr
	} else {
		b, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("error marshaling result", "error", err)
			msg.Error = &JSONRPCError{Code: codeInternalError, Message: err.Error()}
		} else {
			msg.Result = b
		}
	}
	s.writeMessage(&msg)
}

func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			s.logger.Error("error marshaling notification", "method", method, "error", err)
			return
		}
		msg.Params = b
	}
	s.writeMessage(&msg)
}

func (s *Server) writeMessage(msg *JSONRPCMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("error marshaling message", "error", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(body), body); err != nil {
		s.logger.Error("error writing message", "error", err)
	}
}

func (s *Server) handleMessage(ctx context.Context, msg *JSONRPCMessage) error {
	s.logger.Debug("received", "method", msg.Method)

	s.mu.RLock()
	ready := s.initialized || s.linter != nil
	s.mu.RUnlock()
	if !ready && msg.Method != "initialize" {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeNotInitialized, Message: "server not initialized"})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		s.sendResponse(msg.ID, nil, nil)
		return nil
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return nil
	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		if n := len(params.ContentChanges); n > 0 {
			s.documents.Update(params.TextDocument.URI, params.ContentChanges[n-1].Text, params.TextDocument.Version)
		}
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return nil
	case "textDocument/didSave":
		var params DidSaveTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidSave(ctx, params)
	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		s.documents.Close(params.TextDocument.URI)
		s.forget(params.TextDocument.URI)
		s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []Diagnostic{},
		})
		return nil
	case "textDocument/codeAction":
		var params CodeActionParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.invalidParams(msg, err)
		}
		s.sendResponse(msg.ID, s.codeActions(ctx, params), nil)
		return nil
	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.invalidParams(msg, err)
		}
		edits, err := s.format(ctx, params.TextDocument.URI)
		if err != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInternalError, Message: err.Error()})
			return err
		}
		s.sendResponse(msg.ID, edits, nil)
		return nil
	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.invalidParams(msg, err)
		}
		s.sendResponse(msg.ID, s.hover(params), nil)
		return nil
	case "textDocument/completion":
		var params CompletionParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.invalidParams(msg, err)
		}
		s.sendResponse(msg.ID, s.completions(params), nil)
		return nil
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

func (s *Server) invalidParams(msg *JSONRPCMessage, err error) error {
	s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
	return err
}

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.invalidParams(msg, err)
		}
	}
	root := ""
	if params.RootURI != "" {
		root = URIToPath(params.RootURI)
	}
	s.mu.Lock()
	s.projectRoot = root
	s.mu.Unlock()

	if err := s.configure(); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInternalError, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save:      &SaveOptions{},
			},
			CompletionProvider: &CompletionOptions{},
			HoverProvider:      true,
			CodeActionProvider: &CodeActionOptions{
				CodeActionKinds: []CodeActionKind{CodeActionKindQuickFix, CodeActionKindSourceFixAll},
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "sqlgrain", Version: s.opts.Version},
	}, nil)
	return nil
}

// configure (re)builds the linter from the workspace configuration. A bad
// configuration falls back to the defaults and is reported to the client.
func (s *Server) configure() error {
	s.mu.RLock()
	root := s.projectRoot
	s.mu.RUnlock()

	cfg, err := s.opts.LoadConfig(root)
	if err != nil {
		s.logger.Warn("invalid configuration, using defaults", "root", root, "error", err)
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: "sqlgrain: " + err.Error(),
		})
		cfg = lint.NewConfig()
	}
	l, err := lint.NewLinter(cfg, lint.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("failed to create linter: %w", err)
	}

	s.mu.Lock()
	s.linter = l
	s.ruleLinters = make(map[string]*lint.Linter)
	s.keywords = dialectKeywords(l.Dialect())
	s.mu.Unlock()
	s.logger.Info("linter configured", "root", root, "dialect", l.Dialect().Name(), "rules", len(l.Rules()))
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, params DidSaveTextDocumentParams) error {
	if !isConfigFile(URIToPath(params.TextDocument.URI)) {
		return nil
	}
	s.logger.Info("configuration changed, relinting open documents")
	if err := s.configure(); err != nil {
		return err
	}
	for _, uri := range s.documents.List() {
		s.publishDiagnostics(ctx, uri)
	}
	return nil
}

func isConfigFile(path string) bool {
	switch filepath.Base(path) {
	case ".sqlgrain.yaml", ".sqlgrain.yml", ".sqlgrain.toml":
		return true
	}
	return false
}

func (s *Server) currentLinter() *lint.Linter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linter
}
