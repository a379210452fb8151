package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/sqlgrain/internal/template"
	"github.com/leapstack-labs/sqlgrain/internal/testutil"
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"
)

const testURI = "file:///work/q.sql"

type testClient struct {
	t      *testing.T
	w      *io.PipeWriter
	msgs   chan *JSONRPCMessage
	done   chan error
	nextID int
}

func startServer(t *testing.T, loader ConfigLoader) *testClient {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(inR, outW, Options{Logger: testutil.NewTestLogger(t), LoadConfig: loader, Version: "test"})

	c := &testClient{t: t, w: inW, msgs: make(chan *JSONRPCMessage, 64), done: make(chan error, 1)}
	go func() {
		c.done <- srv.Run(context.Background())
		_ = outW.Close()
	}()
	go func() {
		defer close(c.msgs)
		r := bufio.NewReader(outR)
		for {
			msg, err := readFrame(r)
			if err != nil {
				return
			}
			c.msgs <- msg
		}
	}()
	t.Cleanup(func() { _ = inW.Close() })
	return c
}

func readFrame(r *bufio.Reader) (*JSONRPCMessage, error) {
	n := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, _ = strconv.Atoi(v)
		}
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	var msg JSONRPCMessage
	return &msg, json.Unmarshal(body, &msg)
}

func (c *testClient) send(msg map[string]any) {
	c.t.Helper()
	msg["jsonrpc"] = "2.0"
	body, err := json.Marshal(msg)
	require.NoError(c.t, err)
	_, err = fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	require.NoError(c.t, err)
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.send(map[string]any{"method": method, "params": params})
}

// call sends a request and returns its response, dropping notifications
// that arrive first.
func (c *testClient) call(method string, params any, result any) *JSONRPCError {
	c.t.Helper()
	c.nextID++
	id := c.nextID
	c.send(map[string]any{"id": id, "method": method, "params": params})
	for {
		msg := c.next()
		if msg.ID == nil || string(*msg.ID) != strconv.Itoa(id) {
			continue
		}
		if msg.Error != nil {
			return msg.Error
		}
		if result != nil {
			require.NoError(c.t, json.Unmarshal(msg.Result, result))
		}
		return nil
	}
}

func (c *testClient) next() *JSONRPCMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.msgs:
		require.True(c.t, ok, "server closed the connection")
		return msg
	case <-time.After(10 * time.Second):
		c.t.Fatal("timed out waiting for a message")
		return nil
	}
}

func (c *testClient) diagnostics() PublishDiagnosticsParams {
	c.t.Helper()
	for {
		msg := c.next()
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		require.NoError(c.t, json.Unmarshal(msg.Params, &p))
		return p
	}
}

func (c *testClient) initialize() InitializeResult {
	c.t.Helper()
	var res InitializeResult
	require.Nil(c.t, c.call("initialize", map[string]any{"rootUri": "file:///work"}, &res))
	c.notify("initialized", map[string]any{})
	return res
}

func (c *testClient) exit() error {
	c.t.Helper()
	c.notify("exit", nil)
	select {
	case err := <-c.done:
		return err
	case <-time.After(10 * time.Second):
		c.t.Fatal("server did not exit")
		return nil
	}
}

func onlyLT01(string) (*lint.Config, error) {
	cfg := lint.NewConfig()
	cfg.Rules = []string{"LT01"}
	return cfg, nil
}

func TestServerLifecycle(t *testing.T) {
	c := startServer(t, onlyLT01)

	rpcErr := c.call("textDocument/hover", map[string]any{}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, codeNotInitialized, rpcErr.Code)

	res := c.initialize()
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, "sqlgrain", res.ServerInfo.Name)
	assert.True(t, res.Capabilities.DocumentFormattingProvider)
	require.NotNil(t, res.Capabilities.TextDocumentSync)
	assert.Equal(t, TextDocumentSyncKindFull, res.Capabilities.TextDocumentSync.Change)

	rpcErr = c.call("workspace/symbol", map[string]any{}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, codeMethodNotFound, rpcErr.Code)

	require.Nil(t, c.call("shutdown", nil, nil))
	assert.NoError(t, c.exit())
}

func TestServerExitWithoutShutdown(t *testing.T) {
	c := startServer(t, onlyLT01)
	c.initialize()
	assert.ErrorIs(t, c.exit(), ErrExitWithoutShutdown)
}

func TestServerBadConfigFallsBack(t *testing.T) {
	c := startServer(t, func(string) (*lint.Config, error) { return nil, fmt.Errorf("bad dialect") })
	c.nextID++
	c.send(map[string]any{"id": c.nextID, "method": "initialize", "params": map[string]any{}})

	var shown bool
	for {
		msg := c.next()
		if msg.Method == "window/showMessage" {
			var p ShowMessageParams
			require.NoError(t, json.Unmarshal(msg.Params, &p))
			assert.Contains(t, p.Message, "bad dialect")
			shown = true
			continue
		}
		if msg.ID != nil {
			assert.Nil(t, msg.Error)
			break
		}
	}
	assert.True(t, shown)
}

func TestServerDiagnosticsAndFixes(t *testing.T) {
	c := startServer(t, onlyLT01)
	c.initialize()

	c.notify("textDocument/didOpen", DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: testURI, LanguageID: "sql", Version: 1, Text: "select a  from t\n",
	}})
	pub := c.diagnostics()
	assert.Equal(t, testURI, pub.URI)
	require.NotNil(t, pub.Version)
	assert.Equal(t, 1, *pub.Version)
	require.NotEmpty(t, pub.Diagnostics)
	diag := pub.Diagnostics[0]
	assert.Equal(t, "LT01", diag.Code)
	assert.Equal(t, diagnosticSource, diag.Source)
	assert.Equal(t, uint32(0), diag.Range.Start.Line)
	require.NotNil(t, diag.CodeDescription)
	assert.Contains(t, diag.CodeDescription.Href, "LT01")

	t.Run("hover", func(t *testing.T) {
		var hover Hover
		require.Nil(t, c.call("textDocument/hover", HoverParams{TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: testURI}, Position: diag.Range.Start,
		}}, &hover))
		assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
		assert.Contains(t, hover.Contents.Value, "**LT01**")
	})

	t.Run("code actions", func(t *testing.T) {
		var actions []CodeAction
		require.Nil(t, c.call("textDocument/codeAction", CodeActionParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
			Range:        diag.Range,
			Context:      CodeActionContext{Diagnostics: []Diagnostic{diag}},
		}, &actions))

		byTitle := make(map[string]CodeAction)
		for _, a := range actions {
			byTitle[a.Title] = a
		}
		require.Contains(t, byTitle, "Fix LT01 violations")
		require.Contains(t, byTitle, "Ignore LT01 on this line")
		require.Contains(t, byTitle, "Fix all sqlgrain violations")

		fix := byTitle["Fix LT01 violations"].Edit.Changes[testURI]
		require.Len(t, fix, 1)
		assert.Equal(t, "select a from t\n", fix[0].NewText)

		noqa := byTitle["Ignore LT01 on this line"].Edit.Changes[testURI]
		require.Len(t, noqa, 1)
		assert.Equal(t, "  -- noqa: LT01", noqa[0].NewText)
		assert.Equal(t, Position{Line: 0, Character: 16}, noqa[0].Range.Start)
	})

	t.Run("only fix all", func(t *testing.T) {
		var actions []CodeAction
		require.Nil(t, c.call("textDocument/codeAction", CodeActionParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
			Context:      CodeActionContext{Diagnostics: []Diagnostic{diag}, Only: []CodeActionKind{CodeActionKindSourceFixAll}},
		}, &actions))
		require.Len(t, actions, 1)
		assert.Equal(t, CodeActionKindSourceFixAllSG, actions[0].Kind)
	})

	t.Run("formatting", func(t *testing.T) {
		var edits []TextEdit
		require.Nil(t, c.call("textDocument/formatting", DocumentFormattingParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
		}, &edits))
		require.Len(t, edits, 1)
		assert.Equal(t, "select a from t\n", edits[0].NewText)
		assert.Equal(t, Position{Line: 1, Character: 0}, edits[0].Range.End)
	})

	t.Run("completion", func(t *testing.T) {
		var list CompletionList
		require.Nil(t, c.call("textDocument/completion", CompletionParams{TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: testURI}, Position: Position{Line: 0, Character: 3},
		}}, &list))
		var labels []string
		for _, it := range list.Items {
			labels = append(labels, it.Label)
			assert.True(t, strings.HasPrefix(it.Label, "SEL"), it.Label)
		}
		assert.Contains(t, labels, "SELECT")
	})

	t.Run("change to clean text clears diagnostics", func(t *testing.T) {
		c.notify("textDocument/didChange", DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier{URI: testURI}, 2},
			ContentChanges: []TextDocumentContentChangeEvent{{Text: "select a from t\n"}},
		})
		pub := c.diagnostics()
		assert.Equal(t, 2, *pub.Version)
		assert.Empty(t, pub.Diagnostics)

		var edits []TextEdit
		require.Nil(t, c.call("textDocument/formatting", DocumentFormattingParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
		}, &edits))
		assert.Empty(t, edits)
	})

	t.Run("close clears diagnostics", func(t *testing.T) {
		c.notify("textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: testURI}})
		pub := c.diagnostics()
		assert.Empty(t, pub.Diagnostics)
	})

	require.Nil(t, c.call("shutdown", nil, nil))
	assert.NoError(t, c.exit())
}

func TestNoqaEditSkipsCommentedLines(t *testing.T) {
	doc := newDocument(testURI, "select a  from t -- hi\n", 1)
	assert.Nil(t, noqaEdit(doc, Diagnostic{Code: "LT01"}))

	doc = newDocument(testURI, "select a  from t\r\n", 1)
	edit := noqaEdit(doc, Diagnostic{Code: "LT01"})
	require.NotNil(t, edit)
	assert.Equal(t, Position{Line: 0, Character: 16}, edit.Range.Start)
}

func TestWantsKind(t *testing.T) {
	assert.True(t, wantsKind(nil, CodeActionKindQuickFix))
	assert.True(t, wantsKind([]CodeActionKind{CodeActionKindSourceFixAll}, CodeActionKindSourceFixAllSG))
	assert.False(t, wantsKind([]CodeActionKind{CodeActionKindQuickFix}, CodeActionKindSourceFixAllSG))
}

func TestIsConfigFile(t *testing.T) {
	assert.True(t, isConfigFile("/w/.sqlgrain.yaml"))
	assert.True(t, isConfigFile("/w/.sqlgrain.toml"))
	assert.False(t, isConfigFile("/w/q.sql"))
}
