package languageServer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
)

type clientHandler struct {
	diagnostics   chan PublishDiagnosticsParams
	registrations chan RegistrationParams
}

func (c clientHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch req.Method {
	case "textDocument/publishDiagnostics":
		var params PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err == nil {
			c.diagnostics <- params
		}
	case "client/registerCapability":
		var params RegistrationParams
		if err := json.Unmarshal(*req.Params, &params); err == nil {
			c.registrations <- params
		}
		conn.Reply(ctx, req.ID, nil)
	}
}

func newTestClient(t *testing.T) (*jsonrpc2.Conn, clientHandler) {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	server := ServeConn(context.Background(), serverSide, "z80")

	h := clientHandler{
		diagnostics:   make(chan PublishDiagnosticsParams, 8),
		registrations: make(chan RegistrationParams, 8),
	}
	client := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), jsonrpc2.AsyncHandler(h))
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, h
}

func call(t *testing.T, conn *jsonrpc2.Conn, method string, params, result interface{}) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Call(ctx, method, params, result)
}

func notify(t *testing.T, conn *jsonrpc2.Conn, method string, params interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Notify(ctx, method, params); err != nil {
		t.Fatalf("Failed to send %s: %v", method, err)
	}
}

func waitDiagnostics(t *testing.T, h clientHandler) PublishDiagnosticsParams {
	t.Helper()
	select {
	case params := <-h.diagnostics:
		return params
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected diagnostics to be published")
	}
	return PublishDiagnosticsParams{}
}

func TestLanguageServerSession(t *testing.T) {
	client, h := newTestClient(t)

	var initResult InitializeResult
	if err := call(t, client, "initialize", InitializeParams{ProcessID: 1}, &initResult); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if !initResult.Capabilities.HoverProvider || initResult.Capabilities.TextDocumentSync != 1 {
		t.Errorf("Expected hover and full sync capabilities, got %+v", initResult.Capabilities)
	}

	select {
	case reg := <-h.registrations:
		if len(reg.Registrations) != 1 || reg.Registrations[0].Method != "textDocument/willSaveWaitUntil" {
			t.Errorf("Expected a willSaveWaitUntil registration, got %+v", reg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected the server to register willSaveWaitUntil")
	}

	uri := DocumentUri("file:///tmp/main.asm")
	notify(t, client, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "z80", Version: 1, Text: "start:\tjp nowhere\n"},
	})

	published := waitDiagnostics(t, h)
	if published.URI != uri {
		t.Errorf("Expected diagnostics for %s, got %s", uri, published.URI)
	}
	if len(published.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(published.Diagnostics))
	}
	if published.Diagnostics[0].Message != "Unknown label: \"nowhere\"" {
		t.Errorf("Unexpected diagnostic message %q", published.Diagnostics[0].Message)
	}
	if published.Diagnostics[0].Range.Start.Line != 0 {
		t.Errorf("Expected the diagnostic on line 0, got %d", published.Diagnostics[0].Range.Start.Line)
	}

	fixed := "start:\tjp start\n"
	notify(t, client, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: fixed}},
	})

	published = waitDiagnostics(t, h)
	if published.Version != 2 || len(published.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics for version 2, got %+v", published)
	}

	var hover *Hover
	err := call(t, client, "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     assembler.TextPosition{Line: 0, Char: 1},
	}, &hover)
	if err != nil {
		t.Fatalf("hover failed: %v", err)
	}
	if hover == nil || !strings.Contains(hover.Contents.Value, "Definition of label `start`") {
		t.Errorf("Expected a label definition hover, got %+v", hover)
	}

	var report DocumentDiagnosticsReport
	if err := call(t, client, "textDocument/diagnostic", DocumentDiagnosticsParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &report); err != nil {
		t.Fatalf("diagnostic failed: %v", err)
	}
	if report.Kind != "full" || len(report.Items) != 0 {
		t.Errorf("Expected an empty full report, got %+v", report)
	}

	var edits []TextEdit
	if err := call(t, client, "textDocument/willSaveWaitUntil", DocumentWillSaveWaitUntilParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &edits); err != nil {
		t.Fatalf("willSaveWaitUntil failed: %v", err)
	}
	if len(edits) != 1 || edits[0].NewText != reformatSource(fixed) {
		t.Errorf("Expected one whole-document edit, got %+v", edits)
	}

	err = call(t, client, "textDocument/unsupported", struct{}{}, nil)
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("Expected a method not found error, got %v", err)
	}

	if err := call(t, client, "shutdown", nil, nil); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestHoverUnknownDocument(t *testing.T) {
	client, _ := newTestClient(t)

	var hover *Hover
	err := call(t, client, "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///missing.asm"},
	}, &hover)
	if err != nil {
		t.Fatalf("hover failed: %v", err)
	}
	if hover != nil {
		t.Errorf("Expected no hover for an unknown document, got %+v", hover)
	}
}

func TestReformatSource(t *testing.T) {
	source := "; header\nloop: dec  b ;count down\n   djnz\tloop\nend:\n\tld a,5   \n"
	expected := "; header\nloop: dec b ;count down\n      djnz loop\nend:\n      ld a, 5\n"

	if got := reformatSource(source); got != expected {
		t.Errorf("Expected\n%q\ngot\n%q", expected, got)
	}
}
