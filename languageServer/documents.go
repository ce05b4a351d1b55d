package languageServer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/util"
)

var errMissingParams = errors.New("missing parameters")

// documentStore maps a document uri to its latest text and assembly result.
type documentStore struct {
	mu   sync.Mutex
	docs map[string]TextDocumentItem
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]TextDocumentItem)}
}

func (s *documentStore) get(uri DocumentUri) (TextDocumentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(uri)]
	return doc, ok
}

func (s *documentStore) put(doc TextDocumentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[string(doc.URI)] = doc
}

func (s *documentStore) remove(uri DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, string(uri))
}

func (h handler) assembleAndReportDiagnostics(uri DocumentUri) []assembler.Diagnostic {
	doc, ok := h.documents.get(uri)
	if !ok {
		return make([]assembler.Diagnostic, 0)
	}

	assembledRes := assembler.Assemble(doc.Text)
	if assembledRes.Diagnostics == nil {
		assembledRes.Diagnostics = make([]assembler.Diagnostic, 0)
	}
	doc.lastAssembledResult = assembledRes
	h.documents.put(doc)
	util.LogF("%s: assembled %s, %d diagnostics", serverName, uri, len(assembledRes.Diagnostics))
	return assembledRes.Diagnostics
}

func (h handler) documentOpenNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidOpenTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	h.documents.put(decodedParams.TextDocument)

	diagnostics := h.assembleAndReportDiagnostics(decodedParams.TextDocument.URI)
	conn.Notify(context.Background(), "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         decodedParams.TextDocument.URI,
		Version:     decodedParams.TextDocument.Version,
		Diagnostics: diagnostics,
	})
}

func (h handler) documentCloseNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidCloseTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	h.documents.remove(decodedParams.TextDocument.URI)
}

func (h handler) documentChangeNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil || len(decodedParams.ContentChanges) == 0 {
		replyInvalidParams(conn, req)
		return
	}

	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	doc.URI = decodedParams.TextDocument.URI
	// full sync, the last change holds the whole document
	doc.Text = decodedParams.ContentChanges[len(decodedParams.ContentChanges)-1].Text
	doc.Version = decodedParams.TextDocument.Version
	h.documents.put(doc)

	diagnostics := h.assembleAndReportDiagnostics(decodedParams.TextDocument.URI)
	conn.Notify(context.Background(), "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         decodedParams.TextDocument.URI,
		Version:     doc.Version,
		Diagnostics: diagnostics,
	})
}

func (h handler) documentDiagnostics(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentDiagnosticsParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	diagnostics := h.assembleAndReportDiagnostics(decodedParams.TextDocument.URI)
	conn.Reply(context.Background(), req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: diagnostics,
	})
}

// collapseCode normalises whitespace in the code part of a line: single spaces between tokens
// and ", " between operands.
func collapseCode(code string) string {
	code = strings.Join(strings.Fields(code), " ")
	parts := strings.Split(code, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// reformatSource puts labels in the first column and lines every instruction up one column past
// the longest label. Comments are kept as written.
func reformatSource(text string) string {
	assembledRes := assembler.Assemble(text)

	maxLabelLength := 0
	for label := range assembledRes.Labels {
		if len(label) > maxLabelLength {
			maxLabelLength = len(label)
		}
	}
	indent := maxLabelLength + 2

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		code, comment := line, ""
		if commentIndex := strings.Index(line, ";"); commentIndex != -1 {
			code, comment = line[:commentIndex], strings.TrimRight(line[commentIndex:], " \t")
		}
		code = collapseCode(code)

		if code == "" {
			lines[i] = comment
			continue
		}

		formatted := strings.Repeat(" ", indent) + code
		if colon := strings.Index(code, ":"); colon != -1 && assembler.ParseLine(code).Label != "" {
			label := code[:colon+1]
			rest := strings.TrimSpace(code[colon+1:])
			formatted = label
			if rest != "" {
				pad := indent - len(label)
				if pad < 1 {
					pad = 1
				}
				formatted += strings.Repeat(" ", pad) + rest
			}
		}

		if comment != "" {
			formatted += " " + comment
		}
		lines[i] = formatted
	}
	return strings.Join(lines, "\n")
}

func (h handler) documentWillSaveWaitUntil(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentWillSaveWaitUntilParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc, ok := h.documents.get(decodedParams.TextDocument.URI)
	if !ok {
		conn.Reply(context.Background(), req.ID, make([]TextEdit, 0))
		return
	}

	lines := strings.Split(doc.Text, "\n")

	edits := make([]TextEdit, 0)
	edits = append(edits, TextEdit{
		Range: assembler.TextRange{
			Start: assembler.TextPosition{Line: 0, Char: 0},
			End:   assembler.TextPosition{Line: len(lines) - 1, Char: len(lines[len(lines)-1])},
		},
		NewText: reformatSource(doc.Text),
	})

	conn.Reply(context.Background(), req.ID, edits)
	util.LogF("%s: reformatted %s", serverName, decodedParams.TextDocument.URI)
}
