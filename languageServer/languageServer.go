package languageServer

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/util"
)

const serverName = "Z80 Language Server"

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ServeConn starts a session over rwc with its own document store.
func ServeConn(ctx context.Context, rwc io.ReadWriteCloser, languageID string) *jsonrpc2.Conn {
	h := handler{documents: newDocumentStore(), languageID: languageID}
	return jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), h)
}

// ListenAndServe speaks the protocol over stdin and stdout until the client disconnects.
func ListenAndServe(languageID string) {
	<-ServeConn(context.Background(), stdrwc{}, languageID).DisconnectNotify()
}

// ListenAndServeTCP accepts connections on addr so the server can be debugged remotely. Each
// connection gets a separate session.
func ListenAndServeTCP(addr, languageID string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer lis.Close()

	glog.Infof("%s: listening for TCP connections on %s", serverName, lis.Addr())

	var connectionCount int64
	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		connectionID := atomic.AddInt64(&connectionCount, 1)
		glog.Infof("%s: received incoming connection #%d", serverName, connectionID)

		jsonrpc2Connection := ServeConn(context.Background(), conn, languageID)
		go func() {
			<-jsonrpc2Connection.DisconnectNotify()
			glog.Infof("%s: connection #%d closed", serverName, connectionID)
		}()
	}
}

type handler struct {
	documents  *documentStore
	languageID string
}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("%s: received request: %s", serverName, req.Method)
	switch req.Method {
	case "textDocument/didOpen":
		h.documentOpenNotification(conn, req)
	case "textDocument/didClose":
		h.documentCloseNotification(conn, req)
	case "textDocument/didChange":
		h.documentChangeNotification(conn, req)
	case "initialize":
		h.handleInitialize(conn, req)
	case "initialized":
		// notification, nothing to do
	case "textDocument/diagnostic":
		h.documentDiagnostics(conn, req)
	case "textDocument/willSaveWaitUntil":
		h.documentWillSaveWaitUntil(conn, req)
	case "textDocument/hover":
		h.hoverRequest(conn, req)

	// quitting
	case "shutdown":
		conn.Reply(context.Background(), req.ID, nil)
	case "exit":
		conn.Close()

	default:
		if !req.Notif {
			conn.ReplyWithError(context.Background(), req.ID, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: "method not supported: " + req.Method,
			})
		}
	}
}

func replyInvalidParams(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		util.LogF("%s: invalid parameters for %s", serverName, req.Method)
		return
	}
	rpcErr := jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	rpcErr.SetError("invalid parameters")
	conn.ReplyWithError(context.Background(), req.ID, &rpcErr)
}

func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return errMissingParams
	}
	return json.Unmarshal(*req.Params, v)
}

func (h handler) handleInitialize(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := InitializeParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}
	if decodedParams.ClientInfo != nil {
		util.LogF("%s: initializing for %s", serverName, decodedParams.ClientInfo.Name)
	}

	result := InitializeResult{}
	result.Capabilities.TextDocumentSync = 1
	result.Capabilities.HoverProvider = true
	result.Capabilities.DiagnosticProvider = DiagnosticOptions{Identifier: "z80hexer"}
	result.ServerInfo = ServerInfo{Name: serverName}
	conn.Reply(context.Background(), req.ID, result)

	h.registerRemainingCapabilities(conn)
}

func (h handler) registerRemainingCapabilities(conn *jsonrpc2.Conn) {
	// textDocumentSync.willSaveWaitUntil is registered dynamically
	util.LogF("%s: registering remaining capabilities", serverName)
	params := RegistrationParams{
		Registrations: []Registration{
			{
				ID:     "textDocumentSync.willSaveWaitUntil",
				Method: "textDocument/willSaveWaitUntil",
				RegisterOptions: TextDocumentRegistrationOptions{
					DocumentSelector: []DocumentFilter{
						{
							Scheme:   "file",
							Language: h.languageID,
						},
					},
				},
			},
		},
	}

	// the reply arrives on this connection's read loop, so the call must not block the handler
	go conn.Call(context.Background(), "client/registerCapability", params, nil)
}
